package api

import (
	"errors"

	"neurobridge/backend/internal/store"
	apperrors "neurobridge/backend/pkg/errors"
)

// storeError maps store sentinels to their HTTP representation
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return apperrors.NewNotFoundError(apperrors.CodeUserNotFound, "User not found").Wrap(err)
	case errors.Is(err, store.ErrConversationNotFound):
		return apperrors.NewNotFoundError(apperrors.CodeConversationNotFound, "Conversation not found").Wrap(err)
	case errors.Is(err, store.ErrSessionNotFound):
		return apperrors.NewNotFoundError(apperrors.CodeSessionNotFound, "Session not found").Wrap(err)
	case errors.Is(err, store.ErrNameRequired):
		return apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, "Invalid request", err.Error()).Wrap(err)
	default:
		return err
	}
}

func bindError(err error) error {
	return apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, "Invalid request", err.Error()).Wrap(err)
}
