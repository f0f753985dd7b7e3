package models

import "time"

// User is a chat participant who owns conversations
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest is the request structure for creating a new user.
// Fields bind from the query string, a form body, or JSON.
type CreateUserRequest struct {
	Name  string `form:"name" json:"name" binding:"required"`
	Email string `form:"email" json:"email"`
}
