package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurobridge/backend/internal/emotion"
	"neurobridge/backend/internal/models"
)

func setupStores(t *testing.T) (*MemoryUserStore, *MemoryConversationStore, models.User) {
	t.Helper()
	users := NewMemoryUserStore()
	convs := NewMemoryConversationStore(users)
	user, err := users.Create(context.Background(), "Ada", nil)
	require.NoError(t, err)
	return users, convs, user
}

func msg(content string, label emotion.Label) models.Message {
	return models.Message{
		Content:   content,
		Sender:    models.SenderUser,
		Timestamp: time.Now().UTC(),
		Emotion:   label,
	}
}

func TestUserStoreCreateAndGet(t *testing.T) {
	users := NewMemoryUserStore()
	ctx := context.Background()
	email := "ada@example.com"

	user, err := users.Create(ctx, "  Ada ", &email)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	require.NotNil(t, user.Email)
	assert.Equal(t, email, *user.Email)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.True(t, users.Exists(ctx, user.ID))
	assert.Equal(t, 1, users.Count())
}

func TestUserStoreRejectsBlankName(t *testing.T) {
	users := NewMemoryUserStore()
	_, err := users.Create(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Equal(t, 0, users.Count())
}

func TestUserStoreGetNotFound(t *testing.T) {
	users := NewMemoryUserStore()
	_, err := users.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, users.Exists(context.Background(), "missing"))
}

func TestConversationCreate(t *testing.T) {
	_, convs, user := setupStores(t)

	conv, err := convs.Create(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, user.ID, conv.UserID)
	assert.Empty(t, conv.Messages)
	assert.NotNil(t, conv.EmotionSummary)
	assert.Equal(t, conv.CreatedAt, conv.UpdatedAt)
}

func TestConversationCreateUnknownUser(t *testing.T) {
	_, convs, _ := setupStores(t)

	_, err := convs.Create(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, convs.Count())
}

func TestConversationAppend(t *testing.T) {
	_, convs, user := setupStores(t)
	ctx := context.Background()

	conv, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, convs.Append(ctx, conv.ID, msg("yay", emotion.Happy)))
	require.NoError(t, convs.Append(ctx, conv.ID, msg("boo", emotion.Sad)))
	require.NoError(t, convs.Append(ctx, conv.ID, msg("yay again", emotion.Happy)))
	require.NoError(t, convs.Append(ctx, conv.ID, msg("no label", "")))

	got, err := convs.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "yay", got.Messages[0].Content)
	assert.Equal(t, "no label", got.Messages[3].Content)
	assert.Equal(t, map[emotion.Label]int{emotion.Happy: 2, emotion.Sad: 1}, got.EmotionSummary)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestConversationAppendUnknownDoesNotCreate(t *testing.T) {
	_, convs, _ := setupStores(t)
	ctx := context.Background()

	err := convs.Append(ctx, "nope", msg("hi", emotion.Neutral))
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = convs.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Equal(t, 0, convs.Count())
}

func TestConversationUpdatedAtNeverGoesBackwards(t *testing.T) {
	_, convs, user := setupStores(t)
	ctx := context.Background()

	conv, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)

	original := now
	defer func() { now = original }()
	now = func() time.Time { return conv.CreatedAt.Add(-time.Hour) }

	require.NoError(t, convs.Append(ctx, conv.ID, msg("hi", emotion.Neutral)))

	got, err := convs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.CreatedAt, got.UpdatedAt)
}

func TestConversationGetReturnsCopy(t *testing.T) {
	_, convs, user := setupStores(t)
	ctx := context.Background()

	conv, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, convs.Append(ctx, conv.ID, msg("hi", emotion.Happy)))

	got, err := convs.Get(ctx, conv.ID)
	require.NoError(t, err)
	got.Messages[0].Content = "tampered"
	got.EmotionSummary[emotion.Happy] = 99

	again, err := convs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Messages[0].Content)
	assert.Equal(t, 1, again.EmotionSummary[emotion.Happy])
}

func TestConversationListByUser(t *testing.T) {
	users, convs, user := setupStores(t)
	ctx := context.Background()

	other, err := users.Create(ctx, "Grace", nil)
	require.NoError(t, err)

	first, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)
	_, err = convs.Create(ctx, other.ID)
	require.NoError(t, err)
	second, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)

	list, err := convs.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	list, err = convs.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConversationListByUserEmptyAndUnknown(t *testing.T) {
	_, convs, user := setupStores(t)
	ctx := context.Background()

	list, err := convs.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = convs.ListByUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConversationConcurrentAppendsKeepSummaryConsistent(t *testing.T) {
	_, convs, user := setupStores(t)
	ctx := context.Background()

	conv, err := convs.Create(ctx, user.ID)
	require.NoError(t, err)

	labels := []emotion.Label{emotion.Happy, emotion.Sad, emotion.Angry, emotion.Neutral}
	const writers = 16
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				label := labels[(w+i)%len(labels)]
				if i%10 == 0 {
					label = ""
				}
				_ = convs.Append(ctx, conv.ID, msg(fmt.Sprintf("%d-%d", w, i), label))
			}
		}(w)
	}

	// readers interleave with writers and must always see a consistent pair
	done := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			snap, err := convs.Get(ctx, conv.ID)
			if !assert.NoError(t, err) {
				return
			}
			assertSummaryMatches(t, snap)
		}
	}()

	wg.Wait()
	close(done)
	readers.Wait()

	final, err := convs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, final.Messages, writers*perWriter)
	assertSummaryMatches(t, final)
}

func assertSummaryMatches(t *testing.T, conv models.Conversation) {
	t.Helper()
	counted := make(map[emotion.Label]int)
	labelled := 0
	for _, m := range conv.Messages {
		if m.Emotion != "" {
			counted[m.Emotion]++
			labelled++
		}
	}
	total := 0
	for _, n := range conv.EmotionSummary {
		total += n
	}
	assert.Equal(t, labelled, total)
	assert.Equal(t, counted, conv.EmotionSummary)
}
