package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lake-backend/internal/model"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "lake.notifications.42", Subject(42))
}

func TestEncodeNotification(t *testing.T) {
	postID := 7
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	data, err := encodeNotification(&model.Notification{
		ID: 3, RecipientID: 1, SenderID: 2, Type: model.NotificationComment, PostID: &postID, CreatedAt: created,
	})
	require.NoError(t, err)

	var ev NotificationEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, model.NotificationComment, ev.NotificationType)
	require.NotNil(t, ev.PostID)
	assert.Equal(t, 7, *ev.PostID)
	assert.True(t, created.Equal(ev.CreatedAt))
}

func TestEncodeFollowOmitsPost(t *testing.T) {
	data, err := encodeNotification(&model.Notification{ID: 1, RecipientID: 1, SenderID: 2, Type: model.NotificationFollow})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "post_id")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishNotification(&model.Notification{}))
	p.Close()
}
