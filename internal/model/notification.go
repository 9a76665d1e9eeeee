package model

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// Notification 通知记录，只追加不修改（已读标记除外）
type Notification struct {
	ID          int              `json:"id"`
	RecipientID int              `json:"recipient_id"`
	SenderID    int              `json:"sender_id"`
	Type        NotificationType `json:"notification_type"`
	PostID      *int             `json:"post_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

type NotificationView struct {
	ID               int              `json:"id"`
	Sender           *UserProfile     `json:"sender"`
	NotificationType NotificationType `json:"notification_type"`
	Post             *PostView        `json:"post"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
}
