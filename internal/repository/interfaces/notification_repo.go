package interfaces

import "lake-backend/internal/model"

type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindByID(id int) (*model.Notification, error)
	ListByRecipient(recipientID, page, pageSize int) ([]*model.Notification, int, error)
	MarkRead(id, recipientID int) error
	MarkAllRead(recipientID int) (int64, error)
	CountUnread(recipientID int) (int, error)
}
