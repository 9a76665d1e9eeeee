package service

import (
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/events"
	"lake-backend/internal/model"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/interfaces"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

type NotificationService struct {
	repo      interfaces.NotificationRepository
	publisher events.Publisher
	clock     util.Clock
}

func NewNotificationService(repo interfaces.NotificationRepository, publisher events.Publisher) *NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &NotificationService{repo: repo, publisher: publisher, clock: util.NewRealClock()}
}

// Notify 保存通知并推送事件；发送者与接收者相同时不产生通知
func (s *NotificationService) Notify(recipientID, senderID int, typ model.NotificationType, postID *int) (*model.Notification, error) {
	if recipientID == senderID {
		return nil, nil
	}
	if !typ.Valid() {
		return nil, apperrors.NewFieldError("notification_type", "不支持的通知类型")
	}

	n := &model.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		PostID:      postID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(n); err != nil {
		return nil, storageError(err, "创建通知失败")
	}
	monitoring.NotificationsCreated.WithLabelValues(string(typ)).Inc()

	// 推送失败不影响已保存的通知
	if err := s.publisher.PublishNotification(n); err != nil {
		util.Logger.Warn("推送通知事件失败", zap.Error(err), zap.Int("notification_id", n.ID))
	}
	return n, nil
}

// List 按时间倒序返回通知
func (s *NotificationService) List(recipientID, page, pageSize int) ([]*model.Notification, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	items, total, err := s.repo.ListByRecipient(recipientID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询通知失败")
	}
	return items, total, nil
}

func (s *NotificationService) MarkRead(id, recipientID int) error {
	if err := s.repo.MarkRead(id, recipientID); err != nil {
		return storageError(err, "标记通知失败")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(recipientID int) (int64, error) {
	n, err := s.repo.MarkAllRead(recipientID)
	if err != nil {
		return 0, storageError(err, "标记通知失败")
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(recipientID int) (int, error) {
	n, err := s.repo.CountUnread(recipientID)
	if err != nil {
		return 0, storageError(err, "统计未读通知失败")
	}
	return n, nil
}

type NotificationServiceInterface interface {
	Notifier
	List(recipientID, page, pageSize int) ([]*model.Notification, int, error)
	MarkRead(id, recipientID int) error
	MarkAllRead(recipientID int) (int64, error)
	UnreadCount(recipientID int) (int, error)
}

var _ NotificationServiceInterface = (*NotificationService)(nil)
