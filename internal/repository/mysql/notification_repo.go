package mysql

import (
	"database/sql"
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

const notificationColumns = `id, recipient_id, sender_id, notification_type, post_id, is_read, created_at`

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	var postID sql.NullInt64
	var typ string
	if err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &typ, &postID, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = model.NotificationType(typ)
	if postID.Valid {
		id := int(postID.Int64)
		n.PostID = &id
	}
	return &n, nil
}

func (r *notificationRepository) Create(n *model.Notification) error {
	if !n.Type.Valid() {
		return apperrors.NewFieldError("notification_type", "不支持的通知类型")
	}
	n.CreatedAt = nowIfZero(n.CreatedAt)

	result, err := r.db.Exec(`INSERT INTO notifications (recipient_id, sender_id, notification_type, post_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.RecipientID, n.SenderID, string(n.Type), nullInt(n.PostID), n.IsRead, n.CreatedAt)
	if err != nil {
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrResourceNotFound, "通知关联的记录不存在", err)
		}
		util.Logger.Error("创建通知失败", zap.Error(err), zap.Int("recipient_id", n.RecipientID))
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = int(id)
	return nil
}

func (r *notificationRepository) FindByID(id int) (*model.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query notification: %w", err)
	}
	return n, nil
}

// ListByRecipient 按时间倒序返回通知
func (r *notificationRepository) ListByRecipient(recipientID, page, pageSize int) ([]*model.Notification, int, error) {
	limit, offset := offsetOf(page, pageSize)

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE recipient_id = ?`, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := r.db.Query(`SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, recipientID, limit, offset)
	if err != nil {
		util.Logger.Error("查询通知失败", zap.Error(err), zap.Int("recipient_id", recipientID))
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead 只能标记属于 recipientID 的通知
func (r *notificationRepository) MarkRead(id, recipientID int) error {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ? AND recipient_id = ?)`,
		id, recipientID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check notification: %w", err)
	}
	if !exists {
		return apperrors.New(apperrors.ErrNotificationNotFound, "通知不存在")
	}

	if _, err := r.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE id = ? AND recipient_id = ?`, id, recipientID); err != nil {
		util.Logger.Error("标记通知已读失败", zap.Error(err), zap.Int("notification_id", id))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(recipientID int) (int64, error) {
	result, err := r.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE recipient_id = ? AND is_read = FALSE`, recipientID)
	if err != nil {
		util.Logger.Error("标记全部已读失败", zap.Error(err), zap.Int("recipient_id", recipientID))
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *notificationRepository) CountUnread(recipientID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = FALSE`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
