package service

import (
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"unicode/utf8"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// normalizePage 将非法分页参数收敛到默认值
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// storageError 保留仓库返回的业务错误，其余包装为数据库错误
func storageError(err error, message string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Wrap(apperrors.ErrDatabase, message, err)
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// Notifier 在点赞、评论、关注后生成通知
type Notifier interface {
	Notify(recipientID, senderID int, typ model.NotificationType, postID *int) (*model.Notification, error)
}
