package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode 定义错误码类型
type ErrorCode int

// 定义系统级错误码 (1000-1999)
const (
	ErrInternal ErrorCode = 1000 + iota
	ErrDatabase
	ErrStorage
)

// 定义认证相关错误码 (2000-2999)
const (
	ErrUnauthorized ErrorCode = 2000 + iota
	ErrForbidden
	ErrInvalidToken
	ErrTokenExpired
	ErrInvalidCredentials
)

// 定义请求相关错误码 (3000-3999)
const (
	ErrBadRequest ErrorCode = 3000 + iota
	ErrValidation
	ErrResourceNotFound
)

// 定义业务相关错误码 (4000-4999)
const (
	ErrUserNotFound ErrorCode = 4000 + iota
	ErrUserExists
	ErrPostNotFound
	ErrCommentNotFound
	ErrAlreadyFollowing
	ErrAlreadyLiked
	ErrSelfFollow
	ErrNotificationNotFound
)

// NonFieldErrorsKey 非字段错误在响应中的键名
const NonFieldErrorsKey = "non_field_errors"

// AppError 定义应用错误结构
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	// Fields 字段级错误，键为字段名
	Fields map[string][]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AddField 追加一个字段错误
func (e *AppError) AddField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// HasFields 是否包含字段错误
func (e *AppError) HasFields() bool {
	return len(e.Fields) > 0
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewFieldError 创建绑定到某个字段的验证错误
func NewFieldError(field, message string) *AppError {
	return New(ErrValidation, "数据验证失败").AddField(field, message)
}

// NewNonFieldError 创建不归属任何字段的错误
func NewNonFieldError(code ErrorCode, message string) *AppError {
	return New(code, message).AddField(NonFieldErrorsKey, message)
}

// As 从错误链中取出 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf 获取错误码，非 AppError 视为内部错误
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternal
}

// Is 判断错误链中是否包含指定错误码
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
