package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Code    ErrorCode           `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// SuccessResponse 定义成功响应结构
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrStorage:  http.StatusInternalServerError,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusBadRequest,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,

	// 业务错误 (4000-4999)
	ErrUserNotFound:         http.StatusNotFound,
	ErrUserExists:           http.StatusBadRequest,
	ErrPostNotFound:         http.StatusNotFound,
	ErrCommentNotFound:      http.StatusNotFound,
	ErrAlreadyFollowing:     http.StatusConflict,
	ErrAlreadyLiked:         http.StatusConflict,
	ErrSelfFollow:           http.StatusBadRequest,
	ErrNotificationNotFound: http.StatusNotFound,
}

// StatusOf 返回错误码对应的HTTP状态码
func StatusOf(code ErrorCode) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := As(err); ok {
		resp := ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		}

		// 只有请求格式错误才返回底层原因，其余只记录在日志中
		status := StatusOf(appErr.Code)
		if appErr.Err != nil && exposesCause(appErr.Code) {
			resp.Error = appErr.Err.Error()
		}

		c.AbortWithStatusJSON(status, resp)
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:    ErrInternal,
		Message: "Internal Server Error",
	})
}

func exposesCause(code ErrorCode) bool {
	return code == ErrBadRequest || code == ErrValidation
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusOK, data, message)
}

// HandleCreated 资源创建成功
func HandleCreated(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusCreated, data, message)
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, SuccessResponse{
		Code:    status,
		Message: message,
		Data:    data,
	})
}
