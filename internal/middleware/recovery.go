package middleware

import (
	"lake-backend/internal/errors"
	"lake-backend/internal/util"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				// 记录堆栈信息
				util.Logger.Error("发生panic",
					zap.Any("error", r),
					zap.String("request_id", c.GetString(ContextRequestID)),
					zap.String("stack", string(debug.Stack())))

				errors.HandleError(c, errors.New(errors.ErrInternal, "系统内部错误"))
			}
		}()
		c.Next()
	}
}
