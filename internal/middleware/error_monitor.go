package middleware

import (
	"lake-backend/internal/errors"
	"lake-backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitorMiddleware 汇总请求处理中记录的错误
func ErrorMonitorMiddleware(analytics *errors.ErrorAnalytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ctx := errors.ErrorContext{
			RequestID: c.GetString(ContextRequestID),
			UserID:    RequesterID(c),
			Path:      path,
			Method:    c.Request.Method,
		}

		for _, e := range c.Errors {
			traced := errors.NewTracedError(e.Err, ctx)
			traced.AddLabel("status", http.StatusText(c.Writer.Status()))
			analytics.Record(traced)

			fields := []zap.Field{
				zap.Int("error_code", int(traced.Code)),
				zap.String("error_message", traced.Message),
				zap.String("request_id", ctx.RequestID),
				zap.String("path", ctx.Path),
				zap.String("method", ctx.Method),
			}
			if traced.Err != nil {
				fields = append(fields, zap.Error(traced.Err))
			}
			if c.Writer.Status() >= http.StatusInternalServerError {
				util.Logger.Error("请求处理错误", fields...)
			} else {
				util.Logger.Warn("请求被拒绝", fields...)
			}
		}
	}
}
