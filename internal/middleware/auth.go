package middleware

import (
	"lake-backend/internal/errors"
	"lake-backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID = "user_id"
	ContextToken  = "token"
)

// TokenChecker 判断令牌是否已注销
type TokenChecker interface {
	IsTokenBlacklisted(token string) bool
}

func bearerToken(c *gin.Context) (string, *errors.AppError) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New(errors.ErrUnauthorized, "需要认证")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
		return "", errors.New(errors.ErrUnauthorized, "无效的认证格式")
	}
	return parts[1], nil
}

func authenticate(c *gin.Context, checker TokenChecker) (int, string, *errors.AppError) {
	token, appErr := bearerToken(c)
	if appErr != nil {
		return 0, "", appErr
	}
	if checker.IsTokenBlacklisted(token) {
		return 0, "", errors.New(errors.ErrUnauthorized, "令牌已被撤销")
	}
	userID, err := util.ValidateToken(token)
	if err != nil {
		return 0, "", errors.Wrap(errors.ErrInvalidToken, "无效或过期的令牌", err)
	}
	return userID, token, nil
}

func AuthMiddleware(checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.Logger.Debug("进入认证中间件",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))

		userID, token, appErr := authenticate(c, checker)
		if appErr != nil {
			errors.HandleError(c, appErr)
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// OptionalAuth 携带有效令牌时识别请求者，否则按匿名请求处理
func OptionalAuth(checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if userID, token, appErr := authenticate(c, checker); appErr == nil {
				c.Set(ContextUserID, userID)
				c.Set(ContextToken, token)
			} else {
				util.Logger.Debug("忽略无效令牌", zap.String("reason", appErr.Message))
			}
		}
		c.Next()
	}
}

// RequesterID 返回当前请求者，匿名时为 0
func RequesterID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}
