package user

import (
	"lake-backend/internal/api"
	"lake-backend/internal/errors"
	"lake-backend/internal/middleware"
	"lake-backend/internal/model"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"
	"lake-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
	serializer  *serializer.Serializer
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface, s *serializer.Serializer) *AuthHandler {
	return &AuthHandler{userService, s}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var input model.RegisterInput
	if !api.BindJSON(c, &input) {
		return
	}

	user, err := h.userService.Register(&input)
	if err != nil {
		util.Logger.Warn("注册失败", zap.String("username", input.Username), zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	profile, err := h.serializer.Profile(user, user.ID)
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleCreated(c, profile, "注册成功")
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var input loginInput
	if !api.BindJSON(c, &input) {
		return
	}

	user, err := h.userService.Login(input.Username, input.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	profile, err := h.serializer.Profile(user, user.ID)
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  profile,
	}, "登录成功")
}

// Logout 处理用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.GetString(middleware.ContextToken)); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "已成功登出")
}

// RefreshToken 签发新令牌，旧令牌随即失效
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	oldToken := c.GetString(middleware.ContextToken)
	newToken, err := util.RefreshToken(oldToken)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "刷新令牌失败", err))
		return
	}
	if err := h.userService.Logout(oldToken); err != nil {
		util.Logger.Warn("旧令牌注销失败", zap.Error(err))
	}

	errors.HandleSuccess(c, gin.H{"token": newToken}, "令牌刷新成功")
}
