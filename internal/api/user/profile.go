package user

import (
	"lake-backend/internal/api"
	"lake-backend/internal/errors"
	"lake-backend/internal/middleware"
	"lake-backend/internal/model"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"
	"lake-backend/internal/util"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgNoFile = "No file was submitted."

type ProfileHandler struct {
	userService service.UserServiceInterface
	serializer  *serializer.Serializer
}

func NewProfileHandler(userService service.UserServiceInterface, s *serializer.Serializer) *ProfileHandler {
	return &ProfileHandler{userService, s}
}

func (h *ProfileHandler) respond(c *gin.Context, user *model.User, message string) {
	profile, err := h.serializer.Profile(user, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, profile, message)
}

// GetProfile 当前登录用户的资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetUserByID(middleware.RequesterID(c))
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	h.respond(c, user, "")
}

// GetUser 查看任意用户的资料
func (h *ProfileHandler) GetUser(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.respond(c, user, "")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var update model.ProfileUpdate
	if !api.BindJSON(c, &update) {
		return
	}

	user, err := h.userService.UpdateProfile(middleware.RequesterID(c), &update)
	if err != nil {
		util.Logger.Warn("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	h.respond(c, user, "资料更新成功")
}

func formFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	api.LimitBody(c, api.MaxUploadSize)
	file, err := c.FormFile(field)
	if err != nil {
		util.Logger.Warn("获取上传文件失败", zap.String("field", field), zap.Error(err))
		errors.HandleError(c, errors.NewFieldError(field, msgNoFile))
		return nil, false
	}
	return file, true
}

func (h *ProfileHandler) UploadProfilePicture(c *gin.Context) {
	file, ok := formFile(c, "profile_picture")
	if !ok {
		return
	}
	user, err := h.userService.UpdateProfilePicture(middleware.RequesterID(c), file)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.respond(c, user, "头像上传成功")
}

func (h *ProfileHandler) UploadCoverPhoto(c *gin.Context) {
	file, ok := formFile(c, "cover_photo")
	if !ok {
		return
	}
	user, err := h.userService.UpdateCoverPhoto(middleware.RequesterID(c), file)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.respond(c, user, "封面上传成功")
}

// DeleteAccount 注销账户，关联的帖子、评论、关注和通知一并删除
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.RequesterID(c)
	if err := h.userService.DeleteAccount(userID); err != nil {
		util.Logger.Error("注销账户失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	if err := h.userService.Logout(c.GetString(middleware.ContextToken)); err != nil {
		util.Logger.Warn("注销后令牌失效处理失败", zap.Error(err))
	}
	errors.HandleSuccess(c, nil, "账户已注销")
}

func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	page, pageSize := api.Page(c)
	users, total, err := h.userService.SearchUsers(c.Query("keyword"), page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	profiles, err := h.serializer.Profiles(users, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, api.NewPaginated(profiles, total, page, pageSize), "")
}
