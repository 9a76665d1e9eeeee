package social

import (
	"lake-backend/internal/api"
	"lake-backend/internal/errors"
	"lake-backend/internal/middleware"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 只操作当前登录用户收到的通知
type NotificationHandler struct {
	notificationService service.NotificationServiceInterface
	serializer          *serializer.Serializer
}

func NewNotificationHandler(notificationService service.NotificationServiceInterface, s *serializer.Serializer) *NotificationHandler {
	return &NotificationHandler{notificationService, s}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.RequesterID(c)
	page, pageSize := api.Page(c)
	items, total, err := h.notificationService.List(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	views, err := h.serializer.Notifications(items, userID)
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, api.NewPaginated(views, total, page, pageSize), "")
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(middleware.RequesterID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"unread_count": count}, "")
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(id, middleware.RequesterID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "已标记为已读")
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notificationService.MarkAllRead(middleware.RequesterID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"updated": updated}, "全部标记为已读")
}
