package social

import (
	"lake-backend/internal/api"
	"lake-backend/internal/errors"
	"lake-backend/internal/middleware"
	"lake-backend/internal/model"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// FollowHandler 处理关注关系相关的HTTP请求，路径中的 id 为被操作的用户
type FollowHandler struct {
	followService service.FollowServiceInterface
	serializer    *serializer.Serializer
}

func NewFollowHandler(followService service.FollowServiceInterface, s *serializer.Serializer) *FollowHandler {
	return &FollowHandler{followService, s}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	targetID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	follow, err := h.followService.Follow(middleware.RequesterID(c), targetID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	view, err := h.serializer.Follow(follow, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleCreated(c, view, "关注成功")
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	targetID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.followService.Unfollow(middleware.RequesterID(c), targetID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "已取消关注")
}

func (h *FollowHandler) Followers(c *gin.Context) {
	h.list(c, h.followService.Followers)
}

func (h *FollowHandler) Following(c *gin.Context) {
	h.list(c, h.followService.Following)
}

func (h *FollowHandler) list(c *gin.Context, fetch func(userID, page, pageSize int) ([]*model.Follow, int, error)) {
	userID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := api.Page(c)
	follows, total, err := fetch(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	views, err := h.serializer.Follows(follows, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, api.NewPaginated(views, total, page, pageSize), "")
}

// Status 当前用户是否关注了路径中的用户
func (h *FollowHandler) Status(c *gin.Context) {
	targetID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	following, err := h.followService.Status(middleware.RequesterID(c), targetID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"is_following": following}, "")
}
