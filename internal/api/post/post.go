package post

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
)

// PostHandler 处理与帖子相关的HTTP请求
type PostHandler struct {
	postService service.PostServiceInterface
	serializer  *serializer.Serializer
	uploadLimit int64
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(postService service.PostServiceInterface, s *serializer.Serializer) *PostHandler {
	return &PostHandler{postService: postService, serializer: s, uploadLimit: api.MaxUploadSize}
}

// optionalFile 未上传时返回 nil
func optionalFile(c *gin.Context, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

func (h *PostHandler) render(c *gin.Context, post *model.Post) (*model.PostView, bool) {
	view, err := h.serializer.Post(post, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return nil, false
	}
	return view, true
}

func (h *PostHandler) renderList(c *gin.Context, posts []*model.Post, total, page, pageSize int) {
	views, err := h.serializer.Posts(posts, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, api.NewPaginated(views, total, page, pageSize), "")
}

// CreatePost 处理发布帖子请求，表单字段 caption、image 以及可选的 video
func (h *PostHandler) CreatePost(c *gin.Context) {
	util.Logger.Info("开始处理发布帖子请求")

	if !api.ParseMultipart(c, h.uploadLimit) {
		return
	}

	post, err := h.postService.CreatePost(
		middleware.RequesterID(c),
		c.PostForm("caption"),
		optionalFile(c, "image"),
		optionalFile(c, "video"),
	)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if view, ok := h.render(c, post); ok {
		errors.HandleCreated(c, view, "帖子发布成功")
	}
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.postService.GetPost(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if view, ok := h.render(c, post); ok {
		errors.HandleSuccess(c, view, "")
	}
}

// UpdatePost 只修改表单中出现的字段
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if !api.ParseMultipart(c, h.uploadLimit) {
		return
	}

	update := &service.PostUpdate{
		Image: optionalFile(c, "image"),
		Video: optionalFile(c, "video"),
	}
	if caption, present := c.GetPostForm("caption"); present {
		update.Caption = &caption
	}

	post, err := h.postService.UpdatePost(middleware.RequesterID(c), id, update)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if view, ok := h.render(c, post); ok {
		errors.HandleSuccess(c, view, "帖子更新成功")
	}
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.postService.DeletePost(middleware.RequesterID(c), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "帖子已删除")
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	page, pageSize := api.Page(c)
	posts, total, err := h.postService.ListPosts(page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.renderList(c, posts, total, page, pageSize)
}

func (h *PostHandler) ListUserPosts(c *gin.Context) {
	userID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := api.Page(c)
	posts, total, err := h.postService.ListUserPosts(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.renderList(c, posts, total, page, pageSize)
}

// Feed 自己和已关注用户的帖子，按时间倒序
func (h *PostHandler) Feed(c *gin.Context) {
	page, pageSize := api.Page(c)
	posts, total, err := h.postService.Feed(middleware.RequesterID(c), page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	h.renderList(c, posts, total, page, pageSize)
}

func (h *PostHandler) LikePost(c *gin.Context) {
	h.toggleLike(c, true)
}

func (h *PostHandler) UnlikePost(c *gin.Context) {
	h.toggleLike(c, false)
}

// toggleLike 点赞或取消点赞后返回最新的帖子表示
func (h *PostHandler) toggleLike(c *gin.Context, like bool) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)

	var err error
	if like {
		err = h.postService.LikePost(userID, id)
	} else {
		err = h.postService.UnlikePost(userID, id)
	}
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	post, err := h.postService.GetPost(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	view, ok := h.render(c, post)
	if !ok {
		return
	}
	if like {
		errors.HandleCreated(c, view, "点赞成功")
		return
	}
	errors.HandleSuccess(c, view, "已取消点赞")
}
