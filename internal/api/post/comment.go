package post

import (
	"lake-backend/internal/api"
	"lake-backend/internal/errors"
	"lake-backend/internal/middleware"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentServiceInterface
	serializer     *serializer.Serializer
}

func NewCommentHandler(commentService service.CommentServiceInterface, s *serializer.Serializer) *CommentHandler {
	return &CommentHandler{commentService, s}
}

type commentInput struct {
	Text string `json:"text"`
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	var input commentInput
	if !api.BindJSON(c, &input) {
		return
	}

	comment, err := h.commentService.CreateComment(middleware.RequesterID(c), postID, input.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	view, err := h.serializer.Comment(comment, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleCreated(c, view, "评论成功")
}

// ListComments 按时间正序列出帖子的评论
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := api.Page(c)
	comments, total, err := h.commentService.ListComments(postID, page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	views, err := h.serializer.Comments(comments, middleware.RequesterID(c))
	if err != nil {
		api.RenderFailed(c, err)
		return
	}
	errors.HandleSuccess(c, api.NewPaginated(views, total, page, pageSize), "")
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.DeleteComment(middleware.RequesterID(c), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "评论已删除")
}

func (h *CommentHandler) LikeComment(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.LikeComment(middleware.RequesterID(c), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleCreated(c, gin.H{"comment_id": id, "user_liked": true}, "点赞成功")
}

func (h *CommentHandler) UnlikeComment(c *gin.Context) {
	id, ok := api.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.UnlikeComment(middleware.RequesterID(c), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"comment_id": id, "user_liked": false}, "已取消点赞")
}
