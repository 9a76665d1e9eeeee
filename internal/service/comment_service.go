package service

import (
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/interfaces"
	"lake-backend/internal/util"
	"strings"

	"go.uber.org/zap"
)

const msgBlank = "This field may not be blank."

type CommentService struct {
	commentRepo interfaces.CommentRepository
	postRepo    interfaces.PostRepository
	notifier    Notifier
	clock       util.Clock
}

func NewCommentService(commentRepo interfaces.CommentRepository, postRepo interfaces.PostRepository, notifier Notifier) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
		clock:       util.NewRealClock(),
	}
}

func (s *CommentService) findPost(postID int) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, storageError(err, "查询帖子失败")
	}
	if post == nil {
		return nil, apperrors.New(apperrors.ErrPostNotFound, "帖子不存在")
	}
	return post, nil
}

func (s *CommentService) findComment(commentID int) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, storageError(err, "查询评论失败")
	}
	if comment == nil {
		return nil, apperrors.New(apperrors.ErrCommentNotFound, "评论不存在")
	}
	return comment, nil
}

// CreateComment 发表评论并通知帖子作者
func (s *CommentService) CreateComment(userID, postID int, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewFieldError("text", msgBlank)
	}
	if tooLong(text, model.MaxCommentLength) {
		return nil, apperrors.NewFieldError("text",
			fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxCommentLength))
	}

	post, err := s.findPost(postID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	comment := &model.Comment{AuthorID: userID, PostID: postID, Text: text, CreatedAt: now, UpdatedAt: now}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, storageError(err, "创建评论失败")
	}

	if _, err := s.notifier.Notify(post.AuthorID, userID, model.NotificationComment, &post.ID); err != nil {
		util.Logger.Error("创建评论通知失败", zap.Error(err), zap.Int("post_id", postID))
	}
	return comment, nil
}

// ListComments 按时间正序返回评论
func (s *CommentService) ListComments(postID, page, pageSize int) ([]*model.Comment, int, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	comments, total, err := s.commentRepo.ListByPost(postID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询评论失败")
	}
	return comments, total, nil
}

// DeleteComment 评论作者或帖子作者可以删除
func (s *CommentService) DeleteComment(userID, commentID int) error {
	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		post, err := s.findPost(comment.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return apperrors.New(apperrors.ErrForbidden, "无权删除该评论")
		}
	}
	if err := s.commentRepo.Delete(commentID); err != nil {
		return storageError(err, "删除评论失败")
	}
	return nil
}

func (s *CommentService) LikeComment(userID, commentID int) error {
	if _, err := s.findComment(commentID); err != nil {
		return err
	}
	like := &model.CommentLike{UserID: userID, CommentID: commentID, CreatedAt: s.clock.Now()}
	if err := s.commentRepo.CreateLike(like); err != nil {
		return storageError(err, "评论点赞失败")
	}
	monitoring.Likes.WithLabelValues("comment").Inc()
	return nil
}

func (s *CommentService) UnlikeComment(userID, commentID int) error {
	if _, err := s.findComment(commentID); err != nil {
		return err
	}
	if err := s.commentRepo.DeleteLike(userID, commentID); err != nil {
		return storageError(err, "取消评论点赞失败")
	}
	return nil
}

type CommentServiceInterface interface {
	CreateComment(userID, postID int, text string) (*model.Comment, error)
	ListComments(postID, page, pageSize int) ([]*model.Comment, int, error)
	DeleteComment(userID, commentID int) error
	LikeComment(userID, commentID int) error
	UnlikeComment(userID, commentID int) error
}

var _ CommentServiceInterface = (*CommentService)(nil)
