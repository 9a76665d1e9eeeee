package interfaces

import "lake-backend/internal/model"

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id int) (*model.Comment, error)
	ListByPost(postID, page, pageSize int) ([]*model.Comment, int, error)
	Delete(id int) error
	CreateLike(like *model.CommentLike) error
	DeleteLike(userID, commentID int) error
	CountLikes(commentID int) (int, error)
	IsLikedBy(commentID, userID int) (bool, error)
	ReconcileCounters() (int64, error)
}
