package interfaces

import "lake-backend/internal/model"

// PostRepository 帖子及帖子点赞的数据访问
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id int) (*model.Post, error)
	Update(post *model.Post) error
	Delete(id int) error
	List(page, pageSize int) ([]*model.Post, int, error)
	ListByAuthor(authorID, page, pageSize int) ([]*model.Post, int, error)
	ListFeed(userID, page, pageSize int) ([]*model.Post, int, error)
	CreateLike(like *model.Like) error
	DeleteLike(userID, postID int) error
	CountLikes(postID int) (int, error)
	CountComments(postID int) (int, error)
	IsLikedBy(postID, userID int) (bool, error)
	ReconcileCounters() (int64, error)
}
