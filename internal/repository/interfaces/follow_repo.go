package interfaces

import "lake-backend/internal/model"

// FollowRepository 关注关系的数据访问，(follower, following) 唯一
type FollowRepository interface {
	Create(follow *model.Follow) error
	Delete(followerID, followingID int) error
	Exists(followerID, followingID int) (bool, error)
	CountFollowers(userID int) (int, error)
	CountFollowing(userID int) (int, error)
	ListFollowers(userID, page, pageSize int) ([]*model.Follow, int, error)
	ListFollowing(userID, page, pageSize int) ([]*model.Follow, int, error)
	ReconcileCounters() (int64, error)
}
