package service

import (
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/interfaces"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

const msgSelfFollow = "You cannot follow yourself."

type FollowService struct {
	followRepo interfaces.FollowRepository
	userRepo   interfaces.UserRepository
	notifier   Notifier
	clock      util.Clock
}

func NewFollowService(followRepo interfaces.FollowRepository, userRepo interfaces.UserRepository, notifier Notifier) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		clock:      util.NewRealClock(),
	}
}

func (s *FollowService) ensureUser(userID int) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return storageError(err, "查询用户失败")
	}
	if user == nil {
		return apperrors.New(apperrors.ErrUserNotFound, "用户不存在")
	}
	return nil
}

// Follow 关注用户并通知对方，不能关注自己
func (s *FollowService) Follow(followerID, followingID int) (*model.Follow, error) {
	if followerID == followingID {
		return nil, apperrors.NewNonFieldError(apperrors.ErrSelfFollow, msgSelfFollow)
	}
	if err := s.ensureUser(followingID); err != nil {
		return nil, err
	}

	follow := &model.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: s.clock.Now()}
	if err := s.followRepo.Create(follow); err != nil {
		return nil, storageError(err, "关注失败")
	}
	monitoring.Follows.Inc()

	if _, err := s.notifier.Notify(followingID, followerID, model.NotificationFollow, nil); err != nil {
		util.Logger.Error("创建关注通知失败", zap.Error(err), zap.Int("following_id", followingID))
	}
	return follow, nil
}

func (s *FollowService) Unfollow(followerID, followingID int) error {
	if err := s.followRepo.Delete(followerID, followingID); err != nil {
		return storageError(err, "取消关注失败")
	}
	return nil
}

// Followers 关注 userID 的记录
func (s *FollowService) Followers(userID, page, pageSize int) ([]*model.Follow, int, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	follows, total, err := s.followRepo.ListFollowers(userID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询粉丝失败")
	}
	return follows, total, nil
}

// Following userID 关注的记录
func (s *FollowService) Following(userID, page, pageSize int) ([]*model.Follow, int, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	follows, total, err := s.followRepo.ListFollowing(userID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询关注失败")
	}
	return follows, total, nil
}

func (s *FollowService) Status(followerID, followingID int) (bool, error) {
	ok, err := s.followRepo.Exists(followerID, followingID)
	if err != nil {
		return false, storageError(err, "查询关注状态失败")
	}
	return ok, nil
}

type FollowServiceInterface interface {
	Follow(followerID, followingID int) (*model.Follow, error)
	Unfollow(followerID, followingID int) error
	Followers(userID, page, pageSize int) ([]*model.Follow, int, error)
	Following(userID, page, pageSize int) ([]*model.Follow, int, error)
	Status(followerID, followingID int) (bool, error)
}

var _ FollowServiceInterface = (*FollowService)(nil)
