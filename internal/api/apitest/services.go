// Package apitest 提供处理器测试使用的模拟服务与辅助函数
package apitest

import (
	"lake-backend/internal/model"
	"lake-backend/internal/service"
	"mime/multipart"

	"github.com/stretchr/testify/mock"
)

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(input *model.RegisterInput) (*model.User, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) Login(username, password string) (*model.User, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) UpdateProfile(userID int, update *model.ProfileUpdate) (*model.User, error) {
	args := m.Called(userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) UpdateProfilePicture(userID int, file *multipart.FileHeader) (*model.User, error) {
	args := m.Called(userID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) UpdateCoverPhoto(userID int, file *multipart.FileHeader) (*model.User, error) {
	args := m.Called(userID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserService) DeleteAccount(userID int) error {
	return m.Called(userID).Error(0)
}

func (m *UserService) SearchUsers(keyword string, page, pageSize int) ([]*model.User, int, error) {
	args := m.Called(keyword, page, pageSize)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Int(1), args.Error(2)
}

func (m *UserService) Logout(token string) error {
	return m.Called(token).Error(0)
}

func (m *UserService) IsTokenBlacklisted(token string) bool {
	return m.Called(token).Bool(0)
}

var _ service.UserServiceInterface = (*UserService)(nil)

type PostService struct {
	mock.Mock
}

func (m *PostService) CreatePost(authorID int, caption string, image, video *multipart.FileHeader) (*model.Post, error) {
	args := m.Called(authorID, caption, image, video)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostService) GetPost(id int) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostService) UpdatePost(userID, postID int, update *service.PostUpdate) (*model.Post, error) {
	args := m.Called(userID, postID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostService) DeletePost(userID, postID int) error {
	return m.Called(userID, postID).Error(0)
}

func (m *PostService) ListPosts(page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(page, pageSize)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Int(1), args.Error(2)
}

func (m *PostService) ListUserPosts(authorID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(authorID, page, pageSize)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Int(1), args.Error(2)
}

func (m *PostService) Feed(userID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(userID, page, pageSize)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Int(1), args.Error(2)
}

func (m *PostService) LikePost(userID, postID int) error {
	return m.Called(userID, postID).Error(0)
}

func (m *PostService) UnlikePost(userID, postID int) error {
	return m.Called(userID, postID).Error(0)
}

var _ service.PostServiceInterface = (*PostService)(nil)

type CommentService struct {
	mock.Mock
}

func (m *CommentService) CreateComment(userID, postID int, text string) (*model.Comment, error) {
	args := m.Called(userID, postID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *CommentService) ListComments(postID, page, pageSize int) ([]*model.Comment, int, error) {
	args := m.Called(postID, page, pageSize)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Int(1), args.Error(2)
}

func (m *CommentService) DeleteComment(userID, commentID int) error {
	return m.Called(userID, commentID).Error(0)
}

func (m *CommentService) LikeComment(userID, commentID int) error {
	return m.Called(userID, commentID).Error(0)
}

func (m *CommentService) UnlikeComment(userID, commentID int) error {
	return m.Called(userID, commentID).Error(0)
}

var _ service.CommentServiceInterface = (*CommentService)(nil)

type FollowService struct {
	mock.Mock
}

func (m *FollowService) Follow(followerID, followingID int) (*model.Follow, error) {
	args := m.Called(followerID, followingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Follow), args.Error(1)
}

func (m *FollowService) Unfollow(followerID, followingID int) error {
	return m.Called(followerID, followingID).Error(0)
}

func (m *FollowService) Followers(userID, page, pageSize int) ([]*model.Follow, int, error) {
	args := m.Called(userID, page, pageSize)
	follows, _ := args.Get(0).([]*model.Follow)
	return follows, args.Int(1), args.Error(2)
}

func (m *FollowService) Following(userID, page, pageSize int) ([]*model.Follow, int, error) {
	args := m.Called(userID, page, pageSize)
	follows, _ := args.Get(0).([]*model.Follow)
	return follows, args.Int(1), args.Error(2)
}

func (m *FollowService) Status(followerID, followingID int) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

var _ service.FollowServiceInterface = (*FollowService)(nil)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Notify(recipientID, senderID int, typ model.NotificationType, postID *int) (*model.Notification, error) {
	args := m.Called(recipientID, senderID, typ, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *NotificationService) List(recipientID, page, pageSize int) ([]*model.Notification, int, error) {
	args := m.Called(recipientID, page, pageSize)
	items, _ := args.Get(0).([]*model.Notification)
	return items, args.Int(1), args.Error(2)
}

func (m *NotificationService) MarkRead(id, recipientID int) error {
	return m.Called(id, recipientID).Error(0)
}

func (m *NotificationService) MarkAllRead(recipientID int) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) UnreadCount(recipientID int) (int, error) {
	args := m.Called(recipientID)
	return args.Int(0), args.Error(1)
}

var _ service.NotificationServiceInterface = (*NotificationService)(nil)
