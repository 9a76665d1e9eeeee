// Package mocks 提供仓库与外部依赖的 testify 模拟实现，供各包测试使用
package mocks

import (
	"lake-backend/internal/model"
	"lake-backend/internal/repository/interfaces"

	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.UserRepository         = (*UserRepository)(nil)
	_ interfaces.PostRepository         = (*PostRepository)(nil)
	_ interfaces.CommentRepository      = (*CommentRepository)(nil)
	_ interfaces.FollowRepository       = (*FollowRepository)(nil)
	_ interfaces.NotificationRepository = (*NotificationRepository)(nil)
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *UserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *UserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *UserRepository) Search(keyword string, page, pageSize int) ([]*model.User, int, error) {
	args := m.Called(keyword, page, pageSize)
	return args.Get(0).([]*model.User), args.Int(1), args.Error(2)
}

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *PostRepository) FindByID(id int) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostRepository) Update(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *PostRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *PostRepository) List(page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *PostRepository) ListByAuthor(authorID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(authorID, page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *PostRepository) ListFeed(userID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *PostRepository) CreateLike(like *model.Like) error {
	args := m.Called(like)
	return args.Error(0)
}

func (m *PostRepository) DeleteLike(userID, postID int) error {
	args := m.Called(userID, postID)
	return args.Error(0)
}

func (m *PostRepository) CountLikes(postID int) (int, error) {
	args := m.Called(postID)
	return args.Int(0), args.Error(1)
}

func (m *PostRepository) CountComments(postID int) (int, error) {
	args := m.Called(postID)
	return args.Int(0), args.Error(1)
}

func (m *PostRepository) IsLikedBy(postID, userID int) (bool, error) {
	args := m.Called(postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepository) ReconcileCounters() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *CommentRepository) FindByID(id int) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *CommentRepository) ListByPost(postID, page, pageSize int) ([]*model.Comment, int, error) {
	args := m.Called(postID, page, pageSize)
	return args.Get(0).([]*model.Comment), args.Int(1), args.Error(2)
}

func (m *CommentRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *CommentRepository) CreateLike(like *model.CommentLike) error {
	args := m.Called(like)
	return args.Error(0)
}

func (m *CommentRepository) DeleteLike(userID, commentID int) error {
	args := m.Called(userID, commentID)
	return args.Error(0)
}

func (m *CommentRepository) CountLikes(commentID int) (int, error) {
	args := m.Called(commentID)
	return args.Int(0), args.Error(1)
}

func (m *CommentRepository) IsLikedBy(commentID, userID int) (bool, error) {
	args := m.Called(commentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CommentRepository) ReconcileCounters() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type FollowRepository struct {
	mock.Mock
}

func (m *FollowRepository) Create(follow *model.Follow) error {
	args := m.Called(follow)
	return args.Error(0)
}

func (m *FollowRepository) Delete(followerID, followingID int) error {
	args := m.Called(followerID, followingID)
	return args.Error(0)
}

func (m *FollowRepository) Exists(followerID, followingID int) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepository) CountFollowers(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *FollowRepository) CountFollowing(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *FollowRepository) ListFollowers(userID, page, pageSize int) ([]*model.Follow, int, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.Follow), args.Int(1), args.Error(2)
}

func (m *FollowRepository) ListFollowing(userID, page, pageSize int) ([]*model.Follow, int, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.Follow), args.Int(1), args.Error(2)
}

func (m *FollowRepository) ReconcileCounters() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(n *model.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *NotificationRepository) FindByID(id int) (*model.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *NotificationRepository) ListByRecipient(recipientID, page, pageSize int) ([]*model.Notification, int, error) {
	args := m.Called(recipientID, page, pageSize)
	return args.Get(0).([]*model.Notification), args.Int(1), args.Error(2)
}

func (m *NotificationRepository) MarkRead(id, recipientID int) error {
	args := m.Called(id, recipientID)
	return args.Error(0)
}

func (m *NotificationRepository) MarkAllRead(recipientID int) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountUnread(recipientID int) (int, error) {
	args := m.Called(recipientID)
	return args.Int(0), args.Error(1)
}
