// Package serializer 将存储模型转换为对外表示，计数字段均实时统计
package serializer

import (
	"fmt"
	"lake-backend/internal/model"
	"lake-backend/internal/repository/interfaces"
)

// Anonymous 未登录请求者
const Anonymous = 0

// 帖子详情中内嵌的评论数量上限
const embeddedCommentLimit = 50

type Serializer struct {
	users    interfaces.UserRepository
	posts    interfaces.PostRepository
	comments interfaces.CommentRepository
	follows  interfaces.FollowRepository
}

func New(users interfaces.UserRepository, posts interfaces.PostRepository,
	comments interfaces.CommentRepository, follows interfaces.FollowRepository) *Serializer {
	return &Serializer{users: users, posts: posts, comments: comments, follows: follows}
}

// Profile 用户资料，is_following 表示 requesterID 是否关注了该用户
func (s *Serializer) Profile(user *model.User, requesterID int) (*model.UserProfile, error) {
	followers, err := s.follows.CountFollowers(user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if requesterID != Anonymous && requesterID != user.ID {
		if isFollowing, err = s.follows.Exists(requesterID, user.ID); err != nil {
			return nil, err
		}
	}

	return &model.UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		CoverPhoto:     user.CoverPhoto,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      user.CreatedAt,
	}, nil
}

func (s *Serializer) Profiles(users []*model.User, requesterID int) ([]*model.UserProfile, error) {
	out := make([]*model.UserProfile, 0, len(users))
	for _, u := range users {
		p, err := s.Profile(u, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// profileByID 用于嵌套的作者、关注者和通知发送者
func (s *Serializer) profileByID(userID, requesterID int) (*model.UserProfile, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("用户 %d 不存在", userID)
	}
	return s.Profile(user, requesterID)
}

// Comment 评论表示，包含作者与点赞状态
func (s *Serializer) Comment(comment *model.Comment, requesterID int) (*model.CommentView, error) {
	author, err := s.profileByID(comment.AuthorID, requesterID)
	if err != nil {
		return nil, err
	}
	likes, err := s.comments.CountLikes(comment.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if requesterID != Anonymous {
		if liked, err = s.comments.IsLikedBy(comment.ID, requesterID); err != nil {
			return nil, err
		}
	}
	return &model.CommentView{
		ID:         comment.ID,
		Author:     author,
		Text:       comment.Text,
		LikesCount: likes,
		UserLiked:  liked,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}, nil
}

func (s *Serializer) Comments(comments []*model.Comment, requesterID int) ([]*model.CommentView, error) {
	out := make([]*model.CommentView, 0, len(comments))
	for _, c := range comments {
		v, err := s.Comment(c, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Post 帖子表示，内嵌作者、评论以及点赞状态
func (s *Serializer) Post(post *model.Post, requesterID int) (*model.PostView, error) {
	author, err := s.profileByID(post.AuthorID, requesterID)
	if err != nil {
		return nil, err
	}
	likes, err := s.posts.CountLikes(post.ID)
	if err != nil {
		return nil, err
	}
	commentsCount, err := s.posts.CountComments(post.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if requesterID != Anonymous {
		if liked, err = s.posts.IsLikedBy(post.ID, requesterID); err != nil {
			return nil, err
		}
	}

	comments, _, err := s.comments.ListByPost(post.ID, 1, embeddedCommentLimit)
	if err != nil {
		return nil, err
	}
	commentViews, err := s.Comments(comments, requesterID)
	if err != nil {
		return nil, err
	}

	var video *string
	if post.Video != "" {
		v := post.Video
		video = &v
	}

	return &model.PostView{
		ID:            post.ID,
		Author:        author,
		Caption:       post.Caption,
		Image:         post.Image,
		Video:         video,
		LikesCount:    likes,
		CommentsCount: commentsCount,
		Comments:      commentViews,
		UserLiked:     liked,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}, nil
}

func (s *Serializer) Posts(posts []*model.Post, requesterID int) ([]*model.PostView, error) {
	out := make([]*model.PostView, 0, len(posts))
	for _, p := range posts {
		v, err := s.Post(p, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Serializer) Follow(follow *model.Follow, requesterID int) (*model.FollowView, error) {
	follower, err := s.profileByID(follow.FollowerID, requesterID)
	if err != nil {
		return nil, err
	}
	following, err := s.profileByID(follow.FollowingID, requesterID)
	if err != nil {
		return nil, err
	}
	return &model.FollowView{
		ID:        follow.ID,
		Follower:  follower,
		Following: following,
		CreatedAt: follow.CreatedAt,
	}, nil
}

func (s *Serializer) Follows(follows []*model.Follow, requesterID int) ([]*model.FollowView, error) {
	out := make([]*model.FollowView, 0, len(follows))
	for _, f := range follows {
		v, err := s.Follow(f, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Notification 通知表示，关注类通知没有关联帖子
func (s *Serializer) Notification(n *model.Notification, requesterID int) (*model.NotificationView, error) {
	sender, err := s.profileByID(n.SenderID, requesterID)
	if err != nil {
		return nil, err
	}

	var post *model.PostView
	if n.PostID != nil {
		p, err := s.posts.FindByID(*n.PostID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			if post, err = s.Post(p, requesterID); err != nil {
				return nil, err
			}
		}
	}

	return &model.NotificationView{
		ID:               n.ID,
		Sender:           sender,
		NotificationType: n.Type,
		Post:             post,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
	}, nil
}

func (s *Serializer) Notifications(items []*model.Notification, requesterID int) ([]*model.NotificationView, error) {
	out := make([]*model.NotificationView, 0, len(items))
	for _, n := range items {
		v, err := s.Notification(n, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
