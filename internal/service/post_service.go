package service

import (
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/interfaces"
	"lake-backend/internal/storage"
	"lake-backend/internal/util"
	"mime/multipart"

	"go.uber.org/zap"
)

const (
	msgImageRequired = "No file was submitted."
	msgNotVideo      = "Upload a valid video."
)

// PostUpdate 帖子可修改的内容，nil 表示不修改
type PostUpdate struct {
	Caption *string
	Image   *multipart.FileHeader
	Video   *multipart.FileHeader
}

type PostService struct {
	postRepo interfaces.PostRepository
	uploader storage.Uploader
	notifier Notifier
	clock    util.Clock
}

func NewPostService(postRepo interfaces.PostRepository, uploader storage.Uploader, notifier Notifier) *PostService {
	return &PostService{
		postRepo: postRepo,
		uploader: uploader,
		notifier: notifier,
		clock:    util.NewRealClock(),
	}
}

func validateMedia(image, video *multipart.FileHeader, imageRequired bool) *apperrors.AppError {
	validationErr := apperrors.New(apperrors.ErrValidation, "数据验证失败")
	switch {
	case image == nil && imageRequired:
		validationErr.AddField("image", msgImageRequired)
	case image != nil && !util.IsImageUpload(image):
		validationErr.AddField("image", msgNotImage)
	}
	if video != nil && !util.IsVideoUpload(video) {
		validationErr.AddField("video", msgNotVideo)
	}
	return validationErr
}

func captionError(caption string) string {
	if tooLong(caption, model.MaxCaptionLength) {
		return fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxCaptionLength)
	}
	return ""
}

// CreatePost 上传媒体后保存帖子，保存失败时清理已上传的文件
func (s *PostService) CreatePost(authorID int, caption string, image, video *multipart.FileHeader) (*model.Post, error) {
	validationErr := validateMedia(image, video, true)
	if msg := captionError(caption); msg != "" {
		validationErr.AddField("caption", msg)
	}
	if validationErr.HasFields() {
		return nil, validationErr
	}

	post := &model.Post{AuthorID: authorID, Caption: caption}
	uploaded, err := s.uploadMedia(post, image, video)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if err := s.postRepo.Create(post); err != nil {
		s.discard(uploaded...)
		return nil, storageError(err, "创建帖子失败")
	}

	monitoring.PostsCreated.Inc()
	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID), zap.Int("author_id", authorID))
	return post, nil
}

// uploadMedia 上传非空的图片和视频并写入 post，返回新文件的 URL
func (s *PostService) uploadMedia(post *model.Post, image, video *multipart.FileHeader) ([]string, error) {
	var uploaded []string
	if image != nil {
		url, err := s.uploader.UploadFile(image, storage.ObjectPath("posts", image))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "上传图片失败", err)
		}
		post.Image = url
		uploaded = append(uploaded, url)
	}
	if video != nil {
		url, err := s.uploader.UploadFile(video, storage.ObjectPath("videos", video))
		if err != nil {
			s.discard(uploaded...)
			return nil, apperrors.Wrap(apperrors.ErrStorage, "上传视频失败", err)
		}
		post.Video = url
		uploaded = append(uploaded, url)
	}
	return uploaded, nil
}

func (s *PostService) discard(urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.uploader.Delete(url); err != nil {
			util.Logger.Warn("删除文件失败", zap.Error(err), zap.String("url", url))
		}
	}
}

func (s *PostService) GetPost(id int) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, storageError(err, "查询帖子失败")
	}
	if post == nil {
		return nil, apperrors.New(apperrors.ErrPostNotFound, "帖子不存在")
	}
	return post, nil
}

func (s *PostService) ownedPost(userID, postID int) (*model.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		util.Logger.Warn("无权操作他人的帖子", zap.Int("user_id", userID), zap.Int("post_id", postID))
		return nil, apperrors.New(apperrors.ErrForbidden, "只能修改自己的帖子")
	}
	return post, nil
}

// UpdatePost 仅作者可修改；替换的媒体文件在保存成功后删除
func (s *PostService) UpdatePost(userID, postID int, update *PostUpdate) (*model.Post, error) {
	validationErr := validateMedia(update.Image, update.Video, false)
	if update.Caption != nil {
		if msg := captionError(*update.Caption); msg != "" {
			validationErr.AddField("caption", msg)
		}
	}
	if validationErr.HasFields() {
		return nil, validationErr
	}

	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return nil, err
	}

	oldImage, oldVideo := post.Image, post.Video
	if update.Caption != nil {
		post.Caption = *update.Caption
	}
	uploaded, err := s.uploadMedia(post, update.Image, update.Video)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(post); err != nil {
		s.discard(uploaded...)
		return nil, storageError(err, "更新帖子失败")
	}

	if update.Image != nil {
		s.discard(oldImage)
	}
	if update.Video != nil {
		s.discard(oldVideo)
	}
	return post, nil
}

// DeletePost 仅作者可删除
func (s *PostService) DeletePost(userID, postID int) error {
	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(postID); err != nil {
		return storageError(err, "删除帖子失败")
	}
	s.discard(post.Image, post.Video)
	util.Logger.Info("帖子已删除", zap.Int("post_id", postID))
	return nil
}

func (s *PostService) ListPosts(page, pageSize int) ([]*model.Post, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	posts, total, err := s.postRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询帖子失败")
	}
	return posts, total, nil
}

func (s *PostService) ListUserPosts(authorID, page, pageSize int) ([]*model.Post, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	posts, total, err := s.postRepo.ListByAuthor(authorID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询帖子失败")
	}
	return posts, total, nil
}

// Feed 返回本人及关注对象的帖子
func (s *PostService) Feed(userID, page, pageSize int) ([]*model.Post, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	posts, total, err := s.postRepo.ListFeed(userID, page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "查询动态失败")
	}
	return posts, total, nil
}

// LikePost 点赞并通知帖子作者
func (s *PostService) LikePost(userID, postID int) error {
	post, err := s.GetPost(postID)
	if err != nil {
		return err
	}

	like := &model.Like{UserID: userID, PostID: postID, CreatedAt: s.clock.Now()}
	if err := s.postRepo.CreateLike(like); err != nil {
		return storageError(err, "点赞失败")
	}
	monitoring.Likes.WithLabelValues("post").Inc()

	if _, err := s.notifier.Notify(post.AuthorID, userID, model.NotificationLike, &post.ID); err != nil {
		util.Logger.Error("创建点赞通知失败", zap.Error(err), zap.Int("post_id", postID))
	}
	return nil
}

func (s *PostService) UnlikePost(userID, postID int) error {
	if _, err := s.GetPost(postID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteLike(userID, postID); err != nil {
		return storageError(err, "取消点赞失败")
	}
	return nil
}

type PostServiceInterface interface {
	CreatePost(authorID int, caption string, image, video *multipart.FileHeader) (*model.Post, error)
	GetPost(id int) (*model.Post, error)
	UpdatePost(userID, postID int, update *PostUpdate) (*model.Post, error)
	DeletePost(userID, postID int) error
	ListPosts(page, pageSize int) ([]*model.Post, int, error)
	ListUserPosts(authorID, page, pageSize int) ([]*model.Post, int, error)
	Feed(userID, page, pageSize int) ([]*model.Post, int, error)
	LikePost(userID, postID int) error
	UnlikePost(userID, postID int) error
}

var _ PostServiceInterface = (*PostService)(nil)
