package service

import (
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/mocks"
	"lake-backend/internal/model"
)

func newTestPostService(t *testing.T) (*PostService, *mocks.PostRepository, *mocks.Uploader, *MockNotifier) {
	repo := new(mocks.PostRepository)
	uploader := new(mocks.Uploader)
	notifier := new(MockNotifier)
	svc := NewPostService(repo, uploader, notifier)
	svc.clock = stubClock(t)
	return svc, repo, uploader, notifier
}

func TestCreatePost(t *testing.T) {
	svc, repo, uploader, _ := newTestPostService(t)

	image := mediaFile(t, "sunset.jpg", jpegBytes)
	video := mediaFile(t, "clip.mp4", mp4Bytes)
	uploader.On("UploadFile", image, mock.AnythingOfType("string")).Return("http://cdn/sunset.jpg", nil)
	uploader.On("UploadFile", video, mock.AnythingOfType("string")).Return("http://cdn/clip.mp4", nil)
	repo.On("Create", mock.MatchedBy(func(p *model.Post) bool {
		return p.Image == "http://cdn/sunset.jpg" && p.Video == "http://cdn/clip.mp4" && p.CreatedAt.Equal(testNow)
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*model.Post).ID = 5
	}).Return(nil)

	caption := gofakeit.Username() + " at the lake"
	post, err := svc.CreatePost(1, caption, image, video)
	require.NoError(t, err)
	assert.Equal(t, 5, post.ID)
	assert.Equal(t, caption, post.Caption)
	repo.AssertExpectations(t)
}

func TestCreatePostRequiresImage(t *testing.T) {
	svc, _, _, _ := newTestPostService(t)

	_, err := svc.CreatePost(1, "hello", nil, mediaFile(t, "doc.pdf", []byte("%PDF-1.4")))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{msgImageRequired}, appErr.Fields["image"])
	assert.Equal(t, []string{msgNotVideo}, appErr.Fields["video"])
}

func TestCreatePostRejectsDisguisedFiles(t *testing.T) {
	svc, _, uploader, _ := newTestPostService(t)

	// 扩展名正确但内容不是图片或视频
	image := mediaFile(t, "x.jpg", []byte("just some text, not an image"))
	video := mediaFile(t, "clip.mp4", pngBytes)
	_, err := svc.CreatePost(1, "hello", image, video)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{msgNotImage}, appErr.Fields["image"])
	assert.Equal(t, []string{msgNotVideo}, appErr.Fields["video"])
	uploader.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
}

func TestCreatePostCleansUpOnStorageFailure(t *testing.T) {
	svc, repo, uploader, _ := newTestPostService(t)

	image := mediaFile(t, "a.png", pngBytes)
	uploader.On("UploadFile", image, mock.AnythingOfType("string")).Return("http://cdn/a.png", nil)
	repo.On("Create", mock.AnythingOfType("*model.Post")).Return(errors.New("connection reset"))
	uploader.On("Delete", "http://cdn/a.png").Return(nil)

	_, err := svc.CreatePost(1, "", image, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrDatabase))
	uploader.AssertExpectations(t)
}

func TestUpdatePostOnlyAuthor(t *testing.T) {
	svc, repo, _, _ := newTestPostService(t)

	repo.On("FindByID", 5).Return(&model.Post{ID: 5, AuthorID: 1, Caption: "old"}, nil)

	caption := "new"
	_, err := svc.UpdatePost(2, 5, &PostUpdate{Caption: &caption})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	repo.On("Update", mock.MatchedBy(func(p *model.Post) bool { return p.Caption == "new" })).Return(nil)
	post, err := svc.UpdatePost(1, 5, &PostUpdate{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "new", post.Caption)
}

func TestDeletePostRemovesMedia(t *testing.T) {
	svc, repo, uploader, _ := newTestPostService(t)

	repo.On("FindByID", 5).Return(&model.Post{ID: 5, AuthorID: 1, Image: "http://cdn/a.png"}, nil)
	repo.On("Delete", 5).Return(nil)
	uploader.On("Delete", "http://cdn/a.png").Return(nil)

	require.NoError(t, svc.DeletePost(1, 5))
	uploader.AssertExpectations(t)

	repo.On("FindByID", 6).Return(nil, nil)
	assert.True(t, apperrors.Is(svc.DeletePost(1, 6), apperrors.ErrPostNotFound))
}

func TestLikePostNotifiesAuthor(t *testing.T) {
	svc, repo, _, notifier := newTestPostService(t)

	repo.On("FindByID", 5).Return(&model.Post{ID: 5, AuthorID: 1}, nil)
	repo.On("CreateLike", mock.MatchedBy(func(l *model.Like) bool { return l.UserID == 2 && l.PostID == 5 })).Return(nil)
	notifier.On("Notify", 1, 2, model.NotificationLike, intPtr(5)).Return(&model.Notification{ID: 1}, nil)

	require.NoError(t, svc.LikePost(2, 5))
	notifier.AssertExpectations(t)
}

func TestLikePostTwiceConflicts(t *testing.T) {
	svc, repo, _, notifier := newTestPostService(t)

	repo.On("FindByID", 5).Return(&model.Post{ID: 5, AuthorID: 1}, nil)
	repo.On("CreateLike", mock.AnythingOfType("*model.Like")).
		Return(apperrors.New(apperrors.ErrAlreadyLiked, "已经点赞过该帖子"))

	err := svc.LikePost(2, 5)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyLiked))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeed(t *testing.T) {
	svc, repo, _, _ := newTestPostService(t)

	repo.On("ListFeed", 1, 2, MaxPageSize).Return([]*model.Post{{ID: 3}}, 11, nil)

	posts, total, err := svc.Feed(1, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.Len(t, posts, 1)
}
