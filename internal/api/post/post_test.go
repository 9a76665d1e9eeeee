package post

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lake-backend/internal/api/apitest"
	"lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/service"
)

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newPostRouter(t *testing.T, userID int) (*apitest.PostService, *apitest.Repos, http.Handler) {
	svc := new(apitest.PostService)
	s, repos := apitest.NewSerializer()
	handler := NewPostHandler(svc, s)

	r := apitest.NewRouter(t)
	r.Use(apitest.AsUser(userID))
	r.POST("/posts", handler.CreatePost)
	r.GET("/posts", handler.ListPosts)
	r.GET("/posts/:id", handler.GetPost)
	r.PUT("/posts/:id", handler.UpdatePost)
	r.DELETE("/posts/:id", handler.DeletePost)
	r.POST("/posts/:id/likes", handler.LikePost)
	r.DELETE("/posts/:id/likes", handler.UnlikePost)
	r.GET("/users/:id/posts", handler.ListUserPosts)
	r.GET("/feed", handler.Feed)
	return svc, repos, r
}

func samplePost(repos *apitest.Repos) *model.Post {
	author := &model.User{ID: 2, Username: "bob"}
	post := &model.Post{ID: 5, AuthorID: 2, Caption: "sunset", Image: "http://cdn/posts/a.jpg", CreatedAt: created}
	repos.ExpectProfile(author)
	repos.ExpectPost(post)
	return post
}

func TestCreatePost(t *testing.T) {
	svc, repos, r := newPostRouter(t, 2)
	post := samplePost(repos)
	svc.On("CreatePost", 2, "sunset", mock.AnythingOfType("*multipart.FileHeader"), (*multipart.FileHeader)(nil)).
		Return(post, nil).Once()

	w := apitest.DoMultipart(t, r, http.MethodPost, "/posts", map[string]string{"caption": "sunset"},
		apitest.File{Field: "image", Filename: "a.jpg", Content: []byte("jpeg")})
	assert.Equal(t, http.StatusCreated, w.Code)

	var view model.PostView
	apitest.DecodeData(t, w, &view)
	assert.Equal(t, "bob", view.Author.Username)
	assert.Nil(t, view.Video)
	assert.False(t, view.UserLiked)
	svc.AssertExpectations(t)
}

func TestCreatePostWithoutImage(t *testing.T) {
	svc, _, r := newPostRouter(t, 2)
	svc.On("CreatePost", 2, "", (*multipart.FileHeader)(nil), (*multipart.FileHeader)(nil)).
		Return(nil, errors.NewFieldError("image", "No file was submitted.")).Once()

	w := apitest.DoMultipart(t, r, http.MethodPost, "/posts", map[string]string{"caption": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, apitest.Decode(t, w).Errors, "image")

	w = apitest.Do(t, r, http.MethodPost, "/posts", map[string]string{"caption": "json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePostRejectsOversizedBody(t *testing.T) {
	svc := new(apitest.PostService)
	s, _ := apitest.NewSerializer()
	handler := NewPostHandler(svc, s)
	handler.uploadLimit = 1 << 10

	r := apitest.NewRouter(t)
	r.Use(apitest.AsUser(2))
	r.POST("/posts", handler.CreatePost)
	r.PUT("/posts/:id", handler.UpdatePost)

	big := apitest.File{Field: "image", Filename: "a.jpg", Content: bytes.Repeat([]byte("x"), 4<<10)}
	w := apitest.DoMultipart(t, r, http.MethodPost, "/posts", map[string]string{"caption": "sunset"}, big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "上传内容过大", apitest.Decode(t, w).Message)

	w = apitest.DoMultipart(t, r, http.MethodPut, "/posts/5", nil, big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPostAnonymous(t *testing.T) {
	svc, repos, r := newPostRouter(t, 0)
	post := samplePost(repos)
	svc.On("GetPost", 5).Return(post, nil)
	svc.On("GetPost", 6).Return(nil, errors.New(errors.ErrPostNotFound, "帖子不存在"))

	w := apitest.Do(t, r, http.MethodGet, "/posts/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	repos.Posts.AssertNotCalled(t, "IsLikedBy", mock.Anything, mock.Anything)

	w = apitest.Do(t, r, http.MethodGet, "/posts/6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePostOnlyPresentFields(t *testing.T) {
	svc, repos, r := newPostRouter(t, 2)
	post := samplePost(repos)
	svc.On("UpdatePost", 2, 5, mock.MatchedBy(func(u *service.PostUpdate) bool {
		return u.Caption != nil && *u.Caption == "new caption" && u.Image == nil && u.Video == nil
	})).Return(post, nil).Once()

	w := apitest.DoMultipart(t, r, http.MethodPut, "/posts/5", map[string]string{"caption": "new caption"})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDeletePostForbidden(t *testing.T) {
	svc, _, r := newPostRouter(t, 3)
	svc.On("DeletePost", 3, 5).Return(errors.New(errors.ErrForbidden, "只能删除自己的帖子")).Once()

	w := apitest.Do(t, r, http.MethodDelete, "/posts/5", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLikeAndUnlike(t *testing.T) {
	svc, repos, r := newPostRouter(t, 1)
	post := samplePost(repos)
	svc.On("GetPost", 5).Return(post, nil)
	svc.On("LikePost", 1, 5).Return(nil).Once()
	svc.On("UnlikePost", 1, 5).Return(nil).Once()

	w := apitest.Do(t, r, http.MethodPost, "/posts/5/likes", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.On("LikePost", 1, 5).Return(errors.New(errors.ErrAlreadyLiked, "已经点赞过该帖子")).Once()
	w = apitest.Do(t, r, http.MethodPost, "/posts/5/likes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = apitest.Do(t, r, http.MethodDelete, "/posts/5/likes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFeedPagination(t *testing.T) {
	svc, repos, r := newPostRouter(t, 1)
	post := samplePost(repos)
	svc.On("Feed", 1, 1, 10).Return([]*model.Post{post}, 1, nil).Once()
	svc.On("ListUserPosts", 2, 1, 10).Return([]*model.Post{}, 0, nil).Once()

	w := apitest.Do(t, r, http.MethodGet, "/feed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Results    []model.PostView `json:"results"`
		Pagination model.Pagination `json:"pagination"`
	}
	apitest.DecodeData(t, w, &data)
	assert.Len(t, data.Results, 1)
	assert.Equal(t, 1, data.Pagination.Total)

	w = apitest.Do(t, r, http.MethodGet, "/users/2/posts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
