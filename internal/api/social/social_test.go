package social

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lake-backend/internal/api/apitest"
	"lake-backend/internal/errors"
	"lake-backend/internal/model"
)

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFollowRouter(t *testing.T, userID int) (*apitest.FollowService, *apitest.Repos, http.Handler) {
	svc := new(apitest.FollowService)
	s, repos := apitest.NewSerializer()
	handler := NewFollowHandler(svc, s)

	r := apitest.NewRouter(t)
	r.Use(apitest.AsUser(userID))
	r.POST("/users/:id/follow", handler.Follow)
	r.DELETE("/users/:id/follow", handler.Unfollow)
	r.GET("/users/:id/follow/status", handler.Status)
	r.GET("/users/:id/followers", handler.Followers)
	r.GET("/users/:id/following", handler.Following)
	return svc, repos, r
}

func TestFollow(t *testing.T) {
	svc, repos, r := newFollowRouter(t, 1)
	repos.ExpectProfile(&model.User{ID: 1, Username: "alice"})
	repos.ExpectProfile(&model.User{ID: 2, Username: "bob"})
	follow := &model.Follow{ID: 3, FollowerID: 1, FollowingID: 2, CreatedAt: created}
	svc.On("Follow", 1, 2).Return(follow, nil).Once()

	w := apitest.Do(t, r, http.MethodPost, "/users/2/follow", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view model.FollowView
	apitest.DecodeData(t, w, &view)
	assert.Equal(t, "alice", view.Follower.Username)
	assert.Equal(t, "bob", view.Following.Username)

	svc.On("Follow", 1, 1).Return(nil, errors.NewNonFieldError(errors.ErrSelfFollow, "You cannot follow yourself.")).Once()
	w = apitest.Do(t, r, http.MethodPost, "/users/1/follow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"You cannot follow yourself."}, apitest.Decode(t, w).Errors["non_field_errors"])

	svc.On("Follow", 1, 2).Return(nil, errors.New(errors.ErrAlreadyFollowing, "已经关注该用户")).Once()
	w = apitest.Do(t, r, http.MethodPost, "/users/2/follow", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnfollowAndStatus(t *testing.T) {
	svc, _, r := newFollowRouter(t, 1)
	svc.On("Unfollow", 1, 2).Return(nil).Once()
	svc.On("Status", 1, 2).Return(true, nil).Once()

	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodDelete, "/users/2/follow", nil).Code)

	w := apitest.Do(t, r, http.MethodGet, "/users/2/follow/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data map[string]bool
	apitest.DecodeData(t, w, &data)
	assert.True(t, data["is_following"])
	svc.AssertExpectations(t)
}

func TestFollowersList(t *testing.T) {
	svc, repos, r := newFollowRouter(t, 1)
	repos.ExpectProfile(&model.User{ID: 3})
	repos.ExpectProfile(&model.User{ID: 2})
	svc.On("Followers", 2, 1, 10).Return([]*model.Follow{{ID: 1, FollowerID: 3, FollowingID: 2}}, 1, nil).Once()
	svc.On("Following", 2, 1, 10).Return([]*model.Follow{}, 0, nil).Once()

	w := apitest.Do(t, r, http.MethodGet, "/users/2/followers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Results []model.FollowView `json:"results"`
	}
	apitest.DecodeData(t, w, &data)
	require.Len(t, data.Results, 1)
	assert.Equal(t, 3, data.Results[0].Follower.ID)

	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodGet, "/users/2/following", nil).Code)
}

func newNotificationRouter(t *testing.T, userID int) (*apitest.NotificationService, *apitest.Repos, http.Handler) {
	svc := new(apitest.NotificationService)
	s, repos := apitest.NewSerializer()
	handler := NewNotificationHandler(svc, s)

	r := apitest.NewRouter(t)
	r.Use(apitest.AsUser(userID))
	r.GET("/notifications", handler.List)
	r.GET("/notifications/unread-count", handler.UnreadCount)
	r.POST("/notifications/:id/read", handler.MarkRead)
	r.POST("/notifications/read-all", handler.MarkAllRead)
	return svc, repos, r
}

func TestNotificationList(t *testing.T) {
	svc, repos, r := newNotificationRouter(t, 2)
	repos.ExpectProfile(&model.User{ID: 1, Username: "alice"})
	repos.ExpectProfile(&model.User{ID: 2, Username: "bob"})
	post := &model.Post{ID: 5, AuthorID: 2}
	repos.ExpectPost(post)
	postID := 5
	items := []*model.Notification{
		{ID: 8, RecipientID: 2, SenderID: 1, Type: model.NotificationFollow, CreatedAt: created},
		{ID: 7, RecipientID: 2, SenderID: 1, Type: model.NotificationLike, PostID: &postID, CreatedAt: created.Add(-time.Minute)},
	}
	svc.On("List", 2, 1, 10).Return(items, 2, nil).Once()

	w := apitest.Do(t, r, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Results []model.NotificationView `json:"results"`
	}
	apitest.DecodeData(t, w, &data)
	require.Len(t, data.Results, 2)
	assert.Equal(t, model.NotificationFollow, data.Results[0].NotificationType)
	assert.Nil(t, data.Results[0].Post)
	require.NotNil(t, data.Results[1].Post)
	assert.Equal(t, 5, data.Results[1].Post.ID)
	assert.Equal(t, "alice", data.Results[1].Sender.Username)
}

func TestNotificationReadState(t *testing.T) {
	svc, _, r := newNotificationRouter(t, 2)
	svc.On("UnreadCount", 2).Return(3, nil).Once()
	svc.On("MarkRead", 7, 2).Return(nil).Once()
	svc.On("MarkRead", 99, 2).Return(errors.New(errors.ErrNotificationNotFound, "通知不存在")).Once()
	svc.On("MarkAllRead", 2).Return(int64(2), nil).Once()

	w := apitest.Do(t, r, http.MethodGet, "/notifications/unread-count", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data map[string]int
	apitest.DecodeData(t, w, &data)
	assert.Equal(t, 3, data["unread_count"])

	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodPost, "/notifications/7/read", nil).Code)
	assert.Equal(t, http.StatusNotFound, apitest.Do(t, r, http.MethodPost, "/notifications/99/read", nil).Code)
	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodPost, "/notifications/read-all", nil).Code)
	svc.AssertExpectations(t)
}
