package user

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lake-backend/config"
	"lake-backend/internal/api/apitest"
	"lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"
)

func newAuthRouter(t *testing.T, userID int) (*apitest.UserService, *apitest.Repos, http.Handler) {
	svc := new(apitest.UserService)
	s, repos := apitest.NewSerializer()
	handler := NewAuthHandler(svc, s)

	r := apitest.NewRouter(t)
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	authed := r.Group("/", apitest.AsUser(userID))
	authed.POST("/logout", handler.Logout)
	return svc, repos, r
}

func TestRegister(t *testing.T) {
	svc, repos, r := newAuthRouter(t, 0)
	alice := &model.User{ID: 1, Username: "alice", PasswordHash: "$2a$hash"}
	repos.ExpectProfile(alice)

	svc.On("Register", mock.MatchedBy(func(in *model.RegisterInput) bool {
		return in.Username == "alice" && in.Password2 == "s3cretpass"
	})).Return(alice, nil).Once()

	w := apitest.Do(t, r, http.MethodPost, "/register", body{
		"username": "alice", "email": "alice@example.com",
		"password": "s3cretpass", "password2": "s3cretpass",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$hash")

	var profile model.UserProfile
	apitest.DecodeData(t, w, &profile)
	assert.Equal(t, "alice", profile.Username)
	svc.AssertExpectations(t)
}

func TestRegisterFieldErrors(t *testing.T) {
	svc, _, r := newAuthRouter(t, 0)

	// 缺少必填字段时按字段返回错误
	w := apitest.Do(t, r, http.MethodPost, "/register", body{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := apitest.Decode(t, w)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password2")
	svc.AssertNotCalled(t, "Register", mock.Anything)

	// 两次密码不一致的错误挂在 password 字段下
	mismatch := errors.NewFieldError("password", "Password fields didn't match.")
	svc.On("Register", mock.Anything).Return(nil, mismatch).Once()
	w = apitest.Do(t, r, http.MethodPost, "/register", body{
		"username": "alice", "email": "alice@example.com",
		"password": "s3cretpass", "password2": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env = apitest.Decode(t, w)
	assert.Equal(t, []string{"Password fields didn't match."}, env.Errors["password"])
}

func TestLogin(t *testing.T) {
	old := config.AppConfig
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig = old })

	svc, repos, r := newAuthRouter(t, 0)
	alice := &model.User{ID: 1, Username: "alice"}
	repos.ExpectProfile(alice)
	svc.On("Login", "alice", "s3cretpass").Return(alice, nil).Once()

	w := apitest.Do(t, r, http.MethodPost, "/login", body{"username": "alice", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string            `json:"token"`
		User  model.UserProfile `json:"user"`
	}
	apitest.DecodeData(t, w, &data)
	userID, err := util.ValidateToken(data.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, userID)
	assert.Equal(t, "alice", data.User.Username)

	invalid := errors.NewNonFieldError(errors.ErrInvalidCredentials, "Invalid credentials.")
	svc.On("Login", "alice", "wrong").Return(nil, invalid).Once()
	w = apitest.Do(t, r, http.MethodPost, "/login", body{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := apitest.Decode(t, w)
	assert.Equal(t, []string{"Invalid credentials."}, env.Errors["non_field_errors"])
}

func TestLogout(t *testing.T) {
	svc, _, r := newAuthRouter(t, 1)
	svc.On("Logout", "test-token").Return(nil).Once()

	w := apitest.Do(t, r, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

type body = map[string]interface{}
