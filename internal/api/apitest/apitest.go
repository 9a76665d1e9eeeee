package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"lake-backend/internal/middleware"
	"lake-backend/internal/mocks"
	"lake-backend/internal/model"
	"lake-backend/internal/serializer"
	"lake-backend/internal/util"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var setupOnce sync.Once

// NewRouter 返回测试模式下的路由，并注册与线上一致的验证规则
func NewRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			util.RegisterValidators(v)
		}
	})
	return gin.New()
}

// AsUser 模拟认证中间件，userID 为 0 时按匿名请求处理
func AsUser(userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set(middleware.ContextUserID, userID)
			c.Set(middleware.ContextToken, "test-token")
		}
		c.Next()
	}
}

// Repos 序列化器依赖的模拟仓库
type Repos struct {
	Users    *mocks.UserRepository
	Posts    *mocks.PostRepository
	Comments *mocks.CommentRepository
	Follows  *mocks.FollowRepository
}

func NewSerializer() (*serializer.Serializer, *Repos) {
	r := &Repos{
		Users:    new(mocks.UserRepository),
		Posts:    new(mocks.PostRepository),
		Comments: new(mocks.CommentRepository),
		Follows:  new(mocks.FollowRepository),
	}
	return serializer.New(r.Users, r.Posts, r.Comments, r.Follows), r
}

// ExpectProfile 让序列化器可以渲染该用户，计数均为 0 且未关注
func (r *Repos) ExpectProfile(user *model.User) {
	r.Users.On("FindByID", user.ID).Return(user, nil).Maybe()
	r.Follows.On("CountFollowers", user.ID).Return(0, nil).Maybe()
	r.Follows.On("CountFollowing", user.ID).Return(0, nil).Maybe()
	r.Follows.On("Exists", mock.Anything, user.ID).Return(false, nil).Maybe()
}

// ExpectPost 让序列化器可以渲染没有点赞和评论的帖子
func (r *Repos) ExpectPost(post *model.Post) {
	r.Posts.On("FindByID", post.ID).Return(post, nil).Maybe()
	r.Posts.On("CountLikes", post.ID).Return(0, nil).Maybe()
	r.Posts.On("CountComments", post.ID).Return(0, nil).Maybe()
	r.Posts.On("IsLikedBy", post.ID, mock.Anything).Return(false, nil).Maybe()
	r.Comments.On("ListByPost", post.ID, 1, mock.Anything).Return([]*model.Comment{}, 0, nil).Maybe()
}

// ExpectComment 让序列化器可以渲染没有点赞的评论
func (r *Repos) ExpectComment(comment *model.Comment) {
	r.Comments.On("CountLikes", comment.ID).Return(0, nil).Maybe()
	r.Comments.On("IsLikedBy", comment.ID, mock.Anything).Return(false, nil).Maybe()
}

// Do 发送请求，body 非 nil 时按 JSON 编码
func Do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// File 多部分表单中的文件字段
type File struct {
	Field    string
	Filename string
	Content  []byte
}

// DoMultipart 以 multipart/form-data 发送请求
func DoMultipart(t *testing.T, r http.Handler, method, path string, fields map[string]string, files ...File) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Envelope 解析统一响应结构
type Envelope struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func Decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := Decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out))
}
