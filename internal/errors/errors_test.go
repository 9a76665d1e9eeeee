package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldError(t *testing.T) {
	err := NewFieldError("password", "两次输入的密码不一致")
	err.AddField("password", "密码长度至少为8位")

	assert.Equal(t, ErrValidation, err.Code)
	assert.Len(t, err.Fields["password"], 2)
	assert.True(t, err.HasFields())
}

func TestAsUnwrapsChain(t *testing.T) {
	appErr := New(ErrPostNotFound, "帖子不存在")
	wrapped := fmt.Errorf("查询失败: %w", appErr)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrPostNotFound, got.Code)
	assert.True(t, Is(wrapped, ErrPostNotFound))
	assert.Equal(t, ErrInternal, CodeOf(stderrors.New("boom")))
}

func performError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(c *gin.Context) { HandleError(c, err) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandleErrorFieldErrors(t *testing.T) {
	w := performError(NewFieldError("password", "两次输入的密码不一致"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"两次输入的密码不一致"}, resp.Errors["password"])
}

func TestHandleErrorNonField(t *testing.T) {
	w := performError(NewNonFieldError(ErrInvalidCredentials, "用户名或密码错误"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"用户名或密码错误"}, resp.Errors[NonFieldErrorsKey])
	assert.Len(t, resp.Errors, 1)
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	w := performError(Wrap(ErrDatabase, "数据库错误", stderrors.New("dial tcp: refused")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")

	w = performError(stderrors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// 唯一约束冲突的驱动错误不返回给客户端
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-5' for key 'likes.uniq_likes_pair'"}
	w = performError(Wrap(ErrAlreadyLiked, "已经点赞过该帖子", dup))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotContains(t, w.Body.String(), "Duplicate entry")
	assert.NotContains(t, w.Body.String(), "uniq_likes_pair")

	// 请求格式错误仍返回原因
	w = performError(Wrap(ErrBadRequest, "无效的请求数据", stderrors.New("unexpected EOF")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected EOF")
}

func TestErrorAnalytics(t *testing.T) {
	analytics := NewErrorAnalytics()
	ctx := ErrorContext{Path: "/api/register", Method: http.MethodPost}

	analytics.Record(NewTracedError(NewFieldError("password", "mismatch"), ctx))
	analytics.Record(NewTracedError(New(ErrUnauthorized, "需要认证"), ctx))
	analytics.Record(NewTracedError(stderrors.New("boom"), ctx))

	stats := analytics.GetStats()
	assert.Equal(t, 3, stats["total_errors"])
	patterns := stats["error_patterns"].(map[string]int)
	assert.Equal(t, 1, patterns["validation:password"])
	assert.Equal(t, 1, patterns["auth"])
	assert.Equal(t, 1, patterns["system"])
	assert.Equal(t, 3, stats["errors_by_path"].(map[string]int)["POST /api/register"])
}
