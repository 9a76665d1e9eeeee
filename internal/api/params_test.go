package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query          string
		page, pageSize int
	}{
		{"", 1, 10},
		{"?page=3&page_size=20", 3, 20},
		{"?page=-1&page_size=0", 1, 10},
		{"?page=abc&page_size=1000", 1, 100},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/posts"+tc.query, nil)
		page, size := Page(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.pageSize, size, tc.query)
	}
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/posts/:id", func(c *gin.Context) {
		id, ok := IDParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())

	for _, bad := range []string{"abc", "0", "-5"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/"+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}
