package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newContext()
	Success(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "=)", w.Body.String())
}

func TestEmptyStatuses(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*gin.Context)
		code int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"not found", NotFound, http.StatusNotFound},
		{"too many", TooManyRequests, http.StatusTooManyRequests},
		{"internal", func(c *gin.Context) { InternalError(c, errors.New("boom")) }, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			tt.fn(c)
			c.Writer.WriteHeaderNow()
			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestHTMLETag(t *testing.T) {
	c, w := newContext()
	HTML(c, []byte("<p>hi</p>"), `"abc"`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"abc"`, w.Header().Get("ETag"))
	assert.Equal(t, "<p>hi</p>", w.Body.String())

	c, w = newContext()
	c.Request.Header.Set("If-None-Match", `"abc"`)
	HTML(c, []byte("<p>hi</p>"), `"abc"`)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}
