package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/birdnest/pkg/logger"
)

// Marker 成功标记，写操作成功时原样返回
const Marker = "=)"

// Success 200 + "=)"
func Success(c *gin.Context) {
	c.String(http.StatusOK, Marker)
}

// BadRequest 400，空响应体
func BadRequest(c *gin.Context) {
	c.AbortWithStatus(http.StatusBadRequest)
}

// NotFound 404，空响应体
func NotFound(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotFound)
}

// TooManyRequests 429，空响应体
func TooManyRequests(c *gin.Context) {
	c.AbortWithStatus(http.StatusTooManyRequests)
}

// InternalError 记录错误并上报 Sentry，返回 500 空响应体
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}
	c.AbortWithStatus(http.StatusInternalServerError)
}

// HTML 写出已渲染的页面；etag 非空时支持 If-None-Match
func HTML(c *gin.Context, body []byte, etag string) {
	Cached(c, "text/html; charset=utf-8", body, etag)
}

// Cached 带 ETag 的 200 响应，命中 If-None-Match 时返回 304
func Cached(c *gin.Context, contentType string, body []byte, etag string) {
	if etag != "" {
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	c.Data(http.StatusOK, contentType, body)
}
