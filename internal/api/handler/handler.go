package handler

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/otp"
	"github.com/d60-Lab/birdnest/internal/service"
	"github.com/d60-Lab/birdnest/internal/view"
	"github.com/d60-Lab/birdnest/pkg/logger"
	"github.com/d60-Lab/birdnest/pkg/response"
)

// Verifier 写操作前的 OTP 校验
type Verifier interface {
	Verify(ctx context.Context, token string) (otp.Result, error)
}

// Handler 路由处理器
type Handler struct {
	posts    service.PostService
	verifier Verifier
	view     *view.Renderer
	feed     config.FeedConfig
	baseURL  string
	log      *zap.Logger
}

// Option 构造选项
type Option func(*Handler)

// WithLogger 替换日志，默认使用全局 logger
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

func NewHandler(posts service.PostService, verifier Verifier, renderer *view.Renderer, cfg *config.Config, opts ...Option) *Handler {
	registerValidators()
	h := &Handler{
		posts:    posts,
		verifier: verifier,
		view:     renderer,
		feed:     cfg.Feed,
		baseURL:  strings.TrimRight(cfg.Server.BaseURL, "/"),
		log:      logger.L(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

const modhexAlphabet = "cbdefghijklnrtuv"

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("modhex", isModHex)
		}
	})
}

// isModHex YubiKey 输出只包含 ModHex 字符
func isModHex(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(modhexAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// postID 解析路径中的 id；非整数不做特殊处理，按服务端错误返回
func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.InternalError(c, err)
		return 0, false
	}
	return id, true
}

// rejectForm 表单不合法时记录原因并返回 400
func (h *Handler) rejectForm(c *gin.Context, err error) {
	h.log.Warn("Rejected malformed form",
		zap.String("path", c.FullPath()),
		zap.String("token", c.PostForm("otp")),
		zap.Error(err),
	)
	response.BadRequest(c)
}

// authorize 校验 OTP，失败时已写出响应
func (h *Handler) authorize(c *gin.Context, token string) bool {
	res, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		response.InternalError(c, err)
		return false
	}
	if !res.Allowed {
		response.BadRequest(c)
		return false
	}
	return true
}

func (h *Handler) render(c *gin.Context, name string, page view.Page) {
	body, etag, err := h.view.Render(name, page)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.HTML(c, body, etag)
}
