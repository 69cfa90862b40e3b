package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/birdnest/config"
	_ "github.com/d60-Lab/birdnest/docs"
	"github.com/d60-Lab/birdnest/internal/api/handler"
	"github.com/d60-Lab/birdnest/internal/api/middleware"
)

// SetupRouter 注册中间件与路由
func SetupRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		sentrygin.New(sentrygin.Options{Repanic: true}),
		middleware.Recovery(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger"})),
	)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	limit := middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r.GET("/", h.ListPosts)
	r.GET("/feed", h.Feed)
	r.GET("/health", h.Health)
	r.GET("/health/", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/new", h.NewForm)
	r.POST("/new", limit, h.CreatePost)

	r.GET("/post/:id", h.ShowPost)
	r.GET("/:id", h.ShowPost)

	for _, path := range []string{"/post/:id/edit", "/posts/:id/edit", "/:id/edit"} {
		r.GET(path, h.EditForm)
		r.POST(path, limit, h.UpdatePost)
	}
	for _, path := range []string{"/post/:id/delete", "/:id/delete"} {
		r.GET(path, h.DeleteForm)
		r.POST(path, limit, h.DeletePost)
	}

	return r
}
