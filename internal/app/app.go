package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/api"
	"github.com/d60-Lab/birdnest/internal/api/handler"
	"github.com/d60-Lab/birdnest/internal/otp"
	"github.com/d60-Lab/birdnest/internal/repository"
	"github.com/d60-Lab/birdnest/internal/secret"
	"github.com/d60-Lab/birdnest/internal/service"
	"github.com/d60-Lab/birdnest/internal/view"
	"github.com/d60-Lab/birdnest/pkg/awsutil"
	"github.com/d60-Lab/birdnest/pkg/cache"
	"github.com/d60-Lab/birdnest/pkg/database"
	"github.com/d60-Lab/birdnest/pkg/logger"
)

// clients 按需创建并在多个组件间共享的外部连接
type clients struct {
	cfg     *config.Config
	redis   *redis.Client
	aws     *aws.Config
	closers []func() error
}

func (c *clients) redisClient(ctx context.Context) (*redis.Client, error) {
	if c.redis != nil {
		return c.redis, nil
	}
	client, err := cache.NewRedisClient(ctx, c.cfg.Redis)
	if err != nil {
		return nil, err
	}
	c.redis = client
	c.closers = append(c.closers, client.Close)
	return client, nil
}

func (c *clients) awsConfig(ctx context.Context) (aws.Config, error) {
	if c.aws != nil {
		return *c.aws, nil
	}
	awsCfg, err := awsutil.LoadConfig(ctx, c.cfg.AWS)
	if err != nil {
		return aws.Config{}, err
	}
	c.aws = &awsCfg
	return awsCfg, nil
}

func (c *clients) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Store 文章仓储及其底层连接
type Store struct {
	Posts   repository.PostRepository
	clients *clients
}

// OpenStore 按 store.backend 打开文章仓储
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	c := &clients{cfg: cfg}
	repo, err := openPostRepository(ctx, c)
	if err != nil {
		_ = c.close()
		return nil, err
	}
	return &Store{Posts: repo, clients: c}, nil
}

func openPostRepository(ctx context.Context, c *clients) (repository.PostRepository, error) {
	cfg := c.cfg
	switch cfg.Store.Backend {
	case "gorm":
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error { return database.Close(db) })
		return repository.NewGormPostRepository(db, cfg.Store.Table), nil
	case "redis":
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisPostRepository(client, cfg.Store.Table), nil
	case "badger":
		db, err := repository.OpenBadger(cfg.Store.BadgerPath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		return repository.NewBadgerPostRepository(db, cfg.Store.Table), nil
	case "dynamodb":
		awsCfg, err := c.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = awsutil.BaseEndpoint(cfg.AWS)
		})
		return repository.NewDynamoPostRepository(client, cfg.Store.Table), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// InitSchema 后端需要建表时建表，重复执行无副作用
func (s *Store) InitSchema(ctx context.Context) error {
	if si, ok := s.Posts.(repository.SchemaInitializer); ok {
		return si.InitSchema(ctx)
	}
	return nil
}

func (s *Store) Close() error { return s.clients.close() }

func newSecretLoader(ctx context.Context, c *clients) (secret.Loader, error) {
	switch c.cfg.Secrets.Backend {
	case "s3":
		awsCfg, err := c.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = awsutil.BaseEndpoint(c.cfg.AWS)
			o.UsePathStyle = c.cfg.AWS.Endpoint != ""
		})
		return secret.NewS3Loader(client), nil
	case "redis":
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return secret.NewRedisLoader(client), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", c.cfg.Secrets.Backend)
	}
}

// Options 测试或嵌入时替换默认组件
type Options struct {
	ValidatorFactory otp.ValidatorFactory
}

// App 组装完成的应用
type App struct {
	Router *gin.Engine
	Posts  service.PostService
	store  *Store
}

// New 按配置组装存储、密钥加载、OTP 校验、页面渲染和路由
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loader, err := newSecretLoader(ctx, store.clients)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	factory := opts.ValidatorFactory
	if factory == nil {
		factory = otp.NewYubicoValidator
	}
	verifier := otp.NewVerifier(loader, cfg.Secrets, factory, logger.L())

	renderer, err := view.NewRenderer(cfg.Feed.Title)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	posts := service.NewPostService(store.Posts, service.WithLogger(logger.L()))
	h := handler.NewHandler(posts, verifier, renderer, cfg, handler.WithLogger(logger.L()))

	return &App{
		Router: api.SetupRouter(cfg, h),
		Posts:  posts,
		store:  store,
	}, nil
}

// InitSchema 见 Store.InitSchema
func (a *App) InitSchema(ctx context.Context) error { return a.store.InitSchema(ctx) }

func (a *App) Close() error { return a.store.Close() }
