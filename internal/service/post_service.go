package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/birdnest/internal/model"
	"github.com/d60-Lab/birdnest/internal/repository"
	"github.com/d60-Lab/birdnest/pkg/logger"
)

// PostService 文章服务
type PostService interface {
	// List 全部文章，按 date 降序，同一天按 id 降序
	List(ctx context.Context) ([]*model.Post, error)
	// Latest 最新的 n 篇，n <= 0 时返回全部
	Latest(ctx context.Context, n int) ([]*model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	Create(ctx context.Context, title, content string) (*model.Post, error)
	// Update 不检查文章是否存在，id 不存在时是空操作
	Update(ctx context.Context, id int64, title, content string) error
	Delete(ctx context.Context, id int64) error
}

// Option 构造选项
type Option func(*postService)

// WithClock 替换时间源，测试用
func WithClock(now func() time.Time) Option {
	return func(s *postService) { s.now = now }
}

// WithLogger 替换日志，默认使用全局 logger
func WithLogger(log *zap.Logger) Option {
	return func(s *postService) {
		if log != nil {
			s.log = log
		}
	}
}

type postService struct {
	repo repository.PostRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewPostService(repo repository.PostRepository, opts ...Option) PostService {
	s := &postService{repo: repo, now: time.Now, log: logger.L()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("scanned posts", zap.Int("count", len(posts)), zap.Any("posts", posts))

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (s *postService) Latest(ctx context.Context, n int) ([]*model.Post, error) {
	posts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *postService) Create(ctx context.Context, title, content string) (*model.Post, error) {
	post := model.NewPost(title, content, s.now())
	if err := s.repo.Put(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, id int64, title, content string) error {
	edit := s.now().Format(model.DateLayout)
	return s.repo.Update(ctx, id, edit, strings.TrimSpace(title), content)
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
