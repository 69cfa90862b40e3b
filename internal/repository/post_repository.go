package repository

import (
	"context"
	"errors"

	"github.com/d60-Lab/birdnest/internal/model"
)

// ErrPostNotFound 文章不存在
var ErrPostNotFound = errors.New("post not found")

// PostRepository 文章仓储接口，按 id 做单键读写，不涉及多条记录的事务
type PostRepository interface {
	// List 全表扫描，返回顺序由底层存储决定
	List(ctx context.Context) ([]*model.Post, error)

	// Get 按 id 查询，不存在时返回 ErrPostNotFound
	Get(ctx context.Context, id int64) (*model.Post, error)

	// Put 整条写入，已存在则覆盖
	Put(ctx context.Context, post *model.Post) error

	// Update 设置 edit/title/content；id 不存在时什么都不做，不会新建记录
	Update(ctx context.Context, id int64, edit, title, content string) error

	// Delete 删除，不存在时不报错
	Delete(ctx context.Context, id int64) error
}

// SchemaInitializer 需要建表的后端实现此接口
type SchemaInitializer interface {
	InitSchema(ctx context.Context) error
}
