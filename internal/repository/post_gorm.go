package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/birdnest/internal/model"
)

type gormPostRepository struct {
	db    *gorm.DB
	table string
}

// NewGormPostRepository 基于 gorm 的文章仓储（postgres / sqlite）
func NewGormPostRepository(db *gorm.DB, table string) PostRepository {
	if table == "" {
		table = model.Post{}.TableName()
	}
	return &gormPostRepository{db: db, table: table}
}

func (r *gormPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).Table(r.table).Find(&res).Error
	return res, err
}

func (r *gormPostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *gormPostRepository) Put(ctx context.Context, post *model.Post) error {
	// 与 KV 存储的 put 语义一致：同 id 直接覆盖
	return r.db.WithContext(ctx).Table(r.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(post).Error
}

func (r *gormPostRepository) Update(ctx context.Context, id int64, edit, title, content string) error {
	return r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", id).
		Updates(map[string]any{"edit": edit, "title": title, "content": content}).Error
}

func (r *gormPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Delete(&model.Post{}).Error
}

// InitSchema 初始化文章表结构
func (r *gormPostRepository) InitSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Table(r.table).AutoMigrate(&model.Post{}); err != nil {
		return fmt.Errorf("failed to migrate table %s: %w", r.table, err)
	}
	return nil
}
