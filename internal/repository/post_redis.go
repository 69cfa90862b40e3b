package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/birdnest/internal/model"
)

// 仅在 key 存在时更新，保证 Update 不会新建文章
var updateIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'edit', ARGV[1], 'title', ARGV[2], 'content', ARGV[3])
return 1
`)

// redisPostRepository 每篇文章一个 hash（<table>:<id>），另有 set <table> 记录全部 id
type redisPostRepository struct {
	client *redis.Client
	table  string
}

func NewRedisPostRepository(client *redis.Client, table string) PostRepository {
	if table == "" {
		table = model.Post{}.TableName()
	}
	return &redisPostRepository{client: client, table: table}
}

func (r *redisPostRepository) key(id int64) string {
	return fmt.Sprintf("%s:%d", r.table, id)
}

func (r *redisPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	ids, err := r.client.SMembers(ctx, r.table).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.table+":"+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	res := make([]*model.Post, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// 索引残留，hash 已被删除
			continue
		}
		post, err := decodePostHash(fields)
		if err != nil {
			return nil, err
		}
		res = append(res, post)
	}
	return res, nil
}

func (r *redisPostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrPostNotFound
	}
	return decodePostHash(fields)
}

func (r *redisPostRepository) Put(ctx context.Context, post *model.Post) error {
	key := r.key(post.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodePostHash(post))
		pipe.SAdd(ctx, r.table, strconv.FormatInt(post.ID, 10))
		return nil
	})
	return err
}

func (r *redisPostRepository) Update(ctx context.Context, id int64, edit, title, content string) error {
	err := updateIfExists.Run(ctx, r.client, []string{r.key(id)}, edit, title, content).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *redisPostRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(id))
		pipe.SRem(ctx, r.table, strconv.FormatInt(id, 10))
		return nil
	})
	return err
}

func encodePostHash(p *model.Post) map[string]any {
	fields := map[string]any{
		"id":      p.ID,
		"date":    p.Date,
		"title":   p.Title,
		"content": p.Content,
	}
	if p.Edit != "" {
		fields["edit"] = p.Edit
	}
	return fields
}

func decodePostHash(fields map[string]string) (*model.Post, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q in redis: %w", fields["id"], err)
	}
	return &model.Post{
		ID:      id,
		Date:    fields["date"],
		Edit:    fields["edit"],
		Title:   fields["title"],
		Content: fields["content"],
	}, nil
}
