package secret

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisLoader 本地开发用：对象保存在 key "<bucket>/<key>"
type RedisLoader struct {
	client *redis.Client
}

func NewRedisLoader(client *redis.Client) *RedisLoader {
	return &RedisLoader{client: client}
}

func (l *RedisLoader) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	val, err := l.client.Get(ctx, bucket+"/"+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrSecretUnavailable, "redis object %s/%s does not exist", bucket, key)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrSecretUnavailable, "get redis object %s/%s: %v", bucket, key, err)
	}
	return val, nil
}
