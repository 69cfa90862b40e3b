package secret

import (
	"context"
	"errors"
)

// ErrSecretUnavailable 对象不存在或存储不可达。上层不做降级，请求直接失败
var ErrSecretUnavailable = errors.New("secret unavailable")

// Loader 从对象存储按 bucket + key 读取原始内容
type Loader interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}
