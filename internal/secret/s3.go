package secret

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// S3API 只需要 GetObject
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Loader struct {
	client S3API
}

func NewS3Loader(client S3API) *S3Loader {
	return &S3Loader{client: client}
}

func (l *S3Loader) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(ErrSecretUnavailable, "get s3://%s/%s: %v", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrSecretUnavailable, "read s3://%s/%s: %v", bucket, key, err)
	}
	return body, nil
}
