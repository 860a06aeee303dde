// Package archive 将审计导出上传到 S3 兼容的对象存储
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Archiver interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (key string, err error)
}

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// putObjectAPI 是 S3Archiver 用到的 s3.Client 方法
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3(ctx context.Context, opts Options) (*S3Archiver, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // MinIO 等自建服务
		}
	})

	return newS3(client, opts.Bucket, opts.Prefix), nil
}

func newS3(client putObjectAPI, bucket string, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Key 按日期分目录，并附加随机后缀避免覆盖
func (a *S3Archiver) Key(name string) string {
	d := a.now().UTC()
	return path.Join(a.prefix, fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), uuid.NewString()+"-"+name)
}

func (a *S3Archiver) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	key := a.Key(name)

	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}
