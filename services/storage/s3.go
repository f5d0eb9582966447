package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/upload"
)

// ObjectPutter is the subset of *s3.Client used by S3.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores uploads in an S3 compatible bucket.
type S3 struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

var _ upload.Storage = (*S3)(nil)

// NewS3Client builds a path-style client with static credentials.
func NewS3Client(ctx context.Context, conf core.UploadConfig) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.S3AccessKeyID, conf.S3SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.S3Endpoint)
		}
		o.UsePathStyle = true
	}), nil
}

func NewS3(client ObjectPutter, conf core.UploadConfig) *S3 {
	base := strings.TrimSuffix(conf.S3Endpoint, "/")
	if base == "" {
		base = "https://s3." + conf.S3Region + ".amazonaws.com"
	}
	return &S3{client: client, bucket: conf.S3Bucket, baseURL: base + "/" + conf.S3Bucket}
}

func (s *S3) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", errors.Wrap(err, "putting object")
	}
	return s.baseURL + "/" + name, nil
}
