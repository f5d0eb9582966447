package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core"
)

func TestDisk_Save(t *testing.T) {
	dir := t.TempDir()
	d := NewDisk(filepath.Join(dir, "uploads"), "/uploads")

	url, err := d.Save(context.Background(), "1700000000000-abc123.pdf", "application/pdf", strings.NewReader("%PDF"), 4)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-abc123.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "1700000000000-abc123.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3_Save(t *testing.T) {
	conf := core.UploadConfig{S3Endpoint: "http://minio:9000/", S3Bucket: "evidence", S3Region: "us-east-1"}

	t.Run("ok", func(t *testing.T) {
		p := &fakePutter{}
		url, err := NewS3(p, conf).Save(context.Background(), "a.png", "image/png", strings.NewReader("png"), 3)
		require.NoError(t, err)
		assert.Equal(t, "http://minio:9000/evidence/a.png", url)
		assert.Equal(t, "evidence", aws.ToString(p.input.Bucket))
		assert.Equal(t, "image/png", aws.ToString(p.input.ContentType))
		assert.Equal(t, "png", p.body)
	})

	t.Run("failure", func(t *testing.T) {
		p := &fakePutter{err: errors.New("unreachable")}
		_, err := NewS3(p, conf).Save(context.Background(), "a.png", "image/png", strings.NewReader("png"), 3)
		assert.Error(t, err)
	})
}
