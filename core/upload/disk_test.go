package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/upload"
	"github.com/womanacademy/renluyen/services/storage"
)

type brokenStorage struct{}

func (brokenStorage) Save(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", errors.New("s3: connection refused")
}

func TestService_Upload_diskFallback(t *testing.T) {
	dir := t.TempDir()
	svc := upload.NewService(brokenStorage{}, storage.NewDisk(dir, "/uploads"), 5*1024*1024, core.NopLogger{})

	content := []byte("%PDF-1.4 evidence")
	res, err := svc.Upload(context.Background(), upload.File{
		Name:        "minh-chung.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)

	stored, err := os.ReadFile(filepath.Join(dir, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}
