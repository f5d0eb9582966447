package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core"
)

type memStorage struct {
	files map[string][]byte
	err   error
}

func (s *memStorage) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.files[name] = data
	return "https://cdn.test/" + name, nil
}

func TestGenerateFilename(t *testing.T) {
	NowFunc = func() time.Time { return time.Unix(1700000000, 0) }
	defer func() { NowFunc = time.Now }()

	re := regexp.MustCompile(`^1700000000000-[0-9a-f]{6}\.(\w+)$`)
	tests := []struct {
		name, contentType, wantExt string
	}{
		{name: "scan.PDF", contentType: "application/pdf", wantExt: "pdf"},
		{name: "photo.jpeg", contentType: "image/jpeg", wantExt: "jpeg"},
		{name: "noext", contentType: "image/png", wantExt: "png"},
	}
	for _, tt := range tests {
		m := re.FindStringSubmatch(GenerateFilename(tt.name, tt.contentType))
		if assert.Len(t, m, 2, tt.name) {
			assert.Equal(t, tt.wantExt, m[1])
		}
	}
	assert.NotEqual(t, GenerateFilename("a.pdf", ""), GenerateFilename("a.pdf", ""))
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	store := &memStorage{files: make(map[string][]byte)}
	svc := NewService(store, nil, 10, core.NopLogger{})
	assert.Equal(t, "0MB", svc.MaxSizeLabel())

	tests := []struct {
		name    string
		file    File
		wantErr error
	}{
		{name: "no content", file: File{Name: "a.pdf", ContentType: "application/pdf"}, wantErr: ErrNoFile},
		{name: "bad type", file: File{Name: "a.gif", ContentType: "image/gif", Content: bytes.NewReader(nil)}, wantErr: ErrInvalidType},
		{name: "too large", file: File{Name: "a.pdf", ContentType: "application/pdf", Size: 11, Content: bytes.NewReader(make([]byte, 11))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.file)
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, vErr.Err)
			}
			assert.Equal(t, "file", vErr.Fields[0].Field)
		})
	}

	t.Run("stored", func(t *testing.T) {
		res, err := svc.Upload(ctx, File{Name: "a.png", ContentType: "image/png", Size: 3, Content: bytes.NewReader([]byte("png"))})
		require.NoError(t, err)
		assert.False(t, res.Degraded)
		assert.Equal(t, "https://cdn.test/"+res.Filename, res.URL)
		assert.Equal(t, []byte("png"), store.files[res.Filename])
		assert.Equal(t, "File uploaded successfully", res.Message)
	})

	t.Run("storage failure", func(t *testing.T) {
		store.err = errors.New("bucket unavailable")
		defer func() { store.err = nil }()
		_, err := svc.Upload(ctx, File{Name: "a.png", ContentType: "image/png", Size: 3, Content: bytes.NewReader([]byte("png"))})
		assert.EqualError(t, err, "storage save: bucket unavailable")
	})

	t.Run("content larger than declared", func(t *testing.T) {
		_, err := svc.Upload(ctx, File{Name: "a.pdf", ContentType: "application/pdf", Size: 1, Content: bytes.NewReader(make([]byte, 11))})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "file", vErr.Fields[0].Field)
	})
}

func TestService_Upload_fallback(t *testing.T) {
	ctx := context.Background()
	store := &memStorage{files: make(map[string][]byte), err: errors.New("bucket unavailable")}
	fallback := &memStorage{files: make(map[string][]byte)}
	svc := NewService(store, fallback, 10, core.NopLogger{})

	res, err := svc.Upload(ctx, File{Name: "a.png", ContentType: "image/png", Size: 3, Content: bytes.NewReader([]byte("png"))})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "File uploaded to fallback storage", res.Message)
	assert.Equal(t, "https://cdn.test/"+res.Filename, res.URL)
	assert.Empty(t, store.files)
	assert.Equal(t, []byte("png"), fallback.files[res.Filename])

	fallback.err = errors.New("disk full")
	_, err = svc.Upload(ctx, File{Name: "a.png", ContentType: "image/png", Size: 3, Content: bytes.NewReader([]byte("png"))})
	assert.EqualError(t, err, "fallback storage save: disk full")
}
