package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
)

var (
	// errors
	ErrNoFile      = errors.New("no file uploaded")
	ErrInvalidType = errors.New("invalid file type, only JPG, PNG and PDF files are allowed")

	// AllowedTypes maps the accepted content types to their default extension.
	AllowedTypes = map[string]string{
		"image/jpeg":      "jpg",
		"image/png":       "png",
		"image/jpg":       "jpg",
		"application/pdf": "pdf",
	}
	SupportedTypes = []string{"image/jpeg", "image/png", "image/jpg", "application/pdf"}

	NowFunc = time.Now // mockable
)

type (
	// Storage persists uploaded files and returns their public URL.
	Storage interface {
		Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (url string, err error)
	}

	File struct {
		Name        string // original file name
		ContentType string
		Size        int64
		Content     io.Reader
	}

	Result struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
		Message  string `json:"message"`
		Degraded bool   `json:"degraded,omitempty"`
	}

	Service struct {
		storage  Storage
		fallback Storage // optional
		maxSize  int64
		logger   core.Logger
	}
)

// NewService returns an upload service saving to storage. When storage fails and a
// fallback is given, the file is saved there and the result is flagged as degraded.
func NewService(storage, fallback Storage, maxSize int64, logger core.Logger) *Service {
	return &Service{storage: storage, fallback: fallback, maxSize: maxSize, logger: logger}
}

func (svc *Service) MaxSize() int64 { return svc.maxSize }

// MaxSizeLabel formats the size limit, eg. "5MB".
func (svc *Service) MaxSizeLabel() string {
	return strconv.FormatInt(svc.maxSize/(1024*1024), 10) + "MB"
}

func (svc *Service) tooLarge() error {
	msg := "file too large, maximum size is " + svc.MaxSizeLabel()
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
}

// Validate checks the type & size of f.
func (svc *Service) Validate(f File) error {
	if f.Content == nil {
		return core.NewValidationError(ErrNoFile, core.FieldError{Field: "file", Error: ErrNoFile.Error()})
	}
	if _, ok := AllowedTypes[f.ContentType]; !ok {
		return core.NewValidationError(ErrInvalidType, core.FieldError{Field: "file", Error: ErrInvalidType.Error()})
	}
	if f.Size > svc.maxSize {
		return svc.tooLarge()
	}
	return nil
}

// GenerateFilename returns "{unixMillis}-{random}.{ext}", ext being taken from the original name.
func GenerateFilename(originalName, contentType string) string {
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	if ext == "" {
		ext = AllowedTypes[contentType]
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%d-%s.%s", NowFunc().UnixNano()/int64(time.Millisecond), random, strings.ToLower(ext))
}

// Upload stores f. A storage failure is logged and the file goes to the fallback
// storage (degraded success); without fallback the failure is returned.
func (svc *Service) Upload(ctx context.Context, f File) (Result, error) {
	if err := svc.Validate(f); err != nil {
		return Result{}, err
	}

	// never read more than the limit, whatever the declared size
	data, err := io.ReadAll(io.LimitReader(f.Content, svc.maxSize+1))
	if err != nil {
		return Result{}, errors.Wrap(err, "reading upload")
	}
	if int64(len(data)) > svc.maxSize {
		return Result{}, svc.tooLarge()
	}

	name := GenerateFilename(f.Name, f.ContentType)
	res := Result{
		Filename: name,
		Size:     f.Size,
		Type:     f.ContentType,
		Message:  "File uploaded successfully",
	}

	url, err := svc.storage.Save(ctx, name, f.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if svc.fallback == nil {
			return Result{}, errors.Wrap(err, "storage save")
		}
		svc.logger.Error("storing upload", errors.Wrap(err, "storage save"), map[string]interface{}{"filename": name})

		url, err = svc.fallback.Save(ctx, name, f.ContentType, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return Result{}, errors.Wrap(err, "fallback storage save")
		}
		res.Message = "File uploaded to fallback storage"
		res.Degraded = true
	}
	res.URL = url
	return res, nil
}
