package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/upload"
)

// Disk stores uploads under a local directory served at publicPath.
type Disk struct {
	dir        string
	publicPath string
}

var _ upload.Storage = (*Disk)(nil)

func NewDisk(dir, publicPath string) *Disk {
	return &Disk{dir: dir, publicPath: publicPath}
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}
	fp := filepath.Join(d.dir, filepath.Base(name))
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing file")
	}
	return path.Join(d.publicPath, filepath.Base(name)), nil
}
