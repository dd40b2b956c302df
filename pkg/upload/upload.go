// Package upload hands encoded postcards to a publishing service and
// returns the opaque link that service assigns.
//
// Uploaders know nothing about caching or rendering. A link is whatever the
// destination understands: a VK attachment string, a URL, a file name.
package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Uploader publishes one image.
type Uploader interface {
	// Upload stores image for destination and returns its link.
	// Failures carry the UPLOAD_FAILURE code.
	Upload(ctx context.Context, image []byte, destination string) (string, error)
}

// Func adapts a function to the Uploader interface.
type Func func(ctx context.Context, image []byte, destination string) (string, error)

// Upload calls f.
func (f Func) Upload(ctx context.Context, image []byte, destination string) (string, error) {
	return f(ctx, image, destination)
}

// DirUploader writes images into a local directory under random names.
// The link is BaseURL joined with the file name, so the directory can be
// served over HTTP.
type DirUploader struct {
	dir     string
	baseURL string
}

// NewDirUploader creates the directory if needed.
func NewDirUploader(dir, baseURL string) (*DirUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpload, err, "create upload dir %s", dir)
	}
	return &DirUploader{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the target directory.
func (u *DirUploader) Dir() string { return u.dir }

// Upload writes image as <uuid>.jpg. The destination is ignored: every
// caller shares one directory.
func (u *DirUploader) Upload(ctx context.Context, image []byte, destination string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeUpload, err, "upload for %s", destination)
	}
	if len(image) == 0 {
		return "", errors.New(errors.ErrCodeUpload, "empty image for %s", destination)
	}

	name := uuid.NewString() + ".jpg"
	tmp := filepath.Join(u.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, image, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeUpload, err, "write %s", name)
	}
	if err := os.Rename(tmp, filepath.Join(u.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(errors.ErrCodeUpload, err, "write %s", name)
	}
	return link(u.baseURL, name), nil
}

func link(base, name string) string {
	if base == "" {
		return name
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}

var (
	_ Uploader = Func(nil)
	_ Uploader = (*DirUploader)(nil)
)
