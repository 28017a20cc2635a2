package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"mostralo-api/core"

	"github.com/google/uuid"
)

// Store persists uploaded blobs and returns a public URL. Only payment
// receipts flow through it; a failed upload must never block the
// settlement that carries it.
type Store interface {
	Upload(data []byte, contentType string) (string, error)
}

// Local writes blobs under a directory and maps them to a URL prefix.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUploadFailure, err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Dir is where blobs land; the HTTP layer serves it statically.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", core.ErrValidation
	}
	name := uuid.NewString() + extFor(contentType)
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUploadFailure, err)
	}
	return l.baseURL + "/" + name, nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
