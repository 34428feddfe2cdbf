package port

import (
	"context"
	"io"
)

// FileStorage keeps uploaded workbooks and generated templates
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	GetFullPath(relativePath string) string
}

// UploadStorage stores uploaded files under unique names
type UploadStorage interface {
	FileStorage
	SaveUpload(ctx context.Context, originalName string, r io.Reader, maxBytes int64) (string, error)
}
