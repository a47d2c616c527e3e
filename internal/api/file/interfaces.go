package file

import (
	"context"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
)

type FileConnector interface {
	ListFiles(ctx context.Context) ([]entity.File, error)
	GetFile(ctx context.Context, name string) (*entity.File, error)
	DeleteFile(ctx context.Context, name string) error
	UploadFile(ctx context.Context, content []byte, mimeType, displayName string) (*entity.File, error)
}
