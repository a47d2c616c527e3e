package filesearch

import (
	"context"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
)

// API is the full surface of the upstream file-search service used by the
// dashboard. Connector implements it against the real service, MockConnector
// serves canned data for offline development, and ListCache decorates either
// with short-lived list caching.
type API interface {
	ListStores(ctx context.Context) ([]entity.Store, error)
	CreateStore(ctx context.Context, displayName string) (*entity.Store, error)
	GetStore(ctx context.Context, name string) (*entity.Store, error)
	DeleteStore(ctx context.Context, name string) error

	ListDocuments(ctx context.Context, storeName string) ([]entity.Document, error)
	DeleteDocument(ctx context.Context, name string) error
	ImportFile(ctx context.Context, storeName, fileName string) (*entity.Operation, error)
	GetOperation(ctx context.Context, name string) (*entity.Operation, error)

	ListFiles(ctx context.Context) ([]entity.File, error)
	GetFile(ctx context.Context, name string) (*entity.File, error)
	DeleteFile(ctx context.Context, name string) error
	UploadFile(ctx context.Context, content []byte, mimeType, displayName string) (*entity.File, error)

	StreamChat(ctx context.Context, model, storeName string, history []entity.ChatTurn, message string) (ChatStream, error)
}

// ChatStream is an incremental model response. Recv returns io.EOF once the
// upstream stream is exhausted; Close releases the underlying connection and
// must always be called.
type ChatStream interface {
	Recv() (*entity.StreamChunk, error)
	Close() error
}
