package store

import (
	"context"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
)

type StoreConnector interface {
	ListStores(ctx context.Context) ([]entity.Store, error)
	CreateStore(ctx context.Context, displayName string) (*entity.Store, error)
	GetStore(ctx context.Context, name string) (*entity.Store, error)
	DeleteStore(ctx context.Context, name string) error
	ListDocuments(ctx context.Context, storeName string) ([]entity.Document, error)
	DeleteDocument(ctx context.Context, name string) error
	ImportFile(ctx context.Context, storeName, fileName string) (*entity.Operation, error)
	GetOperation(ctx context.Context, name string) (*entity.Operation, error)
}
