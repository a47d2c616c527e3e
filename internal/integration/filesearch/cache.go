package filesearch

import (
	"context"
	"time"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

const (
	storesCacheKey = "stores"
	filesCacheKey  = "files"

	documentsKeyPrefix = "documents:"
)

// ListCache wraps an API and memoizes the list endpoints, which the dashboard
// polls far more often than their contents change. Mutations invalidate the
// affected lists so reads after a write stay fresh.
type ListCache struct {
	API
	cache *gocache.Cache
}

func NewListCache(api API, ttl time.Duration) *ListCache {
	return &ListCache{
		API:   api,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *ListCache) ListStores(ctx context.Context) ([]entity.Store, error) {
	if cached, ok := c.cache.Get(storesCacheKey); ok {
		return cached.([]entity.Store), nil
	}
	stores, err := c.API.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(storesCacheKey, stores)
	return stores, nil
}

func (c *ListCache) CreateStore(ctx context.Context, displayName string) (*entity.Store, error) {
	store, err := c.API.CreateStore(ctx, displayName)
	if err != nil {
		return nil, err
	}
	c.cache.Delete(storesCacheKey)
	return store, nil
}

func (c *ListCache) DeleteStore(ctx context.Context, name string) error {
	if err := c.API.DeleteStore(ctx, name); err != nil {
		return err
	}
	c.cache.Delete(storesCacheKey)
	c.cache.Delete(documentsKeyPrefix + name)
	return nil
}

func (c *ListCache) ListDocuments(ctx context.Context, storeName string) ([]entity.Document, error) {
	key := documentsKeyPrefix + storeName
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]entity.Document), nil
	}
	documents, err := c.API.ListDocuments(ctx, storeName)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, documents)
	return documents, nil
}

func (c *ListCache) DeleteDocument(ctx context.Context, name string) error {
	if err := c.API.DeleteDocument(ctx, name); err != nil {
		return err
	}
	// Document names embed the store name, so a targeted delete would work,
	// but flushing every documents list keeps the key scheme simple.
	c.flushDocuments()
	return nil
}

func (c *ListCache) ImportFile(ctx context.Context, storeName, fileName string) (*entity.Operation, error) {
	op, err := c.API.ImportFile(ctx, storeName, fileName)
	if err != nil {
		return nil, err
	}
	c.cache.Delete(documentsKeyPrefix + storeName)
	return op, nil
}

func (c *ListCache) ListFiles(ctx context.Context) ([]entity.File, error) {
	if cached, ok := c.cache.Get(filesCacheKey); ok {
		return cached.([]entity.File), nil
	}
	files, err := c.API.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(filesCacheKey, files)
	return files, nil
}

func (c *ListCache) UploadFile(ctx context.Context, content []byte, mimeType, displayName string) (*entity.File, error) {
	file, err := c.API.UploadFile(ctx, content, mimeType, displayName)
	if err != nil {
		return nil, err
	}
	c.cache.Delete(filesCacheKey)
	return file, nil
}

func (c *ListCache) DeleteFile(ctx context.Context, name string) error {
	if err := c.API.DeleteFile(ctx, name); err != nil {
		return err
	}
	c.cache.Delete(filesCacheKey)
	return nil
}

func (c *ListCache) flushDocuments() {
	for key := range c.cache.Items() {
		if len(key) > len(documentsKeyPrefix) && key[:len(documentsKeyPrefix)] == documentsKeyPrefix {
			c.cache.Delete(key)
		}
	}
}

var _ API = (*ListCache)(nil)
