package filesearch

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	pkghttp "github.com/aminanvary/Gemini-File-Search/pkg/http"
	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	apiVersion = "/v1beta"
	// uploadPath is the media-upload endpoint for raw files.
	uploadPath = "/upload/v1beta/files"
	// apiKeyHeader authenticates every upstream call.
	apiKeyHeader = "x-goog-api-key"
)

type Connector struct {
	config config.FileSearchConnectorConfig
	// connector serves bounded JSON calls; stream carries no request timeout
	// so long chat streams are only bounded by the request context.
	connector *pkghttp.Connector
	stream    *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.FileSearchConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: newBaseConnector(cfg, logger, cfg.RequestTimeout),
		stream:    newBaseConnector(cfg, logger, 0),
		config:    cfg,
		logger:    logger,
	}
}

func newBaseConnector(cfg config.FileSearchConnectorConfig, logger *zap.Logger, requestTimeout time.Duration) *pkghttp.Connector {
	connCfg := &pkghttp.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkghttp.NewConnector(
		connCfg,
		pkghttp.WithRequestTimeout(requestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithClientKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithHeaderAuth(apiKeyHeader, cfg.APIKey),
	)
}

// getJSON performs a GET with retries on transport-level failures. Only
// idempotent reads go through here; HTTP errors from the upstream are
// returned as-is without retrying.
func (c *Connector) getJSON(ctx context.Context, endpoint string, out any) error {
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var netErr *pkghttp.NetworkError
			return errors.As(err, &netErr)
		}),
	)
	return retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, out)
	}, opts...)
}

type listStoresResponse struct {
	FileSearchStores []entity.Store `json:"fileSearchStores"`
	NextPageToken    string         `json:"nextPageToken,omitempty"`
}

// ListStores lists all file-search stores, following upstream pagination.
func (c *Connector) ListStores(ctx context.Context) ([]entity.Store, error) {
	ctxzap.Debug(ctx, "listing file search stores")

	var stores []entity.Store
	pageToken := ""
	for {
		endpoint := fmt.Sprintf("%s/fileSearchStores?pageSize=%d", apiVersion, c.config.PageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listStoresResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}

		stores = append(stores, resp.FileSearchStores...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	ctxzap.Debug(ctx, "stores listed", zap.Int("count", len(stores)))
	return stores, nil
}

// CreateStore creates a new file-search store with the given display name.
func (c *Connector) CreateStore(ctx context.Context, displayName string) (*entity.Store, error) {
	ctxzap.Info(ctx, "creating file search store", zap.String("display_name", displayName))

	var store entity.Store
	req := entity.CreateStoreRequest{DisplayName: displayName}
	endpoint := apiVersion + "/fileSearchStores"
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	ctxzap.Info(ctx, "store created", zap.String("name", store.Name))
	return &store, nil
}

// GetStore fetches one store by its full resource name.
func (c *Connector) GetStore(ctx context.Context, name string) (*entity.Store, error) {
	var store entity.Store
	if err := c.getJSON(ctx, apiVersion+"/"+name, &store); err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &store, nil
}

// DeleteStore force-deletes a store and everything imported into it.
func (c *Connector) DeleteStore(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "deleting file search store", zap.String("name", name))

	endpoint := apiVersion + "/" + name + "?force=true"
	if err := c.connector.DoRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

type listDocumentsResponse struct {
	Documents     []entity.Document `json:"documents"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

// ListDocuments lists the documents imported into a store.
func (c *Connector) ListDocuments(ctx context.Context, storeName string) ([]entity.Document, error) {
	ctxzap.Debug(ctx, "listing documents", zap.String("store", storeName))

	var documents []entity.Document
	pageToken := ""
	for {
		endpoint := fmt.Sprintf("%s/%s/documents?pageSize=%d", apiVersion, storeName, c.config.PageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listDocumentsResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}

		documents = append(documents, resp.Documents...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return documents, nil
}

// DeleteDocument force-deletes a document by its full resource name.
func (c *Connector) DeleteDocument(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "deleting document", zap.String("name", name))

	endpoint := apiVersion + "/" + name + "?force=true"
	if err := c.connector.DoRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ImportFile starts importing an uploaded file into a store. The returned
// operation must be polled via GetOperation until Done.
func (c *Connector) ImportFile(ctx context.Context, storeName, fileName string) (*entity.Operation, error) {
	ctxzap.Info(ctx, "importing file into store",
		zap.String("store", storeName),
		zap.String("file", fileName),
	)

	var op entity.Operation
	req := entity.ImportFileRequest{FileName: fileName}
	endpoint := fmt.Sprintf("%s/%s:importFile", apiVersion, storeName)
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &op); err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}

	return &op, nil
}

// GetOperation fetches the current state of a long-running operation.
func (c *Connector) GetOperation(ctx context.Context, name string) (*entity.Operation, error) {
	var op entity.Operation
	if err := c.getJSON(ctx, apiVersion+"/"+name, &op); err != nil {
		return nil, fmt.Errorf("get operation: %w", err)
	}
	return &op, nil
}

type listFilesResponse struct {
	Files         []entity.File `json:"files"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

// ListFiles lists all uploaded files, following upstream pagination.
func (c *Connector) ListFiles(ctx context.Context) ([]entity.File, error) {
	ctxzap.Debug(ctx, "listing files")

	var files []entity.File
	pageToken := ""
	for {
		endpoint := fmt.Sprintf("%s/files?pageSize=%d", apiVersion, c.config.PageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listFilesResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		files = append(files, resp.Files...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return files, nil
}

// GetFile fetches one uploaded file by its full resource name.
func (c *Connector) GetFile(ctx context.Context, name string) (*entity.File, error) {
	var file entity.File
	if err := c.getJSON(ctx, apiVersion+"/"+name, &file); err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &file, nil
}

// DeleteFile deletes an uploaded file.
func (c *Connector) DeleteFile(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "deleting file", zap.String("name", name))

	if err := c.connector.DoRequest(ctx, http.MethodDelete, apiVersion+"/"+name, nil, nil); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

type uploadFileResponse struct {
	File entity.File `json:"file"`
}

// UploadFile uploads raw file bytes using the multipart media-upload
// endpoint: a JSON metadata part followed by the media part.
func (c *Connector) UploadFile(ctx context.Context, content []byte, mimeType, displayName string) (*entity.File, error) {
	ctxzap.Info(ctx, "uploading file",
		zap.String("display_name", displayName),
		zap.String("mime_type", mimeType),
		zap.Int("size", len(content)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		metaHeader := textproto.MIMEHeader{}
		metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
		metaPart, err := writer.CreatePart(metaHeader)
		if err != nil {
			return fmt.Errorf("create metadata part: %w", err)
		}
		meta := fmt.Sprintf(`{"file":{"displayName":%s}}`, strconv.Quote(displayName))
		if _, err := metaPart.Write([]byte(meta)); err != nil {
			return fmt.Errorf("write metadata part: %w", err)
		}

		mediaHeader := textproto.MIMEHeader{}
		if mimeType != "" {
			mediaHeader.Set("Content-Type", mimeType)
		}
		mediaPart, err := writer.CreatePart(mediaHeader)
		if err != nil {
			return fmt.Errorf("create media part: %w", err)
		}
		if _, err := mediaPart.Write(content); err != nil {
			return fmt.Errorf("write media part: %w", err)
		}
		return nil
	}

	endpoint := uploadPath + "?uploadType=multipart"
	opts := []pkghttp.RequestOpt{}
	if c.config.UploadURL != "" {
		opts = append(opts, pkghttp.WithURL(c.config.UploadURL+endpoint))
	}

	var resp uploadFileResponse
	if err := c.connector.DoMultipartRequest(ctx, http.MethodPost, endpoint, prepareBody, &resp, opts...); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	ctxzap.Info(ctx, "file uploaded", zap.String("name", resp.File.Name))
	return &resp.File, nil
}
