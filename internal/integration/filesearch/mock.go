package filesearch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is an in-memory stand-in for the upstream file-search
// service, enabled with ENABLE_MOCKS=true for offline development.
type MockConnector struct {
	logger *zap.Logger

	mu        sync.Mutex
	seq       int
	stores    map[string]entity.Store
	documents map[string][]entity.Document
	files     map[string]entity.File
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	m := &MockConnector{
		logger:    logger,
		stores:    make(map[string]entity.Store),
		documents: make(map[string][]entity.Document),
		files:     make(map[string]entity.File),
	}

	now := time.Now().UTC().Format(time.RFC3339)
	m.stores["fileSearchStores/demo"] = entity.Store{
		Name:        "fileSearchStores/demo",
		DisplayName: "Demo Library",
		CreateTime:  now,
		UpdateTime:  now,
	}
	m.documents["fileSearchStores/demo"] = []entity.Document{
		{Name: "fileSearchStores/demo/documents/getting-started", DisplayName: "getting-started.md", CreateTime: now},
	}

	return m
}

func (m *MockConnector) ListStores(ctx context.Context) ([]entity.Store, error) {
	ctxzap.Info(ctx, "[MOCK] listing stores")

	m.mu.Lock()
	defer m.mu.Unlock()
	stores := make([]entity.Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	return stores, nil
}

func (m *MockConnector) CreateStore(ctx context.Context, displayName string) (*entity.Store, error) {
	ctxzap.Info(ctx, "[MOCK] creating store", zap.String("display_name", displayName))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	store := entity.Store{
		Name:        fmt.Sprintf("fileSearchStores/mock-store-%d", m.seq),
		DisplayName: displayName,
		CreateTime:  now,
		UpdateTime:  now,
	}
	m.stores[store.Name] = store
	return &store, nil
}

func (m *MockConnector) GetStore(ctx context.Context, name string) (*entity.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[name]
	if !ok {
		return nil, fmt.Errorf("store not found: %s", name)
	}
	return &store, nil
}

func (m *MockConnector) DeleteStore(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "[MOCK] deleting store", zap.String("name", name))

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, name)
	delete(m.documents, name)
	return nil
}

func (m *MockConnector) ListDocuments(ctx context.Context, storeName string) ([]entity.Document, error) {
	ctxzap.Info(ctx, "[MOCK] listing documents", zap.String("store", storeName))

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Document(nil), m.documents[storeName]...), nil
}

func (m *MockConnector) DeleteDocument(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "[MOCK] deleting document", zap.String("name", name))

	m.mu.Lock()
	defer m.mu.Unlock()
	for storeName, docs := range m.documents {
		kept := docs[:0]
		for _, d := range docs {
			if d.Name != name {
				kept = append(kept, d)
			}
		}
		m.documents[storeName] = kept
	}
	return nil
}

func (m *MockConnector) ImportFile(ctx context.Context, storeName, fileName string) (*entity.Operation, error) {
	ctxzap.Info(ctx, "[MOCK] importing file",
		zap.String("store", storeName),
		zap.String("file", fileName),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now().UTC().Format(time.RFC3339)

	displayName := fileName
	if f, ok := m.files[fileName]; ok && f.DisplayName != "" {
		displayName = f.DisplayName
	}
	m.documents[storeName] = append(m.documents[storeName], entity.Document{
		Name:        fmt.Sprintf("%s/documents/mock-doc-%d", storeName, m.seq),
		DisplayName: displayName,
		CreateTime:  now,
	})

	// Mock imports complete immediately, so the poll loop in the handler
	// sees a finished operation on the first pass.
	return &entity.Operation{
		Name: fmt.Sprintf("operations/mock-import-%d", m.seq),
		Done: true,
	}, nil
}

func (m *MockConnector) GetOperation(ctx context.Context, name string) (*entity.Operation, error) {
	return &entity.Operation{Name: name, Done: true}, nil
}

func (m *MockConnector) ListFiles(ctx context.Context) ([]entity.File, error) {
	ctxzap.Info(ctx, "[MOCK] listing files")

	m.mu.Lock()
	defer m.mu.Unlock()
	files := make([]entity.File, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, f)
	}
	return files, nil
}

func (m *MockConnector) GetFile(ctx context.Context, name string) (*entity.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return &file, nil
}

func (m *MockConnector) DeleteFile(ctx context.Context, name string) error {
	ctxzap.Info(ctx, "[MOCK] deleting file", zap.String("name", name))

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *MockConnector) UploadFile(ctx context.Context, content []byte, mimeType, displayName string) (*entity.File, error) {
	ctxzap.Info(ctx, "[MOCK] uploading file",
		zap.String("display_name", displayName),
		zap.Int("size", len(content)),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	file := entity.File{
		Name:        fmt.Sprintf("files/mock-file-%d", m.seq),
		DisplayName: displayName,
		MimeType:    mimeType,
		SizeBytes:   fmt.Sprintf("%d", len(content)),
		CreateTime:  now,
		UpdateTime:  now,
		State:       "ACTIVE",
	}
	m.files[file.Name] = file
	return &file, nil
}

func (m *MockConnector) StreamChat(ctx context.Context, model, storeName string, history []entity.ChatTurn, message string) (ChatStream, error) {
	ctxzap.Info(ctx, "[MOCK] opening chat stream",
		zap.String("model", model),
		zap.String("store", storeName),
	)

	answer := fmt.Sprintf(
		"This is a mock answer about %q, grounded in the documents of %s.",
		strings.TrimSpace(message), storeName,
	)

	chunks := make([]entity.StreamChunk, 0)
	for _, word := range strings.SplitAfter(answer, " ") {
		chunks = append(chunks, entity.StreamChunk{Text: word})
	}
	chunks = append(chunks, entity.StreamChunk{
		GroundingMetadata: &entity.GroundingMetadata{
			GroundingChunks: []entity.GroundingChunk{{
				RetrievedContext: &entity.RetrievedContext{
					DocumentURI: storeName + "/documents/getting-started",
					Title:       "getting-started.md",
				},
			}},
		},
	})

	return &mockStream{chunks: chunks}, nil
}

type mockStream struct {
	chunks []entity.StreamChunk
	pos    int
}

func (s *mockStream) Recv() (*entity.StreamChunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return &chunk, nil
}

func (s *mockStream) Close() error { return nil }

var (
	_ API = (*Connector)(nil)
	_ API = (*MockConnector)(nil)
)
