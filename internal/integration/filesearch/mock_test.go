package filesearch

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMockConnectorStoreLifecycle(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	ctx := context.Background()

	store, err := m.CreateStore(ctx, "My Docs")
	require.NoError(t, err)
	assert.Equal(t, "My Docs", store.DisplayName)

	stores, err := m.ListStores(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, 2) // seeded demo store plus the new one

	require.NoError(t, m.DeleteStore(ctx, store.Name))

	stores, err = m.ListStores(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}

func TestMockConnectorImportAddsDocument(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	ctx := context.Background()

	file, err := m.UploadFile(ctx, []byte("content"), "text/plain", "notes.txt")
	require.NoError(t, err)

	op, err := m.ImportFile(ctx, "fileSearchStores/demo", file.Name)
	require.NoError(t, err)
	assert.True(t, op.Done)

	docs, err := m.ListDocuments(ctx, "fileSearchStores/demo")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "notes.txt", docs[1].DisplayName)
}

func TestMockConnectorStream(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	stream, err := m.StreamChat(context.Background(), "gemini-2.5-flash", "fileSearchStores/demo", nil, "what is this?")
	require.NoError(t, err)
	defer stream.Close()

	var text strings.Builder
	sawGrounding := false
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		text.WriteString(chunk.Text)
		if chunk.GroundingMetadata != nil {
			sawGrounding = true
		}
	}

	assert.Contains(t, text.String(), "what is this?")
	assert.True(t, sawGrounding)
}
