package filesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	pkgRetry "github.com/aminanvary/Gemini-File-Search/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) (*Connector, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.FileSearchConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: server.URL},
		APIKey:           "test-key",
		PageSize:         2,
		Retry:            pkgRetry.RetryConfig{Attempts: 1},
	}
	return NewConnector(cfg, zap.NewNop()), server
}

func TestListStoresFollowsPagination(t *testing.T) {
	var gotTokens []string

	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/fileSearchStores", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))

		token := r.URL.Query().Get("pageToken")
		gotTokens = append(gotTokens, token)

		w.Header().Set("Content-Type", "application/json")
		if token == "" {
			fmt.Fprint(w, `{"fileSearchStores":[{"name":"fileSearchStores/a"},{"name":"fileSearchStores/b"}],"nextPageToken":"page-2"}`)
			return
		}
		fmt.Fprint(w, `{"fileSearchStores":[{"name":"fileSearchStores/c"}]}`)
	})

	stores, err := conn.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, "fileSearchStores/c", stores[2].Name)
	assert.Equal(t, []string{"", "page-2"}, gotTokens)
}

func TestDeleteStoreForces(t *testing.T) {
	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1beta/fileSearchStores/a", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("force"))
		fmt.Fprint(w, `{}`)
	})

	require.NoError(t, conn.DeleteStore(context.Background(), "fileSearchStores/a"))
}

func TestImportFile(t *testing.T) {
	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/fileSearchStores/a:importFile", r.URL.Path)

		var req entity.ImportFileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "files/doc", req.FileName)

		fmt.Fprint(w, `{"name":"operations/import-1","done":false}`)
	})

	op, err := conn.ImportFile(context.Background(), "fileSearchStores/a", "files/doc")
	require.NoError(t, err)
	assert.Equal(t, "operations/import-1", op.Name)
	assert.False(t, op.Done)
}

func TestUploadFileMultipart(t *testing.T) {
	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload/v1beta/files", r.URL.Path)
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])

		meta, err := mr.NextPart()
		require.NoError(t, err)
		metaBytes, err := io.ReadAll(meta)
		require.NoError(t, err)
		assert.JSONEq(t, `{"file":{"displayName":"report.pdf"}}`, string(metaBytes))

		media, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", media.Header.Get("Content-Type"))
		mediaBytes, err := io.ReadAll(media)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(mediaBytes))

		fmt.Fprint(w, `{"file":{"name":"files/uploaded","displayName":"report.pdf"}}`)
	})

	file, err := conn.UploadFile(context.Background(), []byte("%PDF-1.4"), "application/pdf", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "files/uploaded", file.Name)
}

func TestStreamChat(t *testing.T) {
	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.5-flash:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		var req struct {
			Contents []entity.ChatTurn `json:"contents"`
			Tools    []struct {
				FileSearch struct {
					FileSearchStoreNames []string `json:"fileSearchStoreNames"`
				} `json:"fileSearch"`
			} `json:"tools"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 3)
		assert.Equal(t, entity.RoleUser, req.Contents[0].Role)
		assert.Equal(t, entity.RoleModel, req.Contents[1].Role)
		assert.Equal(t, "next question", req.Contents[2].Parts[0].Text)
		require.Len(t, req.Tools, 1)
		assert.Equal(t, []string{"fileSearchStores/a"}, req.Tools[0].FileSearch.FileSearchStoreNames)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}]}}]}\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}]},\"groundingMetadata\":{\"groundingChunks\":[{\"retrievedContext\":{\"title\":\"doc.md\"}}]}}]}\n\n")
	})

	history := []entity.ChatTurn{
		{Role: entity.RoleUser, Parts: []entity.TurnPart{{Text: "first question"}}},
		{Role: entity.RoleModel, Parts: []entity.TurnPart{{Text: "first answer"}}},
	}

	stream, err := conn.StreamChat(context.Background(), "gemini-2.5-flash", "fileSearchStores/a", history, "next question")
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hel", chunk.Text)
	assert.Nil(t, chunk.GroundingMetadata)

	chunk, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "lo", chunk.Text)
	require.NotNil(t, chunk.GroundingMetadata)
	assert.Equal(t, "doc.md", chunk.GroundingMetadata.GroundingChunks[0].RetrievedContext.Title)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestStreamChatSetupError(t *testing.T) {
	conn, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	})

	_, err := conn.StreamChat(context.Background(), "gemini-2.5-flash", "fileSearchStores/a", nil, "hi")
	require.Error(t, err)
}
