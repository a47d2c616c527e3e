package file

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConnector struct {
	files       []entity.File
	err         error
	gotName     string
	gotContent  []byte
	gotMimeType string
	gotDisplay  string
}

func (c *stubConnector) ListFiles(context.Context) ([]entity.File, error) {
	return c.files, c.err
}

func (c *stubConnector) GetFile(_ context.Context, name string) (*entity.File, error) {
	c.gotName = name
	if c.err != nil {
		return nil, c.err
	}
	return &entity.File{Name: name}, nil
}

func (c *stubConnector) DeleteFile(_ context.Context, name string) error {
	c.gotName = name
	return c.err
}

func (c *stubConnector) UploadFile(_ context.Context, content []byte, mimeType, displayName string) (*entity.File, error) {
	c.gotContent = content
	c.gotMimeType = mimeType
	c.gotDisplay = displayName
	if c.err != nil {
		return nil, c.err
	}
	return &entity.File{Name: "files/uploaded", DisplayName: displayName}, nil
}

func newTestRouter(conn *stubConnector) http.Handler {
	cfg := config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 2048}
	h := NewHandler(conn, cfg, validator.NewValidator(cfg))
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestListFiles(t *testing.T) {
	conn := &stubConnector{files: []entity.File{{Name: "files/a", DisplayName: "a.pdf"}}}
	router := newTestRouter(conn)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[{"name":"files/a","displayName":"a.pdf"}]}`, rec.Body.String())
}

func TestUploadFile(t *testing.T) {
	conn := &stubConnector{}
	router := newTestRouter(conn)

	body, contentType := multipartBody(t, "file", "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("%PDF-1.4"), conn.gotContent)
	assert.Equal(t, "application/pdf", conn.gotMimeType)
	assert.Equal(t, "report.pdf", conn.gotDisplay)
}

func TestUploadFileMissingField(t *testing.T) {
	router := newTestRouter(&stubConnector{})

	body, contentType := multipartBody(t, "attachment", "report.pdf", "application/pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file provided"}`, rec.Body.String())
}

func TestUploadFileTooLarge(t *testing.T) {
	router := newTestRouter(&stubConnector{})

	body, contentType := multipartBody(t, "file", "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 1025))
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFileNormalizesID(t *testing.T) {
	conn := &stubConnector{}
	router := newTestRouter(conn)

	req := httptest.NewRequest(http.MethodGet, "/files/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "files/abc", conn.gotName)
}

func TestDeleteFile(t *testing.T) {
	conn := &stubConnector{}
	router := newTestRouter(conn)

	req := httptest.NewRequest(http.MethodDelete, "/files/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "files/abc", conn.gotName)
}
