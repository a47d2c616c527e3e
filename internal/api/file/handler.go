package file

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/logger"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/response"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	pkghttp "github.com/aminanvary/Gemini-File-Search/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	conn      FileConnector
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(conn FileConnector, cfg config.FileUploadConfig, validator *validator.Validator) *Handler {
	return &Handler{
		conn:      conn,
		cfg:       cfg,
		validator: validator,
	}
}

// ListFiles handles GET /api/files
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListFiles")

	files, err := h.conn.ListFiles(ctx)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "files listed successfully", zap.Int("count", len(files)))
	response.Success(w, &entity.ListFilesResponse{Files: files})
}

// UploadFile handles POST /api/files. The request is a multipart form with a
// single "file" field; the part's filename becomes the display name upstream.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadFile")

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid form data or size too large")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Warn(ctx, "no file provided", zap.Error(err))
		response.Error(w, http.StatusBadRequest, entity.ErrNoFile.Error())
		return
	}
	defer part.Close()

	if err := h.validator.ValidateUploadSize(header.Size); err != nil {
		ctxzap.Warn(ctx, "upload size validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := io.ReadAll(part)
	if err != nil {
		ctxzap.Error(ctx, "failed to read uploaded file", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ctxzap.Info(ctx, "uploading file",
		zap.String("display_name", header.Filename),
		zap.String("mime_type", mimeType),
		zap.Int64("size", header.Size),
	)

	uploaded, err := h.conn.UploadFile(ctx, content, mimeType, header.Filename)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "file uploaded successfully", zap.String("name", uploaded.Name))
	response.Success(w, uploaded)
}

// GetFile handles GET /api/files/{file_id}
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileName := entity.NormalizeFileName(chi.URLParam(r, "file_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("file", fileName),
		zap.String("action", "GetFile"),
	)

	f, err := h.conn.GetFile(ctx, fileName)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	response.Success(w, f)
}

// DeleteFile handles DELETE /api/files/{file_id}
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileName := entity.NormalizeFileName(chi.URLParam(r, "file_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("file", fileName),
		zap.String("action", "DeleteFile"),
	)

	ctxzap.Info(ctx, "deleting file")

	if err := h.conn.DeleteFile(ctx, fileName); err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "file deleted successfully")
	response.Success(w, map[string]bool{"success": true})
}

func (h *Handler) handleConnectorError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "upstream request failed", zap.Error(err))

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			response.Error(w, http.StatusUnauthorized, "Invalid or missing API key")
		case http.StatusNotFound:
			response.Error(w, http.StatusNotFound, httpErr.Message)
		default:
			response.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.Error(w, http.StatusInternalServerError, err.Error())
}
