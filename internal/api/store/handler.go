package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/logger"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/response"
	pkgRetry "github.com/aminanvary/Gemini-File-Search/internal/pkg/retry"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	pkghttp "github.com/aminanvary/Gemini-File-Search/pkg/http"
	"github.com/avast/retry-go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	conn      StoreConnector
	pollCfg   pkgRetry.RetryConfig
	validator *validator.Validator
}

func NewHandler(conn StoreConnector, pollCfg pkgRetry.RetryConfig, validator *validator.Validator) *Handler {
	return &Handler{
		conn:      conn,
		pollCfg:   pollCfg,
		validator: validator,
	}
}

// ListStores handles GET /api/stores
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListStores")

	stores, err := h.conn.ListStores(ctx)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "stores listed successfully", zap.Int("count", len(stores)))
	response.Success(w, &entity.ListStoresResponse{Stores: stores})
}

// CreateStore handles POST /api/stores
func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateStore")

	var req entity.CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode create store request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateCreateStore(&req); err != nil {
		ctxzap.Warn(ctx, "create store validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "creating store", zap.String("display_name", req.DisplayName))

	store, err := h.conn.CreateStore(ctx, req.DisplayName)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "store created successfully", zap.String("name", store.Name))
	response.Success(w, store)
}

// GetStore handles GET /api/stores/{store_id}
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	storeName := entity.NormalizeStoreName(chi.URLParam(r, "store_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("store", storeName),
		zap.String("action", "GetStore"),
	)

	store, err := h.conn.GetStore(ctx, storeName)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	response.Success(w, store)
}

// DeleteStore handles DELETE /api/stores/{store_id}
func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	storeName := entity.NormalizeStoreName(chi.URLParam(r, "store_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("store", storeName),
		zap.String("action", "DeleteStore"),
	)

	ctxzap.Info(ctx, "deleting store")

	if err := h.conn.DeleteStore(ctx, storeName); err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "store deleted successfully")
	response.Success(w, map[string]bool{"success": true})
}

// ListDocuments handles GET /api/stores/{store_id}/documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	storeName := entity.NormalizeStoreName(chi.URLParam(r, "store_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("store", storeName),
		zap.String("action", "ListDocuments"),
	)

	documents, err := h.conn.ListDocuments(ctx, storeName)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "documents listed successfully", zap.Int("count", len(documents)))
	response.Success(w, &entity.ListDocumentsResponse{Documents: documents})
}

// DeleteDocument handles DELETE /api/stores/{store_id}/documents/{document_id}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	storeName := entity.NormalizeStoreName(chi.URLParam(r, "store_id"))
	documentName := storeName + "/documents/" + chi.URLParam(r, "document_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("document", documentName),
		zap.String("action", "DeleteDocument"),
	)

	ctxzap.Info(ctx, "deleting document")

	if err := h.conn.DeleteDocument(ctx, documentName); err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document deleted successfully")
	response.Success(w, map[string]bool{"success": true})
}

// ImportFile handles POST /api/stores/{store_id}/documents. It starts an
// import of an uploaded file into the store and polls the returned operation
// until it finishes. If the operation outlives the polling window the
// handler answers 202 with the operation name so the client can keep
// checking on its own.
func (h *Handler) ImportFile(w http.ResponseWriter, r *http.Request) {
	storeName := entity.NormalizeStoreName(chi.URLParam(r, "store_id"))
	ctx := logger.AddFields(r.Context(),
		zap.String("store", storeName),
		zap.String("action", "ImportFile"),
	)

	var req entity.ImportFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode import request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateImportFile(&req); err != nil {
		ctxzap.Warn(ctx, "import validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	fileName := entity.NormalizeFileName(req.FileName)
	ctxzap.Info(ctx, "importing file", zap.String("file", fileName))

	op, err := h.conn.ImportFile(ctx, storeName, fileName)
	if err != nil {
		h.handleConnectorError(ctx, w, err)
		return
	}

	op, err = h.pollOperation(ctx, op)
	if err != nil {
		if errors.Is(err, entity.ErrImportPending) {
			ctxzap.Warn(ctx, "import still running after polling window", zap.String("operation", op.Name))
			response.JSON(w, http.StatusAccepted, &entity.ImportTimeoutResponse{
				Error:         "Import operation timed out",
				OperationName: op.Name,
			})
			return
		}
		h.handleConnectorError(ctx, w, err)
		return
	}

	if op.Error != nil {
		ctxzap.Error(ctx, "import operation failed",
			zap.Int("code", op.Error.Code),
			zap.String("message", op.Error.Message),
		)
		response.Error(w, http.StatusInternalServerError, op.Error.Message)
		return
	}

	ctxzap.Info(ctx, "file imported successfully", zap.String("operation", op.Name))
	response.Success(w, &entity.ImportFileResponse{Success: true, Operation: op})
}

func (h *Handler) pollOperation(ctx context.Context, op *entity.Operation) (*entity.Operation, error) {
	if op.Done {
		return op, nil
	}

	opts := append(h.pollCfg.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)

	err := retry.Do(func() error {
		current, err := h.conn.GetOperation(ctx, op.Name)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		op = current
		if !op.Done {
			return entity.ErrImportPending
		}
		return nil
	}, opts...)

	return op, err
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
