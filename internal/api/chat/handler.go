package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/integration/filesearch"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/logger"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/response"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	conn      ChatConnector
	validator *validator.Validator
}

func NewHandler(conn ChatConnector, validator *validator.Validator) *Handler {
	return &Handler{
		conn:      conn,
		validator: validator,
	}
}

// StreamChat handles POST /api/chat. It validates the request, opens a
// token stream against the upstream model and relays it to the client as
// server-sent events. Failures before the stream opens are plain JSON
// errors; failures mid-stream are reported in-band as an "error" event,
// because the 200 header is already on the wire by then.
func (h *Handler) StreamChat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StreamChat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode chat request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateChat(&req); err != nil {
		ctxzap.Warn(ctx, "chat request validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	storeName := entity.NormalizeStoreName(req.StoreID)

	ctx = logger.AddFields(ctx,
		zap.String("model", req.Model),
		zap.String("store", storeName),
		zap.Int("history_len", len(req.History)),
	)
	ctxzap.Info(ctx, "opening chat stream")

	stream, err := h.conn.StreamChat(ctx, req.Model, storeName, req.History, req.Message)
	if err != nil {
		ctxzap.Error(ctx, "failed to open chat stream", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer stream.Close()

	sse, err := newSSEWriter(w)
	if err != nil {
		ctxzap.Error(ctx, "streaming unsupported", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.relay(ctx, sse, stream)
}

// relay pumps chunks from the upstream stream to the client. Grounding
// metadata is held back and re-emitted just before done: the upstream may
// attach it to any chunk, and when several chunks carry it the last one
// wins.
func (h *Handler) relay(ctx context.Context, sse *sseWriter, stream filesearch.ChatStream) {
	var grounding *entity.GroundingMetadata

	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				ctxzap.Info(ctx, "client disconnected mid-stream")
				return
			}
			ctxzap.Error(ctx, "upstream stream failed", zap.Error(err))
			sse.WriteEvent(entity.StreamEvent{Type: entity.EventError, Content: err.Error()})
			return
		}

		if chunk.Text != "" {
			if err := sse.WriteEvent(entity.StreamEvent{Type: entity.EventText, Content: chunk.Text}); err != nil {
				ctxzap.Warn(ctx, "failed to write text event", zap.Error(err))
				return
			}
		}
		if chunk.GroundingMetadata != nil {
			grounding = chunk.GroundingMetadata
		}
	}

	if grounding != nil {
		if err := sse.WriteEvent(entity.StreamEvent{Type: entity.EventGrounding, Content: grounding}); err != nil {
			ctxzap.Warn(ctx, "failed to write grounding event", zap.Error(err))
			return
		}
	}

	if err := sse.WriteEvent(entity.StreamEvent{Type: entity.EventDone}); err != nil {
		ctxzap.Warn(ctx, "failed to write done event", zap.Error(err))
	}
}
