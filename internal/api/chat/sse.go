package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
)

// sseWriter frames stream events as server-sent events. Every event is
// flushed immediately so the client sees tokens as they arrive instead of
// whenever the response buffer fills.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) WriteEvent(event entity.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write stream event: %w", err)
	}

	s.flusher.Flush()
	return nil
}
