package filesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/pkg/sse"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Wire types for the streaming generate call. Only the fields the dashboard
// consumes are mapped.

type generateContentRequest struct {
	Contents []entity.ChatTurn `json:"contents"`
	Tools    []tool            `json:"tools,omitempty"`
}

type tool struct {
	FileSearch *fileSearchTool `json:"fileSearch,omitempty"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content           *candidateContent         `json:"content,omitempty"`
	GroundingMetadata *entity.GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type candidateContent struct {
	Parts []entity.TurnPart `json:"parts"`
}

// StreamChat opens a streaming chat session against the upstream model,
// scoped to file-search retrieval over the one named store and seeded with
// the caller-supplied history. A setup failure is returned here, before any
// chunk is produced; failures after that surface from ChatStream.Recv.
func (c *Connector) StreamChat(ctx context.Context, model, storeName string, history []entity.ChatTurn, message string) (ChatStream, error) {
	ctxzap.Info(ctx, "opening upstream chat stream",
		zap.String("model", model),
		zap.String("store", storeName),
		zap.Int("history_turns", len(history)),
	)

	contents := make([]entity.ChatTurn, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, entity.ChatTurn{
		Role:  entity.RoleUser,
		Parts: []entity.TurnPart{{Text: message}},
	})

	req := generateContentRequest{
		Contents: contents,
		Tools: []tool{{
			FileSearch: &fileSearchTool{
				FileSearchStoreNames: []string{storeName},
			},
		}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", apiVersion, model)
	body, err := c.stream.DoStreamRequest(ctx, http.MethodPost, endpoint, req)
	if err != nil {
		return nil, fmt.Errorf("open chat stream: %w", err)
	}

	return &chatStream{
		body:   body,
		reader: sse.NewReader(body),
	}, nil
}

type chatStream struct {
	body   io.ReadCloser
	reader *sse.Reader
}

// Recv returns the next non-empty chunk of the upstream stream. Payloads
// that fail to parse are skipped; the upstream occasionally splits JSON
// across transport chunks and the SSE reader already reassembles complete
// events, so a parse failure means a frame we do not understand, not a
// fatal error.
func (s *chatStream) Recv() (*entity.StreamChunk, error) {
	for {
		data, err := s.reader.ReadEvent()
		if err != nil {
			return nil, err
		}

		var resp generateContentResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if len(resp.Candidates) == 0 {
			continue
		}

		cand := resp.Candidates[0]
		chunk := &entity.StreamChunk{
			GroundingMetadata: cand.GroundingMetadata,
		}
		if cand.Content != nil {
			var b strings.Builder
			for _, part := range cand.Content.Parts {
				b.WriteString(part.Text)
			}
			chunk.Text = b.String()
		}

		if chunk.Text == "" && chunk.GroundingMetadata == nil {
			continue
		}
		return chunk, nil
	}
}

func (s *chatStream) Close() error {
	return s.body.Close()
}
