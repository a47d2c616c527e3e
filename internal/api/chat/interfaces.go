package chat

import (
	"context"

	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/integration/filesearch"
)

type ChatConnector interface {
	StreamChat(ctx context.Context, model, storeName string, history []entity.ChatTurn, message string) (filesearch.ChatStream, error)
}
