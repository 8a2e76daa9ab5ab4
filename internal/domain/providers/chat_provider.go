package providers

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// ChatProvider defines the interface for the chat-completion backend used
// by the trip assistant
type ChatProvider interface {
	// Complete returns the assistant reply for a conversation
	Complete(ctx context.Context, messages []entities.ChatMessage) (string, error)
}
