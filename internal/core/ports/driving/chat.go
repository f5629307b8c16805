package driving

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// ChatService answers free-form engineering questions.
type ChatService interface {
	// Ask sends message after history, optionally grounded by a document context.
	Ask(ctx context.Context, history []driven.ChatMessage, message, documentContext string) (string, error)
}
