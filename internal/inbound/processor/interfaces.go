package processor

import (
	"context"
	"time"

	attribution "whatsapp-hub/internal/attribution/processor"
	"whatsapp-hub/internal/store"
)

// InboundStore defines the database operations required by the inbound processor
type InboundStore interface {
	UpsertLead(ctx context.Context, phone string, seenAt time.Time) (store.Lead, error)
	CreateConversation(ctx context.Context, conversation store.Conversation) (store.Conversation, error)
}

// Matcher runs the attribution waterfall for an inbound message.
type Matcher interface {
	Match(ctx context.Context, whatsappNumber *string, messageText string, messageDate time.Time) (attribution.MatchResult, error)
}

// EventPublisher publishes the attribution verdict for downstream consumers.
type EventPublisher interface {
	PublishConversationMatched(ctx context.Context, conversation store.Conversation, whatsappNumber string) error
}
