package processor

import (
	"context"
	"time"

	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

// SessionStore is the interface for transport session persistence
type SessionStore interface {
	UpsertWhatsAppSession(ctx context.Context, userID uuid.UUID, status string, lastPingAt *time.Time) (store.WhatsAppSession, error)
	GetWhatsAppSessionByUserID(ctx context.Context, userID uuid.UUID) (store.WhatsAppSession, error)
}
