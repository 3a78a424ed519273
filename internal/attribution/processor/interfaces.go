package processor

import (
	"context"
	"time"

	"whatsapp-hub/internal/store"
)

// ClickStore defines the database operations required by the attribution engine
type ClickStore interface {
	GetClickLogByShortID(ctx context.Context, shortID string) (store.ClickLog, error)
	ListCandidateClickLogs(ctx context.Context, whatsappNumber string, from, to time.Time, limit int) ([]store.ClickLog, error)
}
