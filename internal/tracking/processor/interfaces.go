package processor

import (
	"context"

	"whatsapp-hub/internal/store"
)

// TrackingStore defines the database operations required by the tracking processor
type TrackingStore interface {
	GetActiveTrackingLinkBySlug(ctx context.Context, slug string) (store.TrackingLink, error)
	CreateClickLog(ctx context.Context, params store.CreateClickLogParams) (store.ClickLog, error)
}
