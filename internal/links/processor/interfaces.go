package processor

import (
	"context"

	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

// LinkStore defines the database operations required by the links processor
type LinkStore interface {
	CreateTrackingLink(ctx context.Context, params store.CreateTrackingLinkParams) (store.TrackingLink, error)
	GetTrackingLinkByID(ctx context.Context, linkID uuid.UUID) (store.TrackingLink, error)
	ListTrackingLinksByUserID(ctx context.Context, userID uuid.UUID) ([]store.TrackingLink, error)
	UpdateTrackingLink(ctx context.Context, linkID uuid.UUID, params store.UpdateTrackingLinkParams) (store.TrackingLink, error)
	ArchiveTrackingLink(ctx context.Context, linkID uuid.UUID) error
	RestoreTrackingLink(ctx context.Context, linkID uuid.UUID) error
	GetTrackingLinkMetrics(ctx context.Context, userID uuid.UUID) ([]store.TrackingLinkMetrics, error)
}
