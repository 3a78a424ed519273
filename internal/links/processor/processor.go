package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

var (
	ErrLinkNotFound      = errors.New("tracking link not found")
	ErrSlugAlreadyExists = errors.New("slug already exists")
	ErrUnauthorized      = errors.New("tracking link belongs to another user")
	ErrNoDestination     = errors.New("whatsapp number or destination url is required")
	ErrInvalidPlatform   = errors.New("invalid platform")
)

// CreateLinkParams carries the fields for a new tracking link.
type CreateLinkParams struct {
	Slug             string
	Name             string
	Platform         *string
	WhatsAppNumber   *string
	DestinationURL   *string
	PreFilledMessage *string
}

// UpdateLinkParams carries partial updates; nil fields keep their value.
type UpdateLinkParams struct {
	Name             *string
	Platform         *string
	WhatsAppNumber   *string
	DestinationURL   *string
	PreFilledMessage *string
}

type LinkProcessor struct {
	store  LinkStore
	logger *observability.Logger
}

func New(linkStore LinkStore, logger *observability.Logger) LinkProcessor {
	return LinkProcessor{
		store:  linkStore,
		logger: logger,
	}
}

func validatePlatform(platform *string) error {
	if platform == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*platform)) {
	case store.PlatformMeta, store.PlatformGoogle, store.PlatformSocial:
		return nil
	}
	return ErrInvalidPlatform
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// CreateLink creates a tracking link for the user. A link must point
// somewhere: either a WhatsApp number or a legacy destination URL.
func (p *LinkProcessor) CreateLink(ctx context.Context, userID uuid.UUID, params CreateLinkParams) (store.TrackingLink, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "slug", Value: params.Slug})

	if !hasText(params.WhatsAppNumber) && !hasText(params.DestinationURL) {
		return store.TrackingLink{}, ErrNoDestination
	}
	if err := validatePlatform(params.Platform); err != nil {
		return store.TrackingLink{}, err
	}

	link, err := p.store.CreateTrackingLink(ctx, store.CreateTrackingLinkParams{
		UserID:           userID,
		Slug:             params.Slug,
		Name:             params.Name,
		Platform:         normalizePlatform(params.Platform),
		WhatsAppNumber:   params.WhatsAppNumber,
		DestinationURL:   params.DestinationURL,
		PreFilledMessage: params.PreFilledMessage,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			return store.TrackingLink{}, ErrSlugAlreadyExists
		}
		return store.TrackingLink{}, fmt.Errorf("failed to create tracking link: %w", err)
	}

	p.logger.Info(ctx, "tracking link created")
	return link, nil
}

// GetLink fetches a link owned by the user.
func (p *LinkProcessor) GetLink(ctx context.Context, userID, linkID uuid.UUID) (store.TrackingLink, error) {
	return p.ownedLink(ctx, userID, linkID)
}

// ListLinks returns all of the user's links, archived included.
func (p *LinkProcessor) ListLinks(ctx context.Context, userID uuid.UUID) ([]store.TrackingLink, error) {
	links, err := p.store.ListTrackingLinksByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking links: %w", err)
	}
	return links, nil
}

// UpdateLink applies a partial update to a link owned by the user.
func (p *LinkProcessor) UpdateLink(ctx context.Context, userID, linkID uuid.UUID, params UpdateLinkParams) (store.TrackingLink, error) {
	if err := validatePlatform(params.Platform); err != nil {
		return store.TrackingLink{}, err
	}

	if _, err := p.ownedLink(ctx, userID, linkID); err != nil {
		return store.TrackingLink{}, err
	}

	link, err := p.store.UpdateTrackingLink(ctx, linkID, store.UpdateTrackingLinkParams{
		Name:             params.Name,
		Platform:         normalizePlatform(params.Platform),
		WhatsAppNumber:   params.WhatsAppNumber,
		DestinationURL:   params.DestinationURL,
		PreFilledMessage: params.PreFilledMessage,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.TrackingLink{}, ErrLinkNotFound
		}
		return store.TrackingLink{}, fmt.Errorf("failed to update tracking link: %w", err)
	}
	return link, nil
}

// ArchiveLink soft-deletes a link. Archived links stop redirecting but
// their click history stays attributable.
func (p *LinkProcessor) ArchiveLink(ctx context.Context, userID, linkID uuid.UUID) error {
	if _, err := p.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	if err := p.store.ArchiveTrackingLink(ctx, linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to archive tracking link: %w", err)
	}
	p.logger.Info(observability.WithFields(ctx, observability.Field{Key: "link_id", Value: linkID.String()}), "tracking link archived")
	return nil
}

// RestoreLink reverses an archive.
func (p *LinkProcessor) RestoreLink(ctx context.Context, userID, linkID uuid.UUID) error {
	if _, err := p.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	if err := p.store.RestoreTrackingLink(ctx, linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to restore tracking link: %w", err)
	}
	return nil
}

// GetLinkMetrics returns per-link click and conversation counts for the user.
func (p *LinkProcessor) GetLinkMetrics(ctx context.Context, userID uuid.UUID) ([]store.TrackingLinkMetrics, error) {
	metrics, err := p.store.GetTrackingLinkMetrics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking link metrics: %w", err)
	}
	return metrics, nil
}

func (p *LinkProcessor) ownedLink(ctx context.Context, userID, linkID uuid.UUID) (store.TrackingLink, error) {
	link, err := p.store.GetTrackingLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.TrackingLink{}, ErrLinkNotFound
		}
		return store.TrackingLink{}, fmt.Errorf("failed to get tracking link: %w", err)
	}
	if link.UserID != userID {
		return store.TrackingLink{}, ErrUnauthorized
	}
	return link, nil
}

func normalizePlatform(platform *string) *string {
	if platform == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*platform))
	return &normalized
}
