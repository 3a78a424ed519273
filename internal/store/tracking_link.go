package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateTrackingLinkParams represents parameters for creating a tracking link
type CreateTrackingLinkParams struct {
	UserID           uuid.UUID
	Slug             string
	Name             string
	Platform         *string
	WhatsAppNumber   *string
	DestinationURL   *string
	PreFilledMessage *string
}

// UpdateTrackingLinkParams represents parameters for updating a tracking link
type UpdateTrackingLinkParams struct {
	Name             *string
	Platform         *string
	WhatsAppNumber   *string
	DestinationURL   *string
	PreFilledMessage *string
}

const sqlCreateTrackingLink = `
INSERT INTO tracking_links (user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message, archived_at, created_at, updated_at`

// CreateTrackingLink creates a tracking link
func (s *Store) CreateTrackingLink(ctx context.Context, params CreateTrackingLinkParams) (TrackingLink, error) {
	var link TrackingLink
	err := s.db.GetContext(ctx, &link, sqlCreateTrackingLink,
		params.UserID,
		params.Slug,
		params.Name,
		params.Platform,
		params.WhatsAppNumber,
		params.DestinationURL,
		params.PreFilledMessage)
	if err != nil {
		if isUniqueViolation(err) {
			return TrackingLink{}, ErrDuplicateSlug
		}
		s.logger.Error(ctx, "failed to create tracking link", err)
		return TrackingLink{}, fmt.Errorf("failed to create tracking link: %w", err)
	}
	return link, nil
}

// ErrDuplicateSlug is returned when a tracking link insert collides on slug.
var ErrDuplicateSlug = errors.New("duplicate slug")

const sqlGetTrackingLinkByID = `
SELECT id, user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message, archived_at, created_at, updated_at
FROM tracking_links
WHERE id = $1`

// GetTrackingLinkByID retrieves a tracking link by ID
func (s *Store) GetTrackingLinkByID(ctx context.Context, linkID uuid.UUID) (TrackingLink, error) {
	var link TrackingLink
	err := s.db.GetContext(ctx, &link, sqlGetTrackingLinkByID, linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TrackingLink{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get tracking link by id", err)
		return TrackingLink{}, fmt.Errorf("failed to get tracking link by id: %w", err)
	}
	return link, nil
}

const sqlGetActiveTrackingLinkBySlug = `
SELECT id, user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message, archived_at, created_at, updated_at
FROM tracking_links
WHERE slug = $1 AND archived_at IS NULL`

// GetActiveTrackingLinkBySlug retrieves a non-archived tracking link by slug
func (s *Store) GetActiveTrackingLinkBySlug(ctx context.Context, slug string) (TrackingLink, error) {
	var link TrackingLink
	err := s.db.GetContext(ctx, &link, sqlGetActiveTrackingLinkBySlug, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TrackingLink{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get tracking link by slug", err)
		return TrackingLink{}, fmt.Errorf("failed to get tracking link by slug: %w", err)
	}
	return link, nil
}

const sqlListTrackingLinksByUserID = `
SELECT id, user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message, archived_at, created_at, updated_at
FROM tracking_links
WHERE user_id = $1
ORDER BY created_at DESC`

// ListTrackingLinksByUserID retrieves all tracking links owned by a user,
// archived ones included
func (s *Store) ListTrackingLinksByUserID(ctx context.Context, userID uuid.UUID) ([]TrackingLink, error) {
	var links []TrackingLink
	err := s.db.SelectContext(ctx, &links, sqlListTrackingLinksByUserID, userID)
	if err != nil {
		s.logger.Error(ctx, "failed to list tracking links", err)
		return nil, fmt.Errorf("failed to list tracking links: %w", err)
	}
	return links, nil
}

const sqlUpdateTrackingLink = `
UPDATE tracking_links
SET name = COALESCE($2, name),
    platform = COALESCE($3, platform),
    whatsapp_number = COALESCE($4, whatsapp_number),
    destination_url = COALESCE($5, destination_url),
    pre_filled_message = COALESCE($6, pre_filled_message),
    updated_at = NOW()
WHERE id = $1
RETURNING id, user_id, slug, name, platform, whatsapp_number, destination_url, pre_filled_message, archived_at, created_at, updated_at`

// UpdateTrackingLink updates the mutable fields of a tracking link
func (s *Store) UpdateTrackingLink(ctx context.Context, linkID uuid.UUID, params UpdateTrackingLinkParams) (TrackingLink, error) {
	var link TrackingLink
	err := s.db.GetContext(ctx, &link, sqlUpdateTrackingLink,
		linkID,
		params.Name,
		params.Platform,
		params.WhatsAppNumber,
		params.DestinationURL,
		params.PreFilledMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TrackingLink{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to update tracking link", err)
		return TrackingLink{}, fmt.Errorf("failed to update tracking link: %w", err)
	}
	return link, nil
}

const sqlSetTrackingLinkArchivedAt = `
UPDATE tracking_links SET archived_at = $2, updated_at = NOW() WHERE id = $1`

// ArchiveTrackingLink soft-deletes a tracking link. Archived links stop
// redirecting but their click history remains attributable.
func (s *Store) ArchiveTrackingLink(ctx context.Context, linkID uuid.UUID) error {
	now := time.Now().UTC()
	return s.setArchivedAt(ctx, linkID, &now)
}

// RestoreTrackingLink re-activates an archived tracking link
func (s *Store) RestoreTrackingLink(ctx context.Context, linkID uuid.UUID) error {
	return s.setArchivedAt(ctx, linkID, nil)
}

func (s *Store) setArchivedAt(ctx context.Context, linkID uuid.UUID, archivedAt *time.Time) error {
	result, err := s.db.ExecContext(ctx, sqlSetTrackingLinkArchivedAt, linkID, archivedAt)
	if err != nil {
		s.logger.Error(ctx, "failed to set tracking link archived_at", err)
		return fmt.Errorf("failed to set tracking link archived_at: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TrackingLinkMetrics aggregates per-link click and conversation counts
type TrackingLinkMetrics struct {
	TrackingLinkID uuid.UUID `db:"tracking_link_id" json:"tracking_link_id"`
	ClickCount     int       `db:"click_count" json:"click_count"`
	MatchedCount   int       `db:"matched_count" json:"matched_count"`
}

const sqlGetTrackingLinkMetrics = `
SELECT tl.id AS tracking_link_id,
       COUNT(cl.id) AS click_count,
       COUNT(c.id) AS matched_count
FROM tracking_links tl
LEFT JOIN click_logs cl ON cl.tracking_link_id = tl.id
LEFT JOIN conversations c ON c.click_log_id = cl.id
WHERE tl.user_id = $1
GROUP BY tl.id`

// GetTrackingLinkMetrics returns click and matched-conversation counts per link
func (s *Store) GetTrackingLinkMetrics(ctx context.Context, userID uuid.UUID) ([]TrackingLinkMetrics, error) {
	var metrics []TrackingLinkMetrics
	err := s.db.SelectContext(ctx, &metrics, sqlGetTrackingLinkMetrics, userID)
	if err != nil {
		s.logger.Error(ctx, "failed to get tracking link metrics", err)
		return nil, fmt.Errorf("failed to get tracking link metrics: %w", err)
	}
	return metrics, nil
}
