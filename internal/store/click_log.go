package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateClickLogParams represents parameters for recording a click
type CreateClickLogParams struct {
	ShortID        string
	TrackingLinkID uuid.UUID
	Gclid          *string
	Fbclid         *string
	Fbc            *string
	UtmSource      *string
	UtmMedium      *string
	UtmCampaign    *string
	UtmTerm        *string
	UtmContent     *string
	IPAddress      *string
	UserAgent      *string
	DeviceType     *string
}

const sqlCreateClickLog = `
INSERT INTO click_logs (short_id, tracking_link_id, gclid, fbclid, fbc, utm_source, utm_medium, utm_campaign, utm_term, utm_content, ip_address, user_agent, device_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, short_id, tracking_link_id, gclid, fbclid, fbc, utm_source, utm_medium, utm_campaign, utm_term, utm_content, ip_address, user_agent, device_type, created_at`

// CreateClickLog records a click. A short_id collision surfaces as
// ErrDuplicateShortID so the caller can regenerate and retry.
func (s *Store) CreateClickLog(ctx context.Context, params CreateClickLogParams) (ClickLog, error) {
	var click ClickLog
	err := s.db.GetContext(ctx, &click, sqlCreateClickLog,
		params.ShortID,
		params.TrackingLinkID,
		params.Gclid,
		params.Fbclid,
		params.Fbc,
		params.UtmSource,
		params.UtmMedium,
		params.UtmCampaign,
		params.UtmTerm,
		params.UtmContent,
		params.IPAddress,
		params.UserAgent,
		params.DeviceType)
	if err != nil {
		if isUniqueViolation(err) {
			return ClickLog{}, ErrDuplicateShortID
		}
		s.logger.Error(ctx, "failed to create click log", err)
		return ClickLog{}, fmt.Errorf("failed to create click log: %w", err)
	}
	return click, nil
}

const sqlGetClickLogByShortID = `
SELECT cl.id, cl.short_id, cl.tracking_link_id, cl.gclid, cl.fbclid, cl.fbc,
       cl.utm_source, cl.utm_medium, cl.utm_campaign, cl.utm_term, cl.utm_content,
       cl.ip_address, cl.user_agent, cl.device_type, cl.created_at,
       tl.platform AS link_platform,
       tl.pre_filled_message AS link_pre_filled_message,
       tl.whatsapp_number AS link_whatsapp_number,
       (SELECT COUNT(*) FROM conversations c WHERE c.click_log_id = cl.id) AS conversation_count
FROM click_logs cl
JOIN tracking_links tl ON tl.id = cl.tracking_link_id
WHERE cl.short_id = $1`

// GetClickLogByShortID retrieves a click by its embedded short id, joined
// with its tracking link and the count of conversations already bound to it
func (s *Store) GetClickLogByShortID(ctx context.Context, shortID string) (ClickLog, error) {
	var click ClickLog
	err := s.db.GetContext(ctx, &click, sqlGetClickLogByShortID, shortID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ClickLog{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get click log by short id", err)
		return ClickLog{}, fmt.Errorf("failed to get click log by short id: %w", err)
	}
	return click, nil
}

const sqlListCandidateClickLogs = `
SELECT cl.id, cl.short_id, cl.tracking_link_id, cl.gclid, cl.fbclid, cl.fbc,
       cl.utm_source, cl.utm_medium, cl.utm_campaign, cl.utm_term, cl.utm_content,
       cl.ip_address, cl.user_agent, cl.device_type, cl.created_at,
       tl.platform AS link_platform,
       tl.pre_filled_message AS link_pre_filled_message,
       tl.whatsapp_number AS link_whatsapp_number,
       0 AS conversation_count
FROM click_logs cl
JOIN tracking_links tl ON tl.id = cl.tracking_link_id
WHERE tl.whatsapp_number = $1
  AND cl.created_at >= $2
  AND cl.created_at <= $3
  AND NOT EXISTS (SELECT 1 FROM conversations c WHERE c.click_log_id = cl.id)
ORDER BY cl.created_at DESC
LIMIT $4`

// ListCandidateClickLogs returns unconsumed clicks on tracking links bound
// to the given WhatsApp number, created within [from, to] inclusive, newest
// first, capped at limit
func (s *Store) ListCandidateClickLogs(ctx context.Context, whatsappNumber string, from, to time.Time, limit int) ([]ClickLog, error) {
	var clicks []ClickLog
	err := s.db.SelectContext(ctx, &clicks, sqlListCandidateClickLogs, whatsappNumber, from, to, limit)
	if err != nil {
		s.logger.Error(ctx, "failed to list candidate click logs", err)
		return nil, fmt.Errorf("failed to list candidate click logs: %w", err)
	}
	return clicks, nil
}
