package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sqlUpsertWhatsAppSession = `
INSERT INTO whatsapp_sessions (user_id, status, last_ping_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET status = $2, last_ping_at = $3, updated_at = NOW()
RETURNING id, user_id, status, last_ping_at, created_at, updated_at`

// UpsertWhatsAppSession records the transport connection state for a user
func (s *Store) UpsertWhatsAppSession(ctx context.Context, userID uuid.UUID, status string, lastPingAt *time.Time) (WhatsAppSession, error) {
	var session WhatsAppSession
	err := s.db.GetContext(ctx, &session, sqlUpsertWhatsAppSession, userID, status, lastPingAt)
	if err != nil {
		s.logger.Error(ctx, "failed to upsert whatsapp session", err)
		return WhatsAppSession{}, fmt.Errorf("failed to upsert whatsapp session: %w", err)
	}
	return session, nil
}

const sqlGetWhatsAppSessionByUserID = `
SELECT id, user_id, status, last_ping_at, created_at, updated_at
FROM whatsapp_sessions
WHERE user_id = $1`

// GetWhatsAppSessionByUserID retrieves the transport session state for a user
func (s *Store) GetWhatsAppSessionByUserID(ctx context.Context, userID uuid.UUID) (WhatsAppSession, error) {
	var session WhatsAppSession
	err := s.db.GetContext(ctx, &session, sqlGetWhatsAppSessionByUserID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WhatsAppSession{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get whatsapp session", err)
		return WhatsAppSession{}, fmt.Errorf("failed to get whatsapp session: %w", err)
	}
	return session, nil
}
