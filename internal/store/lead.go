package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sqlGetLeadByPhone = `
SELECT id, phone, first_seen_at, last_seen_at FROM leads WHERE phone = $1`

// GetLeadByPhone retrieves a lead by phone number
func (s *Store) GetLeadByPhone(ctx context.Context, phone string) (Lead, error) {
	var lead Lead
	err := s.db.GetContext(ctx, &lead, sqlGetLeadByPhone, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get lead by phone", err)
		return Lead{}, fmt.Errorf("failed to get lead by phone: %w", err)
	}
	return lead, nil
}

const sqlUpsertLead = `
INSERT INTO leads (phone, first_seen_at, last_seen_at)
VALUES ($1, $2, $2)
ON CONFLICT (phone) DO UPDATE SET last_seen_at = $2
RETURNING id, phone, first_seen_at, last_seen_at`

// UpsertLead creates the lead on first contact or refreshes last_seen_at on
// subsequent messages
func (s *Store) UpsertLead(ctx context.Context, phone string, seenAt time.Time) (Lead, error) {
	var lead Lead
	err := s.db.GetContext(ctx, &lead, sqlUpsertLead, phone, seenAt)
	if err != nil {
		s.logger.Error(ctx, "failed to upsert lead", err)
		return Lead{}, fmt.Errorf("failed to upsert lead: %w", err)
	}
	return lead, nil
}

const sqlGetLeadByID = `
SELECT id, phone, first_seen_at, last_seen_at FROM leads WHERE id = $1`

// GetLeadByID retrieves a lead by ID
func (s *Store) GetLeadByID(ctx context.Context, leadID uuid.UUID) (Lead, error) {
	var lead Lead
	err := s.db.GetContext(ctx, &lead, sqlGetLeadByID, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get lead by id", err)
		return Lead{}, fmt.Errorf("failed to get lead by id: %w", err)
	}
	return lead, nil
}
