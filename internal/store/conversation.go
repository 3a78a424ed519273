package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const sqlCreateConversation = `
INSERT INTO conversations (lead_id, click_log_id, match_method, match_confidence, origin_label, origin_reason, click_to_message_latency_seconds, message_text, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, lead_id, click_log_id, match_method, match_confidence, origin_label, origin_reason, click_to_message_latency_seconds, message_text, received_at, created_at`

// CreateConversation persists an attributed conversation. If another
// conversation already claimed the same click, the partial unique index on
// click_log_id rejects the insert and ErrClickAlreadyClaimed is returned.
func (s *Store) CreateConversation(ctx context.Context, conversation Conversation) (Conversation, error) {
	var created Conversation
	err := s.db.GetContext(ctx, &created, sqlCreateConversation,
		conversation.LeadID,
		conversation.ClickLogID,
		conversation.MatchMethod,
		conversation.MatchConfidence,
		conversation.OriginLabel,
		conversation.OriginReason,
		conversation.ClickToMessageLatencySeconds,
		conversation.MessageText,
		conversation.ReceivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Conversation{}, ErrClickAlreadyClaimed
		}
		s.logger.Error(ctx, "failed to create conversation", err)
		return Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return created, nil
}

const sqlListConversationsByLeadID = `
SELECT id, lead_id, click_log_id, match_method, match_confidence, origin_label, origin_reason, click_to_message_latency_seconds, message_text, received_at, created_at
FROM conversations
WHERE lead_id = $1
ORDER BY received_at ASC`

// ListConversationsByLeadID retrieves all conversations for a lead
func (s *Store) ListConversationsByLeadID(ctx context.Context, leadID uuid.UUID) ([]Conversation, error) {
	var conversations []Conversation
	err := s.db.SelectContext(ctx, &conversations, sqlListConversationsByLeadID, leadID)
	if err != nil {
		s.logger.Error(ctx, "failed to list conversations by lead id", err)
		return nil, fmt.Errorf("failed to list conversations by lead id: %w", err)
	}
	return conversations, nil
}
