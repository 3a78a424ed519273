package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	attribution "whatsapp-hub/internal/attribution/processor"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"
)

var (
	ErrMissingLeadPhone = errors.New("inbound message has no lead phone")
	ErrEmptyMessageText = errors.New("inbound message has no text")
)

// InboundMessage is a single message received on a WhatsApp number.
type InboundMessage struct {
	WhatsAppNumber *string
	LeadPhone      string
	MessageText    string
	ReceivedAt     time.Time
}

type InboundProcessor struct {
	store     InboundStore
	matcher   Matcher
	publisher EventPublisher
	logger    *observability.Logger
}

func New(inboundStore InboundStore, matcher Matcher, publisher EventPublisher, logger *observability.Logger) InboundProcessor {
	return InboundProcessor{
		store:     inboundStore,
		matcher:   matcher,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessMessage runs the full inbound pipeline: upsert the lead, run the
// attribution waterfall, persist the conversation, and publish the verdict.
//
// Two pipeline workers can race to claim the same click. The database
// enforces at-most-once consumption, so on a claim conflict the waterfall is
// re-run once: the second pass sees the click as consumed and lands on a
// lower tier.
func (p *InboundProcessor) ProcessMessage(ctx context.Context, msg InboundMessage) (store.Conversation, error) {
	if msg.LeadPhone == "" {
		return store.Conversation{}, ErrMissingLeadPhone
	}
	// An empty message carries nothing to attribute; persisting it would
	// only pad the organic numbers.
	if strings.TrimSpace(msg.MessageText) == "" {
		return store.Conversation{}, ErrEmptyMessageText
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "lead_phone", Value: msg.LeadPhone})

	lead, err := p.store.UpsertLead(ctx, msg.LeadPhone, msg.ReceivedAt)
	if err != nil {
		return store.Conversation{}, fmt.Errorf("failed to upsert lead: %w", err)
	}

	result, err := p.matcher.Match(ctx, msg.WhatsAppNumber, msg.MessageText, msg.ReceivedAt)
	if err != nil {
		return store.Conversation{}, fmt.Errorf("failed to match message: %w", err)
	}

	conversation, err := p.store.CreateConversation(ctx, p.buildConversation(lead, msg, result))
	if errors.Is(err, store.ErrClickAlreadyClaimed) {
		p.logger.Info(ctx, "click claimed by concurrent conversation, re-running match")

		result, err = p.matcher.Match(ctx, msg.WhatsAppNumber, msg.MessageText, msg.ReceivedAt)
		if err != nil {
			return store.Conversation{}, fmt.Errorf("failed to re-match message: %w", err)
		}
		conversation, err = p.store.CreateConversation(ctx, p.buildConversation(lead, msg, result))
		if errors.Is(err, store.ErrClickAlreadyClaimed) {
			// Losing two claim races in a row means the candidate pool is
			// being drained under us. Record the conversation as organic
			// rather than drop the message.
			p.logger.Warn(ctx, "click claimed again on re-match, recording as organic")
			conversation, err = p.store.CreateConversation(ctx, p.buildConversation(lead, msg, organicFallback(result)))
		}
	}
	if err != nil {
		return store.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "conversation_id", Value: conversation.ID.String()},
		observability.Field{Key: "match_method", Value: string(conversation.MatchMethod)},
		observability.Field{Key: "origin_label", Value: string(conversation.OriginLabel)},
	)
	p.logger.Info(ctx, "conversation attributed")

	// The verdict is already durable; a publish failure only delays
	// downstream consumers and is not worth reprocessing the message.
	number := ""
	if msg.WhatsAppNumber != nil {
		number = *msg.WhatsAppNumber
	}
	if err := p.publisher.PublishConversationMatched(ctx, conversation, number); err != nil {
		p.logger.Error(ctx, "failed to publish conversation.matched", err)
	}

	return conversation, nil
}

// organicFallback strips the click linkage from a match verdict, keeping only
// the cleaned message text.
func organicFallback(result attribution.MatchResult) attribution.MatchResult {
	return attribution.MatchResult{
		MatchMethod:        store.MatchMethodOrganic,
		OriginLabel:        store.OriginLabelUntracked,
		OriginReason:       store.OriginReasonUntracked,
		CleanedMessageText: result.CleanedMessageText,
	}
}

func (p *InboundProcessor) buildConversation(lead store.Lead, msg InboundMessage, result attribution.MatchResult) store.Conversation {
	return store.Conversation{
		LeadID:                       lead.ID,
		ClickLogID:                   result.ClickLogID,
		MatchMethod:                  result.MatchMethod,
		MatchConfidence:              result.MatchConfidence,
		OriginLabel:                  result.OriginLabel,
		OriginReason:                 result.OriginReason,
		ClickToMessageLatencySeconds: result.ClickToMessageLatencySeconds,
		MessageText:                  result.CleanedMessageText,
		ReceivedAt:                   msg.ReceivedAt,
	}
}
