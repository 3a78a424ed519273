package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatsapp-hub/internal/events"
	"whatsapp-hub/internal/inbound/processor"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/workers"
)

// MessageProcessor consumes message.received events and runs them through
// the attribution pipeline. It implements workers.EventProcessor; the
// pipeline is idempotent at the click level, so redelivered events at worst
// create an extra organic conversation row for the same message.
type MessageProcessor struct {
	inbound processor.InboundProcessor
	logger  *observability.Logger
}

func NewMessageProcessor(inbound processor.InboundProcessor, logger *observability.Logger) *MessageProcessor {
	return &MessageProcessor{
		inbound: inbound,
		logger:  logger,
	}
}

func (p *MessageProcessor) Name() string {
	return "inbound-messages"
}

func (p *MessageProcessor) Process(ctx context.Context, event workers.EventMessage) error {
	if event.Type != events.TypeMessageReceived {
		// Other event types on the topic are not ours to handle.
		return nil
	}

	msg, err := parseMessage(event)
	if err != nil {
		// Malformed events never become valid; log and commit.
		p.logger.Error(ctx, "skipping malformed message.received event", err)
		return nil
	}

	if _, err := p.inbound.ProcessMessage(ctx, msg); err != nil {
		if errors.Is(err, processor.ErrMissingLeadPhone) || errors.Is(err, processor.ErrEmptyMessageText) {
			// Redelivery cannot fill in the missing field; log and commit.
			p.logger.Info(ctx, "skipping inbound message: "+err.Error())
			return nil
		}
		return fmt.Errorf("failed to process inbound message: %w", err)
	}
	return nil
}

func parseMessage(event workers.EventMessage) (processor.InboundMessage, error) {
	leadPhone, ok := event.Data["lead_phone"].(string)
	if !ok || leadPhone == "" {
		return processor.InboundMessage{}, fmt.Errorf("event %s has no lead_phone", event.ID)
	}

	messageText, _ := event.Data["message_text"].(string)

	msg := processor.InboundMessage{
		LeadPhone:   leadPhone,
		MessageText: messageText,
		ReceivedAt:  time.Now().UTC(),
	}

	if number, ok := event.Data["whatsapp_number"].(string); ok && number != "" {
		msg.WhatsAppNumber = &number
	} else if event.WhatsAppNumber != "" {
		number := event.WhatsAppNumber
		msg.WhatsAppNumber = &number
	}

	if raw, ok := event.Data["received_at"].(string); ok {
		if receivedAt, err := time.Parse(time.RFC3339, raw); err == nil {
			msg.ReceivedAt = receivedAt
		}
	}

	return msg, nil
}
