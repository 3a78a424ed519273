package events

import (
	"context"
	"time"

	"whatsapp-hub/internal/clients/kafka"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

// Event types flowing through the hub.
const (
	TypeMessageReceived     = "message.received"
	TypeConversationMatched = "conversation.matched"
)

// Publisher handles publishing domain events to Kafka. Inbound messages and
// attribution verdicts flow on separate topics: the former feeds the worker,
// the latter feeds downstream consumers.
type Publisher struct {
	kafkaProducer *kafka.Producer
	messagesTopic string
	eventsTopic   string
	logger        *observability.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(kafkaProducer *kafka.Producer, messagesTopic, eventsTopic string, logger *observability.Logger) *Publisher {
	return &Publisher{
		kafkaProducer: kafkaProducer,
		messagesTopic: messagesTopic,
		eventsTopic:   eventsTopic,
		logger:        logger,
	}
}

// PublishMessageReceived publishes a message.received event for the
// attribution pipeline to consume.
func (p *Publisher) PublishMessageReceived(ctx context.Context, whatsappNumber, leadPhone, messageText string, receivedAt time.Time) error {
	event := kafka.EventMessage{
		ID:             uuid.New().String(),
		Type:           TypeMessageReceived,
		WhatsAppNumber: whatsappNumber,
		Data: map[string]interface{}{
			"whatsapp_number": whatsappNumber,
			"lead_phone":      leadPhone,
			"message_text":    messageText,
			"received_at":     receivedAt.UTC().Format(time.RFC3339),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return p.kafkaProducer.PublishEvent(ctx, p.messagesTopic, event)
}

// PublishConversationMatched publishes a conversation.matched event carrying
// the attribution verdict for downstream consumers (CRM sync, dashboards).
func (p *Publisher) PublishConversationMatched(ctx context.Context, conversation store.Conversation, whatsappNumber string) error {
	data := map[string]interface{}{
		"conversation_id":  conversation.ID.String(),
		"lead_id":          conversation.LeadID.String(),
		"match_method":     string(conversation.MatchMethod),
		"match_confidence": conversation.MatchConfidence,
		"origin_label":     string(conversation.OriginLabel),
		"origin_reason":    string(conversation.OriginReason),
		"received_at":      conversation.ReceivedAt.UTC().Format(time.RFC3339),
	}
	if conversation.ClickLogID != nil {
		data["click_log_id"] = conversation.ClickLogID.String()
	}
	if conversation.ClickToMessageLatencySeconds != nil {
		data["click_to_message_latency_seconds"] = *conversation.ClickToMessageLatencySeconds
	}

	event := kafka.EventMessage{
		ID:             uuid.New().String(),
		Type:           TypeConversationMatched,
		WhatsAppNumber: whatsappNumber,
		Data:           data,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	return p.kafkaProducer.PublishEvent(ctx, p.eventsTopic, event)
}
