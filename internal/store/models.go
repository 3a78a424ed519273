package store

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard user account.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TrackingLink is a campaign link definition. Visitors hitting its slug are
// redirected to WhatsApp with the pre-filled message.
type TrackingLink struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	Slug             string     `db:"slug" json:"slug"`
	Name             string     `db:"name" json:"name"`
	Platform         *string    `db:"platform" json:"platform,omitempty"`
	WhatsAppNumber   *string    `db:"whatsapp_number" json:"whatsapp_number,omitempty"`
	DestinationURL   *string    `db:"destination_url" json:"destination_url,omitempty"`
	PreFilledMessage *string    `db:"pre_filled_message" json:"pre_filled_message,omitempty"`
	ArchivedAt       *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// ClickLog records a single visit to a tracking link with its attribution
// signals. Rows returned by short-id lookup and candidate queries carry the
// joined tracking-link fields and the number of conversations already bound
// to the click.
type ClickLog struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ShortID        string    `db:"short_id" json:"short_id"`
	TrackingLinkID uuid.UUID `db:"tracking_link_id" json:"tracking_link_id"`
	Gclid          *string   `db:"gclid" json:"gclid,omitempty"`
	Fbclid         *string   `db:"fbclid" json:"fbclid,omitempty"`
	Fbc            *string   `db:"fbc" json:"fbc,omitempty"`
	UtmSource      *string   `db:"utm_source" json:"utm_source,omitempty"`
	UtmMedium      *string   `db:"utm_medium" json:"utm_medium,omitempty"`
	UtmCampaign    *string   `db:"utm_campaign" json:"utm_campaign,omitempty"`
	UtmTerm        *string   `db:"utm_term" json:"utm_term,omitempty"`
	UtmContent     *string   `db:"utm_content" json:"utm_content,omitempty"`
	IPAddress      *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent      *string   `db:"user_agent" json:"user_agent,omitempty"`
	DeviceType     *string   `db:"device_type" json:"device_type,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Joined tracking-link fields
	LinkPlatform         *string `db:"link_platform" json:"-"`
	LinkPreFilledMessage *string `db:"link_pre_filled_message" json:"-"`
	LinkWhatsAppNumber   *string `db:"link_whatsapp_number" json:"-"`

	// Number of conversations already matched to this click. A click with
	// one or more conversations is consumed and ineligible for matching.
	ConversationCount int `db:"conversation_count" json:"-"`
}

// Lead is a WhatsApp contact that has messaged one of the tracked numbers.
type Lead struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Phone       string    `db:"phone" json:"phone"`
	FirstSeenAt time.Time `db:"first_seen_at" json:"first_seen_at"`
	LastSeenAt  time.Time `db:"last_seen_at" json:"last_seen_at"`
}

// Conversation is an inbound message thread bound to a lead, carrying the
// attribution verdict for its first message.
type Conversation struct {
	ID                           uuid.UUID    `db:"id" json:"id"`
	LeadID                       uuid.UUID    `db:"lead_id" json:"lead_id"`
	ClickLogID                   *uuid.UUID   `db:"click_log_id" json:"click_log_id,omitempty"`
	MatchMethod                  MatchMethod  `db:"match_method" json:"match_method"`
	MatchConfidence              float64      `db:"match_confidence" json:"match_confidence"`
	OriginLabel                  OriginLabel  `db:"origin_label" json:"origin_label"`
	OriginReason                 OriginReason `db:"origin_reason" json:"origin_reason"`
	ClickToMessageLatencySeconds *int64       `db:"click_to_message_latency_seconds" json:"click_to_message_latency_seconds,omitempty"`
	MessageText                  string       `db:"message_text" json:"message_text"`
	ReceivedAt                   time.Time    `db:"received_at" json:"received_at"`
	CreatedAt                    time.Time    `db:"created_at" json:"created_at"`
}

// WhatsAppSession tracks the transport connection state per user.
type WhatsAppSession struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	Status     string     `db:"status" json:"status"`
	LastPingAt *time.Time `db:"last_ping_at" json:"last_ping_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
