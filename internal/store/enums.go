package store

// MatchMethod identifies which attribution tier produced a match.
type MatchMethod string

const (
	MatchMethodZeroWidthExact MatchMethod = "ZERO_WIDTH_EXACT"
	MatchMethodTemporalWindow MatchMethod = "TEMPORAL_WINDOW"
	MatchMethodOrganic        MatchMethod = "ORGANIC"
)

// OriginLabel is the coarse marketing channel classification of a click.
type OriginLabel string

const (
	OriginLabelMetaAds   OriginLabel = "META_ADS"
	OriginLabelGoogleAds OriginLabel = "GOOGLE_ADS"
	OriginLabelSocial    OriginLabel = "SOCIAL"
	OriginLabelOther     OriginLabel = "OTHER"
	OriginLabelUntracked OriginLabel = "UNTRACKED"
)

// OriginReason records which classification rule produced the origin label.
type OriginReason string

const (
	OriginReasonGclid           OriginReason = "GCLID"
	OriginReasonFbclid          OriginReason = "FBCLID"
	OriginReasonFbc             OriginReason = "FBC"
	OriginReasonPlatform        OriginReason = "PLATFORM"
	OriginReasonUtmRegex        OriginReason = "UTM_REGEX"
	OriginReasonFallbackMatched OriginReason = "FALLBACK_MATCHED"
	OriginReasonUntracked       OriginReason = "UNTRACKED"
)

// Tracking link platform hints (user-declared channel)
const (
	PlatformMeta   = "meta"
	PlatformGoogle = "google"
	PlatformSocial = "social"
)

// WhatsApp session statuses
const (
	SessionStatusConnected    = "CONNECTED"
	SessionStatusPending      = "PENDING"
	SessionStatusDisconnected = "DISCONNECTED"
)
