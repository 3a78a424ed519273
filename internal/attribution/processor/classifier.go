package processor

import (
	"regexp"
	"strings"

	"whatsapp-hub/internal/store"
)

var (
	paidMediumPattern   = regexp.MustCompile(`(cpc|ads|pago|paid)`)
	metaSourcePattern   = regexp.MustCompile(`(face|fb|insta|instagram|meta)`)
	googleSourcePattern = regexp.MustCompile(`(google|youtube)`)
	socialMediumPattern = regexp.MustCompile(`(social|bio|story|stories)`)
	socialSourcePattern = regexp.MustCompile(`(tiktok|linkedin|instagram|ig)`)
)

// ClassifyOrigin maps a click's attribution signals to a marketing origin.
// Rules are evaluated in order; the first match wins:
//
//  1. Ad-platform click ids (gclid, fbclid, fbc) are incontestable.
//  2. The link's declared platform.
//  3. Paid UTM patterns (medium looks paid, source names the network).
//  4. Organic social UTM patterns.
//  5. Any other UTM data at all.
//  6. Untracked.
func ClassifyOrigin(click store.ClickLog) (store.OriginLabel, store.OriginReason) {
	if hasValue(click.Gclid) {
		return store.OriginLabelGoogleAds, store.OriginReasonGclid
	}
	if hasValue(click.Fbclid) {
		return store.OriginLabelMetaAds, store.OriginReasonFbclid
	}
	if hasValue(click.Fbc) {
		return store.OriginLabelMetaAds, store.OriginReasonFbc
	}

	switch normalize(click.LinkPlatform) {
	case store.PlatformMeta:
		return store.OriginLabelMetaAds, store.OriginReasonPlatform
	case store.PlatformGoogle:
		return store.OriginLabelGoogleAds, store.OriginReasonPlatform
	case store.PlatformSocial:
		return store.OriginLabelSocial, store.OriginReasonPlatform
	}

	src := normalize(click.UtmSource)
	med := normalize(click.UtmMedium)
	isPaid := paidMediumPattern.MatchString(med)

	if isPaid && metaSourcePattern.MatchString(src) {
		return store.OriginLabelMetaAds, store.OriginReasonUtmRegex
	}
	if isPaid && googleSourcePattern.MatchString(src) {
		return store.OriginLabelGoogleAds, store.OriginReasonUtmRegex
	}

	looksSocial := socialMediumPattern.MatchString(med) || socialSourcePattern.MatchString(src)
	if looksSocial && !isPaid {
		return store.OriginLabelSocial, store.OriginReasonUtmRegex
	}

	hasAnyUtm := hasValue(click.UtmSource) || hasValue(click.UtmMedium) ||
		hasValue(click.UtmCampaign) || hasValue(click.UtmTerm) || hasValue(click.UtmContent)
	if hasAnyUtm {
		return store.OriginLabelOther, store.OriginReasonFallbackMatched
	}

	return store.OriginLabelUntracked, store.OriginReasonUntracked
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}

func normalize(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}
