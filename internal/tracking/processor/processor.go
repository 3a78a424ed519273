package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/shortid"
	"whatsapp-hub/internal/store"
)

var (
	ErrLinkNotFound  = errors.New("tracking link not found")
	ErrNoDestination = errors.New("tracking link has no whatsapp destination")
)

// defaultMessage is used when a link has no pre-filled message. The embedded
// id still needs a visible character to hide behind.
const defaultMessage = "Olá!"

const shortIDAttempts = 3

var nonDigits = regexp.MustCompile(`\D`)

// ClickParams carries everything captured from an inbound tracked click.
type ClickParams struct {
	Slug        string
	Gclid       *string
	Fbclid      *string
	UtmSource   *string
	UtmMedium   *string
	UtmCampaign *string
	UtmTerm     *string
	UtmContent  *string
	IPAddress   *string
	UserAgent   *string
	DeviceType  *string
}

// RedirectResult is the outcome of resolving a tracked click.
type RedirectResult struct {
	RedirectURL   string
	ShortID       string
	ClickRecorded bool
}

type TrackingProcessor struct {
	store  TrackingStore
	logger *observability.Logger
}

func New(trackingStore TrackingStore, logger *observability.Logger) TrackingProcessor {
	return TrackingProcessor{
		store:  trackingStore,
		logger: logger,
	}
}

// ResolveClick records a click against the slug's tracking link and builds
// the WhatsApp redirect URL with the short id embedded in the pre-filled
// message. Click persistence is best-effort: if the insert ultimately fails
// the visitor is still redirected, just without the embedded id, and
// attribution falls back to the temporal tiers.
func (p *TrackingProcessor) ResolveClick(ctx context.Context, params ClickParams) (RedirectResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "slug", Value: params.Slug})

	link, err := p.store.GetActiveTrackingLinkBySlug(ctx, params.Slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RedirectResult{}, ErrLinkNotFound
		}
		return RedirectResult{}, fmt.Errorf("failed to resolve tracking link: %w", err)
	}

	var fbc *string
	if params.Fbclid != nil && *params.Fbclid != "" {
		derived := fmt.Sprintf("fb.1.%d.%s", time.Now().UnixMilli(), *params.Fbclid)
		fbc = &derived
	}

	shortID, recorded := p.recordClick(ctx, link, params, fbc)

	baseMessage := defaultMessage
	if link.PreFilledMessage != nil && strings.TrimSpace(*link.PreFilledMessage) != "" {
		baseMessage = strings.TrimSpace(*link.PreFilledMessage)
	}

	message := baseMessage
	if recorded {
		tagged, err := shortid.Inject(baseMessage, shortID)
		if err != nil {
			// Generated ids always encode; treat a failure like an unrecorded click.
			p.logger.Error(ctx, "failed to embed short id in message", err)
			recorded = false
		} else {
			message = tagged
		}
	}

	redirectURL, err := p.buildRedirectURL(link, message)
	if err != nil {
		return RedirectResult{}, err
	}

	result := RedirectResult{
		RedirectURL:   redirectURL,
		ClickRecorded: recorded,
	}
	if recorded {
		result.ShortID = shortID
	}
	return result, nil
}

// recordClick persists the click log, regenerating the short id on the rare
// unique-constraint collision. Returns the short id and whether the click
// made it to the database.
func (p *TrackingProcessor) recordClick(ctx context.Context, link store.TrackingLink, params ClickParams, fbc *string) (string, bool) {
	shortID, err := shortid.Generate(shortid.DefaultLength)
	if err != nil {
		p.logger.Error(ctx, "failed to generate short id", err)
		return "", false
	}

	for attempt := 1; attempt <= shortIDAttempts; attempt++ {
		_, err := p.store.CreateClickLog(ctx, store.CreateClickLogParams{
			ShortID:        shortID,
			TrackingLinkID: link.ID,
			Gclid:          params.Gclid,
			Fbclid:         params.Fbclid,
			Fbc:            fbc,
			UtmSource:      params.UtmSource,
			UtmMedium:      params.UtmMedium,
			UtmCampaign:    params.UtmCampaign,
			UtmTerm:        params.UtmTerm,
			UtmContent:     params.UtmContent,
			IPAddress:      params.IPAddress,
			UserAgent:      params.UserAgent,
			DeviceType:     params.DeviceType,
		})
		if err == nil {
			return shortID, true
		}

		if errors.Is(err, store.ErrDuplicateShortID) && attempt < shortIDAttempts {
			shortID, err = shortid.Generate(shortid.DefaultLength)
			if err != nil {
				p.logger.Error(ctx, "failed to regenerate short id", err)
				return "", false
			}
			continue
		}

		p.logger.Error(ctx, "failed to record click log", err)
		return "", false
	}

	return "", false
}

// buildRedirectURL prefers the link's WhatsApp number over the legacy
// destination URL. Existing query params on the destination are dropped so
// UTMs and click ids never leak into WhatsApp; only `text` is set.
func (p *TrackingProcessor) buildRedirectURL(link store.TrackingLink, message string) (string, error) {
	if link.WhatsAppNumber != nil && strings.TrimSpace(*link.WhatsAppNumber) != "" {
		number := nonDigits.ReplaceAllString(*link.WhatsAppNumber, "")
		u := url.URL{Scheme: "https", Host: "wa.me", Path: "/" + number}
		if message != "" {
			q := url.Values{}
			q.Set("text", message)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if link.DestinationURL != nil && strings.TrimSpace(*link.DestinationURL) != "" {
		base, err := url.Parse(strings.TrimSpace(*link.DestinationURL))
		if err != nil {
			return "", fmt.Errorf("failed to parse destination url: %w", err)
		}
		clean := url.URL{Scheme: base.Scheme, Host: base.Host, Path: base.Path}
		if message != "" {
			q := url.Values{}
			q.Set("text", message)
			clean.RawQuery = q.Encode()
		}
		return clean.String(), nil
	}

	return "", ErrNoDestination
}
