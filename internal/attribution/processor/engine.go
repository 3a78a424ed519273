package processor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"whatsapp-hub/internal/config"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/shortid"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

// MatchResult is the attribution verdict for a single inbound message. It is
// computed fresh per message and folded into the persisted conversation by
// the caller.
type MatchResult struct {
	ClickLogID                   *uuid.UUID
	MatchMethod                  store.MatchMethod
	MatchConfidence              float64
	OriginLabel                  store.OriginLabel
	OriginReason                 store.OriginReason
	ClickToMessageLatencySeconds *int64
	CleanedMessageText           string
}

const (
	// candidateLimit bounds the temporal-window query.
	candidateLimit = 25

	confidenceExact    = 1.0
	confidenceTemporal = 0.70
	// A resolved collision scores higher than a lone candidate. Kept exactly
	// as the product defined it; see DESIGN.md before changing.
	confidenceTemporalCollision = 0.75
)

// Engine runs the attribution waterfall: exact embedded-id match first, then
// the temporal-window heuristic, then organic fallback.
type Engine struct {
	store       ClickStore
	windowHours int
	logger      *observability.Logger
}

// NewEngine creates an attribution engine. Non-positive window hours fall
// back to the default lookback window.
func NewEngine(clickStore ClickStore, windowHours int, logger *observability.Logger) *Engine {
	if windowHours <= 0 {
		windowHours = config.DefaultMatchWindowHours
	}
	return &Engine{
		store:       clickStore,
		windowHours: windowHours,
		logger:      logger,
	}
}

// Match attributes an inbound message to a prior tracked click.
// whatsappNumber is the receiving number and may be nil when the session is
// unknown; messageDate is the message timestamp. Store failures propagate;
// classification ambiguity never does.
func (e *Engine) Match(ctx context.Context, whatsappNumber *string, messageText string, messageDate time.Time) (MatchResult, error) {
	cleaned := strings.TrimSpace(shortid.Strip(messageText))

	result := MatchResult{
		MatchMethod:        store.MatchMethodOrganic,
		MatchConfidence:    0,
		OriginLabel:        store.OriginLabelUntracked,
		OriginReason:       store.OriginReasonUntracked,
		CleanedMessageText: cleaned,
	}

	// Tier 0: exact embedded short id.
	if shortID, ok := shortid.Decode(messageText); ok {
		ctx := observability.WithFields(ctx, observability.Field{Key: "short_id", Value: shortID})

		click, err := e.store.GetClickLogByShortID(ctx, shortID)
		switch {
		case err == nil:
			if click.ConversationCount == 0 {
				e.logger.Info(ctx, "attributed message by embedded short id")
				return e.bind(result, click, store.MatchMethodZeroWidthExact, confidenceExact, messageDate), nil
			}
			// Click already consumed; fall through to the next tier.
			e.logger.Info(ctx, "embedded short id points at a consumed click")
		case errors.Is(err, store.ErrNotFound):
			e.logger.Info(ctx, "embedded short id has no recorded click")
		default:
			return MatchResult{}, fmt.Errorf("failed to look up click by short id: %w", err)
		}
	}

	// Tier 1: temporal window. Without a known receiving number we skip the
	// tier entirely to avoid attributing across unrelated accounts.
	if whatsappNumber != nil && *whatsappNumber != "" {
		window := time.Duration(e.windowHours) * time.Hour
		candidates, err := e.store.ListCandidateClickLogs(ctx, *whatsappNumber, messageDate.Add(-window), messageDate, candidateLimit)
		if err != nil {
			return MatchResult{}, fmt.Errorf("failed to list candidate clicks: %w", err)
		}

		if len(candidates) > 0 {
			chosen := pickCandidate(candidates, cleaned, messageDate)

			confidence := confidenceTemporal
			if len(candidates) > 1 {
				confidence = confidenceTemporalCollision
			}

			ctx := observability.WithFields(ctx,
				observability.Field{Key: "candidate_count", Value: len(candidates)},
				observability.Field{Key: "click_log_id", Value: chosen.ID.String()},
			)
			e.logger.Info(ctx, "attributed message by temporal window")
			return e.bind(result, chosen, store.MatchMethodTemporalWindow, confidence, messageDate), nil
		}
	}

	return result, nil
}

// bind fills the match fields from a chosen click, classifying its origin
// and computing click-to-message latency.
func (e *Engine) bind(result MatchResult, click store.ClickLog, method store.MatchMethod, confidence float64, messageDate time.Time) MatchResult {
	clickID := click.ID
	result.ClickLogID = &clickID
	result.MatchMethod = method
	result.MatchConfidence = confidence
	result.OriginLabel, result.OriginReason = ClassifyOrigin(click)

	if diff := messageDate.Sub(click.CreatedAt); diff >= 0 {
		latency := int64(diff / time.Second)
		result.ClickToMessageLatencySeconds = &latency
	}

	return result
}

// pickCandidate disambiguates temporal-window candidates in two passes:
// a prefix-score pass against each link's pre-filled message, then a
// deterministic temporal tie-break among the surviving finalists.
func pickCandidate(candidates []store.ClickLog, cleanedMessage string, messageDate time.Time) store.ClickLog {
	msg := normText(cleanedMessage)

	bestScore := -1
	for _, c := range candidates {
		if s := scorePrefixMatch(msg, c.LinkPreFilledMessage); s > bestScore {
			bestScore = s
		}
	}

	finalists := candidates
	if bestScore > 0 {
		finalists = nil
		for _, c := range candidates {
			if scorePrefixMatch(msg, c.LinkPreFilledMessage) == bestScore {
				finalists = append(finalists, c)
			}
		}
	}

	if len(finalists) > 1 {
		sort.SliceStable(finalists, func(i, j int) bool {
			di := absDuration(finalists[i].CreatedAt.Sub(messageDate))
			dj := absDuration(finalists[j].CreatedAt.Sub(messageDate))
			if di != dj {
				return di < dj
			}
			return finalists[i].CreatedAt.After(finalists[j].CreatedAt)
		})
	}

	return finalists[0]
}

// scorePrefixMatch scores how well the inbound message's start matches a
// link's pre-filled message: full prefix 100, 10-char prefix 60, 6-char
// prefix 35, otherwise 0.
func scorePrefixMatch(message string, prefilled *string) int {
	if prefilled == nil {
		return 0
	}

	m := normText(message)
	p := normText(*prefilled)
	if p == "" {
		return 0
	}

	if strings.HasPrefix(m, p) {
		return 100
	}

	pRunes := []rune(p)
	if len(pRunes) > 10 {
		pRunes = pRunes[:10]
	}
	p10 := string(pRunes)
	if len([]rune(p10)) >= 4 && strings.HasPrefix(m, p10) {
		return 60
	}

	p6Runes := []rune(p)
	if len(p6Runes) > 6 {
		p6Runes = p6Runes[:6]
	}
	p6 := string(p6Runes)
	if len([]rune(p6)) >= 3 && strings.HasPrefix(m, p6) {
		return 35
	}

	return 0
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func normText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(s), " "))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
