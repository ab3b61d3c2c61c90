package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
)

const (
	// ConsentCookieName is the cookie a site sets once the visitor accepts tracking.
	ConsentCookieName = "fb_consent"
	// ConsentAccepted is the only consent value that enables tracking.
	ConsentAccepted = "accepted"
	// VisitorCookieName stores the URL-encoded JSON tracking payload.
	VisitorCookieName = "fb_visitor"

	trackingTimeFormat = "2006-01-02T15:04:05.000Z"
)

// TrackingService computes returning-visitor tracking data from the visitor
// cookie and builds the refreshed cookie to send back.
type TrackingService struct {
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewTrackingService creates the tracking service singleton.
func NewTrackingService(logger *logging.ChanneledLogger) *TrackingService {
	return &TrackingService{logger: logger, now: time.Now}
}

// ApplyVisitorTracking returns a visitor context enriched with tracking data,
// or the input unchanged when tracking is disabled or not consented.
//
// Each qualifying call counts as one visit, so call it at most once per
// request. The input context is never mutated; enrichment returns a copy.
func (s *TrackingService) ApplyVisitorTracking(visitorCtx *visitor.Context, store *state.VariableStore, config *visitor.TrackingConfig, requestURL string) *visitor.Context {
	if visitorCtx == nil || !s.trackingAllowed(store, config) {
		return visitorCtx
	}

	enriched := *visitorCtx
	enriched.Tracking = s.computeTracking(store, requestURL)
	return &enriched
}

// ShouldSetTrackingCookie reports whether the response should carry a
// refreshed visitor cookie. It applies the same gate as ApplyVisitorTracking.
func (s *TrackingService) ShouldSetTrackingCookie(store *state.VariableStore, config *visitor.TrackingConfig) bool {
	return s.trackingAllowed(store, config)
}

// BuildTrackingCookie serializes tracking data into a Set-Cookie header value.
// The per-request IsFirstVisit flag is not persisted.
func (s *TrackingService) BuildTrackingCookie(tracking *visitor.Tracking, config *visitor.TrackingConfig) string {
	payload := visitor.CookiePayload{
		VisitCount:   tracking.VisitCount,
		FirstVisitAt: tracking.FirstVisitAt,
		LandingPage:  tracking.LandingPage,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		s.logger.Tracking().Error("Failed to marshal visitor cookie payload", "error", err)
		return ""
	}

	expiryDays := config.CookieExpiryDays
	if expiryDays <= 0 {
		expiryDays = 365
	}
	maxAge := expiryDays * 86400

	return fmt.Sprintf("%s=%s; Max-Age=%d; Path=/; SameSite=Lax", VisitorCookieName, url.QueryEscape(string(encoded)), maxAge)
}

// trackingAllowed is the shared gate: tracking must be enabled and, when
// consent is required, the consent cookie must hold the accepted value.
func (s *TrackingService) trackingAllowed(store *state.VariableStore, config *visitor.TrackingConfig) bool {
	if config == nil || !config.EnableVisitorTracking {
		return false
	}
	if config.RequireCookieConsent {
		consent, ok := store.GetCookie(ConsentCookieName)
		if !ok || consent != ConsentAccepted {
			return false
		}
	}
	return true
}

// computeTracking reads the visitor cookie and produces the tracking block
// for this request. A missing or unreadable cookie means a first visit.
func (s *TrackingService) computeTracking(store *state.VariableStore, requestURL string) *visitor.Tracking {
	nowStamp := s.now().UTC().Format(trackingTimeFormat)

	raw, ok := store.GetCookie(VisitorCookieName)
	if !ok {
		return &visitor.Tracking{
			IsFirstVisit: true,
			VisitCount:   1,
			FirstVisitAt: nowStamp,
			LandingPage:  landingPagePath(requestURL),
		}
	}

	payload, err := parseVisitorCookie(raw)
	if err != nil {
		s.logger.Tracking().Warn("Unreadable visitor cookie, restarting visit history", "error", err)
		return &visitor.Tracking{
			IsFirstVisit: true,
			VisitCount:   1,
			FirstVisitAt: nowStamp,
			LandingPage:  landingPagePath(requestURL),
		}
	}

	firstVisitAt := payload.FirstVisitAt
	if firstVisitAt == "" {
		firstVisitAt = nowStamp
	}
	landingPage := payload.LandingPage
	if landingPage == "" {
		landingPage = landingPagePath(requestURL)
	}

	return &visitor.Tracking{
		IsFirstVisit: false,
		VisitCount:   payload.VisitCount + 1,
		FirstVisitAt: firstVisitAt,
		LandingPage:  landingPage,
	}
}

func parseVisitorCookie(raw string) (*visitor.CookiePayload, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode visitor cookie: %w", err)
	}

	var payload visitor.CookiePayload
	if err := json.Unmarshal([]byte(decoded), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse visitor cookie: %w", err)
	}
	if payload.VisitCount < 1 {
		return nil, fmt.Errorf("visitor cookie has invalid visit count %d", payload.VisitCount)
	}
	return &payload, nil
}

// landingPagePath reduces a request URL to its path, dropping query and fragment.
func landingPagePath(requestURL string) string {
	if requestURL == "" {
		return "/"
	}
	parsed, err := url.Parse(requestURL)
	if err != nil {
		if idx := strings.IndexAny(requestURL, "?#"); idx >= 0 {
			requestURL = requestURL[:idx]
		}
		return requestURL
	}
	if parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}
