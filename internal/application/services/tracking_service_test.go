package services

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		DefaultLevel:  slog.LevelError,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

func newTestTrackingService(t *testing.T) *TrackingService {
	t.Helper()
	svc := NewTrackingService(newTestLogger(t))
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 30, 45, 123_000_000, time.UTC)
	}
	return svc
}

func enabledConfig() *visitor.TrackingConfig {
	return &visitor.TrackingConfig{
		EnableVisitorTracking: true,
		CookieExpiryDays:      30,
		RequireCookieConsent:  false,
	}
}

func encodeVisitorCookie(t *testing.T, payload visitor.CookiePayload) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return url.QueryEscape(string(raw))
}

func TestApplyVisitorTrackingDisabled(t *testing.T) {
	svc := newTestTrackingService(t)
	store := state.NewVariableStore(nil)
	input := &visitor.Context{IP: "1.2.3.4"}

	config := &visitor.TrackingConfig{EnableVisitorTracking: false}
	result := svc.ApplyVisitorTracking(input, store, config, "/home")

	assert.Same(t, input, result, "disabled tracking must return the input unchanged")
	assert.Nil(t, result.Tracking)
}

func TestApplyVisitorTrackingConsentGate(t *testing.T) {
	svc := newTestTrackingService(t)
	config := enabledConfig()
	config.RequireCookieConsent = true
	input := &visitor.Context{IP: "1.2.3.4"}

	noConsent := state.NewVariableStore(nil)
	result := svc.ApplyVisitorTracking(input, noConsent, config, "/home")
	assert.Same(t, input, result)

	rejected := state.NewVariableStore(&state.Seed{Cookies: map[string]string{ConsentCookieName: "rejected"}})
	result = svc.ApplyVisitorTracking(input, rejected, config, "/home")
	assert.Same(t, input, result)

	accepted := state.NewVariableStore(&state.Seed{Cookies: map[string]string{ConsentCookieName: ConsentAccepted}})
	result = svc.ApplyVisitorTracking(input, accepted, config, "/home")
	require.NotNil(t, result.Tracking)
	assert.Nil(t, input.Tracking, "the input context must not be mutated")
}

func TestApplyVisitorTrackingFirstVisit(t *testing.T) {
	svc := newTestTrackingService(t)
	store := state.NewVariableStore(nil)

	result := svc.ApplyVisitorTracking(&visitor.Context{}, store, enabledConfig(), "/pricing?utm=x#plans")

	require.NotNil(t, result.Tracking)
	assert.True(t, result.Tracking.IsFirstVisit)
	assert.Equal(t, 1, result.Tracking.VisitCount)
	assert.Equal(t, "2026-08-29T12:30:45.123Z", result.Tracking.FirstVisitAt)
	assert.Equal(t, "/pricing", result.Tracking.LandingPage)
}

func TestApplyVisitorTrackingReturningVisit(t *testing.T) {
	svc := newTestTrackingService(t)
	store := state.NewVariableStore(&state.Seed{Cookies: map[string]string{
		VisitorCookieName: encodeVisitorCookie(t, visitor.CookiePayload{
			VisitCount:   3,
			FirstVisitAt: "2025-01-01T00:00:00.000Z",
			LandingPage:  "/landing",
		}),
	}})

	result := svc.ApplyVisitorTracking(&visitor.Context{}, store, enabledConfig(), "/other")

	require.NotNil(t, result.Tracking)
	assert.False(t, result.Tracking.IsFirstVisit)
	assert.Equal(t, 4, result.Tracking.VisitCount)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", result.Tracking.FirstVisitAt)
	assert.Equal(t, "/landing", result.Tracking.LandingPage, "landing page is fixed at first visit")
}

func TestApplyVisitorTrackingBackfillsEmptyCookieFields(t *testing.T) {
	svc := newTestTrackingService(t)
	store := state.NewVariableStore(&state.Seed{Cookies: map[string]string{
		VisitorCookieName: encodeVisitorCookie(t, visitor.CookiePayload{VisitCount: 2}),
	}})

	result := svc.ApplyVisitorTracking(&visitor.Context{}, store, enabledConfig(), "/pricing?ref=x")

	require.NotNil(t, result.Tracking)
	assert.False(t, result.Tracking.IsFirstVisit)
	assert.Equal(t, 3, result.Tracking.VisitCount)
	assert.Equal(t, "2026-08-29T12:30:45.123Z", result.Tracking.FirstVisitAt)
	assert.Equal(t, "/pricing", result.Tracking.LandingPage)
}

func TestApplyVisitorTrackingCorruptCookie(t *testing.T) {
	svc := newTestTrackingService(t)
	store := state.NewVariableStore(&state.Seed{Cookies: map[string]string{
		VisitorCookieName: "%7Bnot-json",
	}})

	result := svc.ApplyVisitorTracking(&visitor.Context{}, store, enabledConfig(), "/home")

	require.NotNil(t, result.Tracking)
	assert.True(t, result.Tracking.IsFirstVisit, "an unreadable cookie restarts visit history")
	assert.Equal(t, 1, result.Tracking.VisitCount)
}

func TestShouldSetTrackingCookie(t *testing.T) {
	svc := newTestTrackingService(t)

	assert.False(t, svc.ShouldSetTrackingCookie(state.NewVariableStore(nil), nil))
	assert.False(t, svc.ShouldSetTrackingCookie(state.NewVariableStore(nil), &visitor.TrackingConfig{}))
	assert.True(t, svc.ShouldSetTrackingCookie(state.NewVariableStore(nil), enabledConfig()))

	config := enabledConfig()
	config.RequireCookieConsent = true
	assert.False(t, svc.ShouldSetTrackingCookie(state.NewVariableStore(nil), config))
}

func TestBuildTrackingCookie(t *testing.T) {
	svc := newTestTrackingService(t)
	tracking := &visitor.Tracking{
		IsFirstVisit: true,
		VisitCount:   2,
		FirstVisitAt: "2025-01-01T00:00:00.000Z",
		LandingPage:  "/landing",
	}

	header := svc.BuildTrackingCookie(tracking, enabledConfig())

	require.True(t, strings.HasPrefix(header, VisitorCookieName+"="))
	assert.Contains(t, header, "Max-Age=2592000")
	assert.Contains(t, header, "Path=/")
	assert.Contains(t, header, "SameSite=Lax")

	rawValue := strings.TrimPrefix(strings.SplitN(header, ";", 2)[0], VisitorCookieName+"=")
	decoded, err := url.QueryUnescape(rawValue)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(decoded), &payload))
	assert.Equal(t, float64(2), payload["visitCount"])
	assert.Equal(t, "/landing", payload["landingPage"])
	assert.NotContains(t, payload, "isFirstVisit", "per-request flag must never be persisted")
}

func TestBuildTrackingCookieDefaultExpiry(t *testing.T) {
	svc := newTestTrackingService(t)
	header := svc.BuildTrackingCookie(&visitor.Tracking{VisitCount: 1}, &visitor.TrackingConfig{EnableVisitorTracking: true})

	assert.Contains(t, header, "Max-Age=31536000")
}

func TestLandingPagePath(t *testing.T) {
	assert.Equal(t, "/", landingPagePath(""))
	assert.Equal(t, "/a", landingPagePath("/a?b=c"))
	assert.Equal(t, "/a", landingPagePath("/a#frag"))
	assert.Equal(t, "/a/b", landingPagePath("https://example.com/a/b?x=1"))
}
