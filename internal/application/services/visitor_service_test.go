package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorTestContext(t *testing.T, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	req, err := http.NewRequest(http.MethodGet, "/home", nil)
	require.NoError(t, err)
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	c.Request = req
	return c
}

func TestBuildContextHeaders(t *testing.T) {
	svc := NewVisitorService(newTestLogger(t))
	c := visitorTestContext(t, map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
		"CF-IPCountry":    "CA",
		"Accept-Language": "en-CA,en;q=0.9,fr;q=0.8",
		"Referer":         "https://example.com/prev",
	})

	visitorCtx := svc.BuildContext(c)

	assert.Equal(t, "CA", visitorCtx.Country)
	assert.Equal(t, "desktop", visitorCtx.Device)
	assert.Equal(t, "Chrome", visitorCtx.Browser)
	assert.Equal(t, "Windows", visitorCtx.OS)
	assert.Equal(t, "en-CA", visitorCtx.Language)
	assert.Equal(t, "https://example.com/prev", visitorCtx.Referrer)
	assert.False(t, visitorCtx.IsBot)
	assert.Nil(t, visitorCtx.Tracking, "tracking is attached separately")
}

func TestBuildContextMobile(t *testing.T) {
	svc := NewVisitorService(newTestLogger(t))
	c := visitorTestContext(t, map[string]string{
		"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1",
	})

	visitorCtx := svc.BuildContext(c)

	assert.Equal(t, "mobile", visitorCtx.Device)
	assert.Equal(t, "Safari", visitorCtx.Browser)
	assert.Equal(t, "iOS", visitorCtx.OS)
}

func TestBuildContextBot(t *testing.T) {
	svc := NewVisitorService(newTestLogger(t))

	crawler := svc.BuildContext(visitorTestContext(t, map[string]string{
		"User-Agent": "Googlebot/2.1 (+http://www.google.com/bot.html)",
	}))
	assert.True(t, crawler.IsBot)

	// An empty user agent is treated as a bot.
	empty := svc.BuildContext(visitorTestContext(t, nil))
	assert.True(t, empty.IsBot)
	assert.Equal(t, "unknown", empty.Device)
}

func TestApplyFieldToggles(t *testing.T) {
	svc := NewVisitorService(newTestLogger(t))
	built := &visitor.Context{IP: "1.2.3.4", Country: "CA", Browser: "Chrome"}

	config := &visitor.TrackingConfig{AdvancedVariables: map[string]visitor.VariableToggle{
		"ip":      {Collect: false, Expose: false},
		"country": {Collect: true, Expose: false},
		"browser": {Collect: true, Expose: true},
	}}

	filtered := svc.ApplyFieldToggles(built, config)

	assert.Empty(t, filtered.IP)
	assert.Empty(t, filtered.Country)
	assert.Equal(t, "Chrome", filtered.Browser)
	assert.Equal(t, "1.2.3.4", built.IP, "the input context must not be mutated")

	// No toggles means no filtering.
	assert.Same(t, built, svc.ApplyFieldToggles(built, &visitor.TrackingConfig{}))
}

func TestPrimaryLanguage(t *testing.T) {
	assert.Equal(t, "", primaryLanguage(""))
	assert.Equal(t, "en-US", primaryLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "fr", primaryLanguage("fr;q=0.8"))
	assert.Equal(t, "de", primaryLanguage(" de , en"))
}
