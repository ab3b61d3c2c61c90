package services

import (
	"strings"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// VisitorService builds the per-request visitor context from request headers.
type VisitorService struct {
	logger *logging.ChanneledLogger
}

// NewVisitorService creates the visitor service singleton.
func NewVisitorService(logger *logging.ChanneledLogger) *VisitorService {
	return &VisitorService{logger: logger}
}

// BuildContext derives the base visitor context for one request. Geo fields
// come from CDN headers when present and are empty otherwise.
func (s *VisitorService) BuildContext(c *gin.Context) *visitor.Context {
	userAgent := c.GetHeader("User-Agent")

	return &visitor.Context{
		IP:       c.ClientIP(),
		Country:  firstHeader(c, "CF-IPCountry", "CloudFront-Viewer-Country", "X-Geo-Country"),
		City:     firstHeader(c, "CloudFront-Viewer-City", "X-Geo-City"),
		Timezone: firstHeader(c, "CloudFront-Viewer-Time-Zone", "X-Geo-Timezone"),
		Device:   deviceFromUserAgent(userAgent),
		Browser:  browserFromUserAgent(userAgent),
		OS:       osFromUserAgent(userAgent),
		Language: primaryLanguage(c.GetHeader("Accept-Language")),
		Referrer: c.GetHeader("Referer"),
		IsBot:    isBotUserAgent(userAgent),
	}
}

// ApplyFieldToggles blanks visitor fields whose per-field toggle disables
// collection or exposure. Fields without a toggle stay as built.
func (s *VisitorService) ApplyFieldToggles(visitorCtx *visitor.Context, config *visitor.TrackingConfig) *visitor.Context {
	if visitorCtx == nil || config == nil || len(config.AdvancedVariables) == 0 {
		return visitorCtx
	}

	filtered := *visitorCtx
	fields := map[string]*string{
		"ip":       &filtered.IP,
		"country":  &filtered.Country,
		"city":     &filtered.City,
		"timezone": &filtered.Timezone,
		"device":   &filtered.Device,
		"browser":  &filtered.Browser,
		"os":       &filtered.OS,
		"language": &filtered.Language,
		"referrer": &filtered.Referrer,
	}

	for name, toggle := range config.AdvancedVariables {
		if field, known := fields[name]; known && (!toggle.Collect || !toggle.Expose) {
			*field = ""
		}
	}
	return &filtered
}

func firstHeader(c *gin.Context, names ...string) string {
	for _, name := range names {
		if value := c.GetHeader(name); value != "" {
			return value
		}
	}
	return ""
}

// primaryLanguage picks the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := header
	if idx := strings.Index(first, ","); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.Index(first, ";"); idx >= 0 {
		first = first[:idx]
	}
	return strings.TrimSpace(first)
}

func deviceFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return "mobile"
	case ua == "":
		return "unknown"
	default:
		return "desktop"
	}
}

func browserFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome/"):
		return "Chrome"
	case strings.Contains(ua, "safari/") && strings.Contains(ua, "version/"):
		return "Safari"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	case ua == "":
		return "unknown"
	default:
		return "other"
	}
}

func osFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "iOS"
	case strings.Contains(ua, "mac os"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	case ua == "":
		return "unknown"
	default:
		return "other"
	}
}

var botMarkers = []string{"bot", "crawler", "spider", "slurp", "curl/", "wget/", "headless"}

func isBotUserAgent(userAgent string) bool {
	if userAgent == "" {
		return true
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
