// Package visitor defines the per-request visitor context and the tracking
// records persisted through the visitor cookie.
package visitor

// Context describes one visitor for a single request. The base fields are
// always present and are built from the request before rendering; the
// Tracking block is attached only when visitor tracking is enabled and, where
// required, consented.
type Context struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
	Device   string `json:"device"`
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	Language string `json:"language"`
	Referrer string `json:"referrer"`
	IsBot    bool   `json:"isBot"`

	Tracking *Tracking `json:"tracking,omitempty"`
}

// Tracking holds the returning-visitor fields computed per qualifying request.
type Tracking struct {
	IsFirstVisit bool   `json:"isFirstVisit"`
	VisitCount   int    `json:"visitCount"`
	FirstVisitAt string `json:"firstVisitAt"`
	LandingPage  string `json:"landingPage"`
}

// CookiePayload is the subset of Tracking persisted in the visitor cookie.
// IsFirstVisit is a per-request signal and is deliberately never stored.
type CookiePayload struct {
	VisitCount   int    `json:"visitCount"`
	FirstVisitAt string `json:"firstVisitAt"`
	LandingPage  string `json:"landingPage"`
}
