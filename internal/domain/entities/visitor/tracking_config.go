package visitor

// TrackingConfig holds the project-level visitor tracking settings supplied by
// the project settings store.
type TrackingConfig struct {
	EnableVisitorTracking bool                      `json:"enableVisitorTracking"`
	CookieExpiryDays      int                       `json:"cookieExpiryDays"`
	RequireCookieConsent  bool                      `json:"requireCookieConsent"`
	AdvancedVariables     map[string]VariableToggle `json:"advancedVariables,omitempty"`
}

// VariableToggle controls whether a single visitor field is collected and
// whether pages may read it through the variable store.
type VariableToggle struct {
	Collect bool `json:"collect"`
	Expose  bool `json:"expose"`
}

// DefaultTrackingConfig returns the fallback settings used until project
// settings have loaded: tracking disabled, one-year cookie expiry, consent
// required.
func DefaultTrackingConfig() *TrackingConfig {
	return &TrackingConfig{
		EnableVisitorTracking: false,
		CookieExpiryDays:      365,
		RequireCookieConsent:  true,
	}
}
