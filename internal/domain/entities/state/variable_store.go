// Package state provides the per-request variable scopes used when rendering
// published pages. A store owns three independent namespaces (page, session,
// cookie) and resolves template expressions against them with a fixed
// precedence order.
package state

import (
	"strings"
	"time"
)

const (
	pagePrefix    = "page."
	sessionPrefix = "session."
	cookiePrefix  = "cookie."
)

// CookieOptions captures the Set-Cookie attributes recorded alongside a cookie
// value. The store never writes response headers itself; the render layer reads
// these back when emitting Set-Cookie.
type CookieOptions struct {
	MaxAge   int        `json:"maxAge,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	HTTPOnly bool       `json:"httpOnly,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	SameSite string     `json:"sameSite,omitempty"`
	Path     string     `json:"path,omitempty"`
}

// Seed supplies initial scope state for a new store.
type Seed struct {
	PageVariables    map[string]any
	SessionVariables map[string]any
	Cookies          map[string]string
}

// VariableStore holds page, session, and cookie scope state for a single
// request. It is owned exclusively by the request that created it and performs
// no I/O; absence of data is reported through the ok return, never an error.
type VariableStore struct {
	pageVariables    map[string]any
	sessionVariables map[string]any
	cookies          map[string]string
	cookieOptions    map[string]CookieOptions
}

// NewVariableStore creates a store, optionally seeded with initial state.
// A nil seed yields three empty scopes. Seed maps are copied, not aliased.
func NewVariableStore(seed *Seed) *VariableStore {
	vs := &VariableStore{
		pageVariables:    make(map[string]any),
		sessionVariables: make(map[string]any),
		cookies:          make(map[string]string),
		cookieOptions:    make(map[string]CookieOptions),
	}
	if seed != nil {
		for k, v := range seed.PageVariables {
			vs.pageVariables[k] = v
		}
		for k, v := range seed.SessionVariables {
			vs.sessionVariables[k] = v
		}
		for k, v := range seed.Cookies {
			vs.cookies[k] = v
		}
	}
	return vs
}

// GetPageVariable returns the page-scope value for key.
func (vs *VariableStore) GetPageVariable(key string) (any, bool) {
	value, ok := vs.pageVariables[key]
	return value, ok
}

// SetPageVariable sets a page-scope value.
func (vs *VariableStore) SetPageVariable(key string, value any) {
	vs.pageVariables[key] = value
}

// GetPageVariables returns a snapshot copy of the page scope.
func (vs *VariableStore) GetPageVariables() map[string]any {
	return copyAnyMap(vs.pageVariables)
}

// GetSessionVariable returns the session-scope value for key.
func (vs *VariableStore) GetSessionVariable(key string) (any, bool) {
	value, ok := vs.sessionVariables[key]
	return value, ok
}

// SetSessionVariable sets a session-scope value.
func (vs *VariableStore) SetSessionVariable(key string, value any) {
	vs.sessionVariables[key] = value
}

// GetSessionVariables returns a snapshot copy of the session scope.
func (vs *VariableStore) GetSessionVariables() map[string]any {
	return copyAnyMap(vs.sessionVariables)
}

// ClearSessionVariables removes every session-scope key in place. The internal
// map identity is preserved; snapshots handed out earlier are unaffected.
func (vs *VariableStore) ClearSessionVariables() {
	for key := range vs.sessionVariables {
		delete(vs.sessionVariables, key)
	}
}

// GetCookie returns the cookie value for name.
func (vs *VariableStore) GetCookie(name string) (string, bool) {
	value, ok := vs.cookies[name]
	return value, ok
}

// SetCookie records a cookie value and, when options are supplied, the
// attributes to emit with it. Passing nil options keeps any options previously
// recorded for the name.
func (vs *VariableStore) SetCookie(name, value string, options *CookieOptions) {
	vs.cookies[name] = value
	if options != nil {
		vs.cookieOptions[name] = *options
	}
}

// GetCookies returns a snapshot copy of the cookie scope.
func (vs *VariableStore) GetCookies() map[string]string {
	snapshot := make(map[string]string, len(vs.cookies))
	for k, v := range vs.cookies {
		snapshot[k] = v
	}
	return snapshot
}

// GetCookieOptions returns the recorded Set-Cookie attributes for name.
func (vs *VariableStore) GetCookieOptions(name string) (CookieOptions, bool) {
	options, ok := vs.cookieOptions[name]
	return options, ok
}

// ResolveVariable resolves a template expression against the store. A
// `page.`, `session.`, or `cookie.` prefix binds the lookup to that single
// scope with no fallback. Bare keys search page, then session, then cookie,
// returning the first scope in which the key is present; presence, not
// truthiness, decides, so zero values are still returned. The precedence
// order is fixed and not configurable.
func (vs *VariableStore) ResolveVariable(expression string) (any, bool) {
	if expression == "" {
		return nil, false
	}

	switch {
	case strings.HasPrefix(expression, pagePrefix):
		value, ok := vs.pageVariables[strings.TrimPrefix(expression, pagePrefix)]
		return value, ok
	case strings.HasPrefix(expression, sessionPrefix):
		value, ok := vs.sessionVariables[strings.TrimPrefix(expression, sessionPrefix)]
		return value, ok
	case strings.HasPrefix(expression, cookiePrefix):
		value, ok := vs.cookies[strings.TrimPrefix(expression, cookiePrefix)]
		return value, ok
	}

	if value, ok := vs.pageVariables[expression]; ok {
		return value, true
	}
	if value, ok := vs.sessionVariables[expression]; ok {
		return value, true
	}
	if value, ok := vs.cookies[expression]; ok {
		return value, true
	}
	return nil, false
}

func copyAnyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
