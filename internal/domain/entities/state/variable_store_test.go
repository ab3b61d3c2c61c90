package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariableStoreSeeding(t *testing.T) {
	seed := &Seed{
		PageVariables:    map[string]any{"title": "Home"},
		SessionVariables: map[string]any{"userName": "Ada"},
		Cookies:          map[string]string{"theme": "dark"},
	}
	vs := NewVariableStore(seed)

	value, found := vs.GetPageVariable("title")
	require.True(t, found)
	assert.Equal(t, "Home", value)

	value, found = vs.GetSessionVariable("userName")
	require.True(t, found)
	assert.Equal(t, "Ada", value)

	cookie, found := vs.GetCookie("theme")
	require.True(t, found)
	assert.Equal(t, "dark", cookie)

	// Mutating the seed after construction must not affect the store.
	seed.PageVariables["title"] = "changed"
	value, _ = vs.GetPageVariable("title")
	assert.Equal(t, "Home", value)
}

func TestNewVariableStoreNilSeed(t *testing.T) {
	vs := NewVariableStore(nil)

	_, found := vs.GetPageVariable("anything")
	assert.False(t, found)
	assert.Empty(t, vs.GetPageVariables())
	assert.Empty(t, vs.GetSessionVariables())
	assert.Empty(t, vs.GetCookies())
}

func TestPresenceNotTruthiness(t *testing.T) {
	vs := NewVariableStore(nil)
	vs.SetPageVariable("count", 0)
	vs.SetPageVariable("flag", false)
	vs.SetPageVariable("name", "")
	vs.SetSessionVariable("empty", nil)

	for _, key := range []string{"count", "flag", "name"} {
		_, found := vs.GetPageVariable(key)
		assert.True(t, found, "zero value for %q must still be present", key)
	}

	value, found := vs.GetSessionVariable("empty")
	assert.True(t, found)
	assert.Nil(t, value)
}

func TestSetOverwritesValue(t *testing.T) {
	vs := NewVariableStore(nil)
	vs.SetSessionVariable("step", 1)
	vs.SetSessionVariable("step", 2)

	value, found := vs.GetSessionVariable("step")
	require.True(t, found)
	assert.Equal(t, 2, value)
}

func TestGetVariablesReturnsCopy(t *testing.T) {
	vs := NewVariableStore(nil)
	vs.SetPageVariable("a", 1)

	snapshot := vs.GetPageVariables()
	snapshot["b"] = 2

	_, found := vs.GetPageVariable("b")
	assert.False(t, found)
}

func TestClearSessionVariables(t *testing.T) {
	vs := NewVariableStore(&Seed{
		PageVariables:    map[string]any{"p": 1},
		SessionVariables: map[string]any{"s1": 1, "s2": 2},
		Cookies:          map[string]string{"c": "v"},
	})

	vs.ClearSessionVariables()

	assert.Empty(t, vs.GetSessionVariables())
	_, found := vs.GetPageVariable("p")
	assert.True(t, found, "clearing session scope must not touch page scope")
	_, found = vs.GetCookie("c")
	assert.True(t, found, "clearing session scope must not touch cookie scope")
}

func TestSetCookieOptions(t *testing.T) {
	vs := NewVariableStore(nil)
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	vs.SetCookie("pref", "compact", &CookieOptions{MaxAge: 3600, HTTPOnly: true, Expires: &expires})

	options, found := vs.GetCookieOptions("pref")
	require.True(t, found)
	assert.Equal(t, 3600, options.MaxAge)
	assert.True(t, options.HTTPOnly)
	require.NotNil(t, options.Expires)
	assert.Equal(t, expires, *options.Expires)

	// Updating the value with nil options keeps the recorded options.
	vs.SetCookie("pref", "wide", nil)
	value, _ := vs.GetCookie("pref")
	assert.Equal(t, "wide", value)
	options, found = vs.GetCookieOptions("pref")
	require.True(t, found)
	assert.Equal(t, 3600, options.MaxAge)
}

func TestResolveVariablePrecedence(t *testing.T) {
	vs := NewVariableStore(&Seed{
		PageVariables:    map[string]any{"name": "page-value"},
		SessionVariables: map[string]any{"name": "session-value"},
		Cookies:          map[string]string{"name": "cookie-value"},
	})

	value, found := vs.ResolveVariable("name")
	require.True(t, found)
	assert.Equal(t, "page-value", value)

	vs2 := NewVariableStore(&Seed{
		SessionVariables: map[string]any{"name": "session-value"},
		Cookies:          map[string]string{"name": "cookie-value"},
	})
	value, found = vs2.ResolveVariable("name")
	require.True(t, found)
	assert.Equal(t, "session-value", value)

	vs3 := NewVariableStore(&Seed{
		Cookies: map[string]string{"name": "cookie-value"},
	})
	value, found = vs3.ResolveVariable("name")
	require.True(t, found)
	assert.Equal(t, "cookie-value", value)
}

func TestResolveVariablePresenceBeatsLowerScopes(t *testing.T) {
	vs := NewVariableStore(&Seed{
		PageVariables:    map[string]any{"flag": false},
		SessionVariables: map[string]any{"flag": true},
	})

	value, found := vs.ResolveVariable("flag")
	require.True(t, found)
	assert.Equal(t, false, value, "a falsy page value must still shadow session scope")
}

func TestResolveVariableScopePrefixes(t *testing.T) {
	vs := NewVariableStore(&Seed{
		SessionVariables: map[string]any{"name": "session-value"},
		Cookies:          map[string]string{"name": "cookie-value"},
	})

	// An explicit scope prefix never falls back to other scopes.
	_, found := vs.ResolveVariable("page.name")
	assert.False(t, found)

	value, found := vs.ResolveVariable("session.name")
	require.True(t, found)
	assert.Equal(t, "session-value", value)

	value, found = vs.ResolveVariable("cookie.name")
	require.True(t, found)
	assert.Equal(t, "cookie-value", value)
}

func TestResolveVariableEdgeCases(t *testing.T) {
	vs := NewVariableStore(nil)

	_, found := vs.ResolveVariable("")
	assert.False(t, found)

	_, found = vs.ResolveVariable("missing")
	assert.False(t, found)

	// A prefixed key with an empty remainder is a lookup for the empty key.
	_, found = vs.ResolveVariable("session.")
	assert.False(t, found)

	// Dotted keys beyond the scope prefix resolve as literal key names.
	vs.SetSessionVariable("user.name", "Ada")
	value, found := vs.ResolveVariable("session.user.name")
	require.True(t, found)
	assert.Equal(t, "Ada", value)
}
