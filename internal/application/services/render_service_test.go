package services

import (
	"encoding/json"
	"testing"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/stretchr/testify/assert"
)

func TestRenderBindings(t *testing.T) {
	svc := NewRenderService(newTestLogger(t))
	store := state.NewVariableStore(&state.Seed{
		PageVariables:    map[string]any{"title": "Welcome"},
		SessionVariables: map[string]any{"userName": "Ada", "visits": float64(3)},
		Cookies:          map[string]string{"theme": "dark"},
	})

	payload := json.RawMessage(`{"heading":"{{ title }}","greeting":"Hi {{session.userName}}","visits":"{{ session.visits }}","theme":"{{cookie.theme}}","missing":"{{ nope }}"}`)
	rendered := svc.RenderBindings(payload, store)

	var doc map[string]string
	assert.NoError(t, json.Unmarshal(rendered, &doc))
	assert.Equal(t, "Welcome", doc["heading"])
	assert.Equal(t, "Hi Ada", doc["greeting"])
	assert.Equal(t, "3", doc["visits"])
	assert.Equal(t, "dark", doc["theme"])
	assert.Equal(t, "", doc["missing"], "absent bindings render empty")
}

func TestRenderBindingsEscapesValues(t *testing.T) {
	svc := NewRenderService(newTestLogger(t))
	store := state.NewVariableStore(&state.Seed{
		PageVariables: map[string]any{"quote": `say "hi"` + "\nthen leave"},
	})

	rendered := svc.RenderBindings(json.RawMessage(`{"text":"{{quote}}"}`), store)

	var doc map[string]string
	assert.NoError(t, json.Unmarshal(rendered, &doc), "substituted text must stay valid JSON")
	assert.Equal(t, "say \"hi\"\nthen leave", doc["text"])
}

func TestRenderBindingsEmptyPayload(t *testing.T) {
	svc := NewRenderService(newTestLogger(t))
	store := state.NewVariableStore(nil)

	assert.Empty(t, svc.RenderBindings(nil, store))
	assert.Equal(t, json.RawMessage(`{"a":1}`), svc.RenderBindings(json.RawMessage(`{"a":1}`), store))
}

func TestFormatBindingValue(t *testing.T) {
	assert.Equal(t, "", formatBindingValue(nil))
	assert.Equal(t, "text", formatBindingValue("text"))
	assert.Equal(t, "42", formatBindingValue(float64(42)))
	assert.Equal(t, "2.5", formatBindingValue(2.5))
	assert.Equal(t, "true", formatBindingValue(true))
}
