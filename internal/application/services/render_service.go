package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/pages"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
)

// Resolver supplies values for template bindings.
type Resolver interface {
	ResolveVariable(expression string) (any, bool)
}

// bindingPattern matches {{ expression }} placeholders, where the expression
// is a bare key or a scope-prefixed key like session.userName.
var bindingPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// RenderService resolves a page's payload against a variable store, replacing
// every binding with the visitor's current value.
type RenderService struct {
	logger *logging.ChanneledLogger
}

// NewRenderService creates the render service singleton.
func NewRenderService(logger *logging.ChanneledLogger) *RenderService {
	return &RenderService{logger: logger}
}

// RenderPage loads a published page by slug and renders its bindings.
func (s *RenderService) RenderPage(projectCtx *project.Context, slug string, resolver Resolver) (*pages.Page, error) {
	page, err := projectCtx.PageRepo().GetBySlug(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", slug, err)
	}
	if page == nil || !page.IsPublished {
		return nil, nil
	}

	rendered := *page
	rendered.Payload = s.RenderBindings(page.Payload, resolver)
	return &rendered, nil
}

// RenderBindings substitutes every {{expression}} in the payload. Bindings
// with no present value render as the empty string.
func (s *RenderService) RenderBindings(payload json.RawMessage, resolver Resolver) json.RawMessage {
	if len(payload) == 0 {
		return payload
	}

	rendered := bindingPattern.ReplaceAllStringFunc(string(payload), func(match string) string {
		expression := bindingPattern.FindStringSubmatch(match)[1]
		value, found := resolver.ResolveVariable(expression)
		if !found {
			s.logger.Render().Debug("Unresolved binding", "expression", expression)
			return ""
		}
		return escapeForJSONString(formatBindingValue(value))
	})

	return json.RawMessage(rendered)
}

// formatBindingValue turns a resolved value into display text.
func formatBindingValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integers without a decimal point.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// escapeForJSONString keeps substituted text valid inside a JSON string literal.
func escapeForJSONString(text string) string {
	if text == "" {
		return text
	}
	encoded, err := json.Marshal(text)
	if err != nil {
		return ""
	}
	return strings.Trim(string(encoded), `"`)
}
