package explain

import (
	"context"
	"fmt"

	"failtrack/internal/types"
)

// Explainer defines how alerts are enriched with human-readable context
type Explainer interface {
	Explain(ctx context.Context, event *types.Event) error
}

// TemplateExplainer uses static string templates (Offline/Fast)
type TemplateExplainer struct{}

func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

func (e *TemplateExplainer) Explain(_ context.Context, event *types.Event) error {
	if event.Explanation == "" {
		event.Explanation = fmt.Sprintf("Detected %s from %s. Risk: %s.", event.Summary, event.Source, event.Risk)
	}
	return nil
}

// ExplainAll runs primary over every event and falls back to the template
// when it fails.
func ExplainAll(ctx context.Context, primary Explainer, events []types.Event) (failed int) {
	fallback := NewTemplateExplainer()
	for i := range events {
		if err := primary.Explain(ctx, &events[i]); err != nil {
			failed++
			fallback.Explain(ctx, &events[i])
		}
	}
	return failed
}
