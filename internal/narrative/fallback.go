package narrative

import (
	"context"
	"log/slog"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/metrics"
)

// Fallback tries Primary and, if it fails, returns Secondary's story.
type Fallback struct {
	Primary   Generator
	Secondary Generator
	Logger    *slog.Logger
}

func (f Fallback) Story(ctx context.Context, sum insights.Summary, cats []insights.CategoryCount) (string, error) {
	story, err := f.Primary.Story(ctx, sum, cats)
	if err == nil {
		return story, nil
	}
	if f.Logger != nil {
		f.Logger.Warn("narrative generation failed, using fallback", "error", err)
	}
	metrics.NarrativesTotal.WithLabelValues("fallback").Inc()
	return f.Secondary.Story(ctx, sum, cats)
}

// New picks the generator for the configured API key: OpenAI with a cache
// and the static story as fallback, or just the static story.
func New(apiKey, model string, logger *slog.Logger) Generator {
	if apiKey == "" {
		return Static{}
	}
	gen, err := NewOpenAI(apiKey, model)
	if err != nil {
		logger.Warn("openai narrative disabled", "error", err)
		return Static{}
	}
	return Fallback{Primary: NewCached(gen, 0), Secondary: Static{}, Logger: logger}
}
