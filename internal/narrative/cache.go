package narrative

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/metrics"
)

// Cached memoises another generator's stories by their inputs, so a
// dashboard refresh does not repeat a model call for the same figures.
type Cached struct {
	inner Generator

	mu      sync.Mutex
	stories map[string]string
	limit   int
}

func NewCached(inner Generator, limit int) *Cached {
	if limit <= 0 {
		limit = 64
	}
	return &Cached{inner: inner, stories: make(map[string]string), limit: limit}
}

func (c *Cached) Story(ctx context.Context, sum insights.Summary, cats []insights.CategoryCount) (string, error) {
	key := inputKey(sum, cats)

	c.mu.Lock()
	story, ok := c.stories[key]
	c.mu.Unlock()
	if ok {
		metrics.NarrativesTotal.WithLabelValues("cached").Inc()
		return story, nil
	}

	story, err := c.inner.Story(ctx, sum, cats)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if len(c.stories) >= c.limit {
		c.stories = make(map[string]string)
	}
	c.stories[key] = story
	c.mu.Unlock()
	return story, nil
}

func inputKey(sum insights.Summary, cats []insights.CategoryCount) string {
	h := murmur3.New128()
	fmt.Fprintf(h, "%+v\x00", sum)
	for _, c := range cats {
		fmt.Fprintf(h, "%s\x00%d\x00", c.Category, c.Count)
	}
	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
