package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/logging"
)

var (
	testSummary = insights.Summary{Towers: 12, Records: 40, Anomalies: 3, AvgLatencySec: 0.42, AvgDownloadMbps: 38.5, AvgDroppedCalls: 1.75}
	testCats    = []insights.CategoryCount{{Category: "Healthy", Count: 30}, {Category: "⚠️ High Latency", Count: 10}}
)

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) Story(context.Context, insights.Summary, []insights.CategoryCount) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}
	return "generated", nil
}

func TestStatic(t *testing.T) {
	story, err := Static{}.Story(context.Background(), testSummary, testCats)
	require.NoError(t, err)
	assert.Contains(t, story, "Network")
	assert.Contains(t, story, "**5G towers**")
}

func TestPrompt(t *testing.T) {
	p := Prompt(testSummary, testCats)
	assert.Contains(t, p, "Towers: 12")
	assert.Contains(t, p, "Average latency (s): 0.42")
	assert.Contains(t, p, "- ⚠️ High Latency: 10")
}

func TestCached(t *testing.T) {
	inner := &countingGenerator{}
	c := NewCached(inner, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		story, err := c.Story(ctx, testSummary, testCats)
		require.NoError(t, err)
		assert.Equal(t, "generated", story)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	other := testSummary
	other.Towers = 13
	_, err := c.Story(ctx, other, testCats)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCached_ErrorsNotCached(t *testing.T) {
	inner := &countingGenerator{err: errors.New("boom")}
	c := NewCached(inner, 0)

	_, err := c.Story(context.Background(), testSummary, nil)
	assert.Error(t, err)
	_, err = c.Story(context.Background(), testSummary, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestFallback(t *testing.T) {
	f := Fallback{Primary: &countingGenerator{err: errors.New("down")}, Secondary: Static{}, Logger: logging.Discard()}
	story, err := f.Story(context.Background(), testSummary, testCats)
	require.NoError(t, err)
	assert.Equal(t, StaticStory, story)

	f.Primary = &countingGenerator{}
	story, err = f.Story(context.Background(), testSummary, testCats)
	require.NoError(t, err)
	assert.Equal(t, "generated", story)
}

func TestNew_WithoutKeyIsStatic(t *testing.T) {
	assert.IsType(t, Static{}, New("", "", logging.Discard()))
	assert.IsType(t, Fallback{}, New("sk-test", "", logging.Discard()))
}

func newTestServer(t *testing.T, status int, content string) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var gotPrompt atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err == nil && len(req.Messages) == 2 {
			gotPrompt.Store(req.Messages[1].Content)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"unavailable","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1710000000,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPrompt
}

func TestOpenAI_Story(t *testing.T) {
	srv, prompt := newTestServer(t, http.StatusOK, "  Towers are mostly healthy.  ")
	gen, err := NewOpenAI("sk-test", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	story, err := gen.Story(context.Background(), testSummary, testCats)
	require.NoError(t, err)
	assert.Equal(t, "Towers are mostly healthy.", story)
	assert.Contains(t, prompt.Load(), "Towers: 12")
}

func TestOpenAI_ServerError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, "")
	gen, err := NewOpenAI("sk-test", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = gen.Story(context.Background(), testSummary, testCats)
	assert.Error(t, err)
}

func TestOpenAI_EmptyContent(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "   ")
	gen, err := NewOpenAI("sk-test", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = gen.Story(context.Background(), testSummary, testCats)
	assert.Error(t, err)
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "", option.WithMaxRetries(0))
	assert.Error(t, err)
}
