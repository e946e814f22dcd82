package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/metrics"
)

const systemPrompt = `You are a telecom network analyst. Write a short Markdown summary (4-6 bullet points and one closing sentence) of tower performance for operations managers. Use only the numbers you are given. Do not invent towers, regions or figures.`

// OpenAI asks a chat model for the story.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a generator using apiKey. Extra options are passed to
// the client, which lets tests point it at a local server.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &OpenAI{client: client, model: model}, nil
}

func (g *OpenAI) Story(ctx context.Context, sum insights.Summary, cats []insights.CategoryCount) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Prompt(sum, cats)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	story := strings.TrimSpace(resp.Choices[0].Message.Content)
	if story == "" {
		return "", errors.New("empty story returned")
	}
	metrics.NarrativesTotal.WithLabelValues("openai").Inc()
	return story, nil
}

// Prompt renders the figures the model is allowed to use.
func Prompt(sum insights.Summary, cats []insights.CategoryCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Towers: %d\n", sum.Towers)
	fmt.Fprintf(&b, "Records: %d\n", sum.Records)
	fmt.Fprintf(&b, "Anomalous records: %d\n", sum.Anomalies)
	fmt.Fprintf(&b, "Average latency (s): %.2f\n", sum.AvgLatencySec)
	fmt.Fprintf(&b, "Average download speed (Mbps): %.2f\n", sum.AvgDownloadMbps)
	fmt.Fprintf(&b, "Average dropped calls: %.2f\n", sum.AvgDroppedCalls)
	if len(cats) > 0 {
		b.WriteString("Recommendation categories (count):\n")
		for _, c := range cats {
			fmt.Fprintf(&b, "- %s: %d\n", c.Category, c.Count)
		}
	}
	return b.String()
}
