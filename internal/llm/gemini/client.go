// Package gemini implements llm.Client over the Google generative AI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/amk92987/wos-optimizer/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

// Client implements llm.Client using a Gemini generative model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient constructs a Gemini client. An empty model name selects the
// default flash model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	inner, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	name := strings.TrimSpace(model)
	if name == "" {
		name = defaultModel
	}
	return &Client{
		client: inner,
		model:  inner.GenerativeModel(name),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Answer sends the flattened prompt and returns the first text part.
func (c *Client) Answer(ctx context.Context, input llm.AskInput) (string, error) {
	prompt := llm.FlattenMessages(llm.BuildMessages(input))
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response empty content")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("gemini response unexpected part type %T", resp.Candidates[0].Content.Parts[0])
	}
	answer := strings.TrimSpace(string(text))
	if answer == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return answer, nil
}

var _ llm.Client = (*Client)(nil)
