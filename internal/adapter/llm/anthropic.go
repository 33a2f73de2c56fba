package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"post-orchestrator/internal/domain"
)

type anthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient creates the Claude provider.
func NewAnthropicClient(apiKey string) domain.LanguageModelProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &anthropicClient{
		client: &client,
		model:  anthropic.Model("claude-3-5-sonnet-latest"),
	}
}

func (c *anthropicClient) ID() domain.ProviderID {
	return domain.ProviderClaude
}

func (c *anthropicClient) Complete(ctx context.Context, messages []domain.Message, maxTokens int) (string, error) {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			continue
		}
		turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages:  turns,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return resp.Content[0].Text, nil
}
