package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"post-orchestrator/internal/domain"
)

type openAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAIClient creates the GPT-4 provider.
func NewOpenAIClient(apiKey string) domain.LanguageModelProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIClient{
		client: &client,
		model:  openai.ChatModelGPT4Turbo,
	}
}

func (c *openAIClient) ID() domain.ProviderID {
	return domain.ProviderGPT4
}

func (c *openAIClient) Complete(ctx context.Context, messages []domain.Message, maxTokens int) (string, error) {
	turns := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			turns = append(turns, openai.SystemMessage(msg.Content))
			continue
		}
		turns = append(turns, openai.UserMessage(msg.Content))
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            turns,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
