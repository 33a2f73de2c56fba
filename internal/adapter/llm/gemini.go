package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/infra/httpclient"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGeminiClient creates the Gemini provider. The generative language API
// has no official Go SDK pinned here, so this speaks the REST surface
// directly.
func NewGeminiClient(apiKey string, client *http.Client) domain.LanguageModelProvider {
	if client == nil {
		client = httpclient.NewPooledClient(0)
	}
	return &geminiClient{
		baseURL: geminiDefaultBaseURL,
		apiKey:  apiKey,
		model:   "gemini-pro",
		client:  client,
	}
}

func (c *geminiClient) ID() domain.ProviderID {
	return domain.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) Complete(ctx context.Context, messages []domain.Message, maxTokens int) (string, error) {
	reqBody := geminiRequest{
		GenerationConfig: geminiGenConfig{MaxOutputTokens: maxTokens},
	}
	for _, msg := range messages {
		if msg.Role == "system" {
			reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
			continue
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  "user",
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, body)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
