package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// openAICompatAdapter implements Adapter for any vendor speaking the OpenAI
// chat/completions dialect. OpenAI, Groq and Mistral share this shape and
// differ only in base URL and default model.
type openAICompatAdapter struct {
	vendor     VendorID
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOpenAIAdapter(apiKey string) *openAICompatAdapter {
	return &openAICompatAdapter{
		vendor:     VendorOpenAI,
		apiKey:     apiKey,
		baseURL:    "https://api.openai.com/v1",
		model:      "gpt-4o-mini",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (a *openAICompatAdapter) Vendor() VendorID      { return a.vendor }
func (a *openAICompatAdapter) Model() string         { return a.model }
func (a *openAICompatAdapter) SetModel(model string) { a.model = model }

func (a *openAICompatAdapter) Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.httpClient.Timeout)
		defer cancel()
	}

	if a.apiKey == "" {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("API key not configured"))
	}

	model := a.model
	if opts.Model != "" {
		model = opts.Model
	}

	reqBody := openAIRequest{
		Model:     model,
		Messages:  []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens: opts.MaxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Error != nil {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("API error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", providerErr(a.vendor, "chat", fmt.Errorf("no completion returned"))
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

var _ Adapter = (*openAICompatAdapter)(nil)
