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

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-5-20250514"
)

// anthropicAdapter implements Adapter for the Anthropic messages API.
type anthropicAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newAnthropicAdapter(apiKey string) *anthropicAdapter {
	return &anthropicAdapter{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		model:      anthropicDefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *anthropicAdapter) Vendor() VendorID      { return VendorAnthropic }
func (a *anthropicAdapter) Model() string         { return a.model }
func (a *anthropicAdapter) SetModel(model string) { a.model = model }

func (a *anthropicAdapter) Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.httpClient.Timeout)
		defer cancel()
	}

	if a.apiKey == "" {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("API key not configured"))
	}

	model := a.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Error != nil {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("API error: %s", parsed.Error.Message))
	}
	if len(parsed.Content) == 0 {
		return "", providerErr(VendorAnthropic, "chat", fmt.Errorf("no completion returned"))
	}

	var result strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(result.String()), nil
}

var _ Adapter = (*anthropicAdapter)(nil)
