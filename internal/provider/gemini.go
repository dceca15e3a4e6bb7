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

// geminiAdapter implements Adapter for the Google Gemini generateContent API.
type geminiAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newGeminiAdapter(apiKey string) *geminiAdapter {
	return &geminiAdapter{
		apiKey:     apiKey,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		model:      "gemini-2.0-flash",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (a *geminiAdapter) Vendor() VendorID      { return VendorGemini }
func (a *geminiAdapter) Model() string         { return a.model }
func (a *geminiAdapter) SetModel(model string) { a.model = model }

func (a *geminiAdapter) Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.httpClient.Timeout)
		defer cancel()
	}

	if a.apiKey == "" {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("API key not configured"))
	}

	model := a.model
	if opts.Model != "" {
		model = opts.Model
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	if opts.MaxTokens > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: opts.MaxTokens}
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Error != nil {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("API error: %s", parsed.Error.Message))
	}
	if len(parsed.Candidates) == 0 {
		return "", providerErr(VendorGemini, "chat", fmt.Errorf("no completion returned"))
	}

	var result strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	return strings.TrimSpace(result.String()), nil
}

var _ Adapter = (*geminiAdapter)(nil)
