package provider

import "net/http"

// Groq exposes an OpenAI-compatible chat/completions API.
func newGroqAdapter(apiKey string) *openAICompatAdapter {
	return &openAICompatAdapter{
		vendor:     VendorGroq,
		apiKey:     apiKey,
		baseURL:    "https://api.groq.com/openai/v1",
		model:      "llama-3.3-70b-versatile",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}
