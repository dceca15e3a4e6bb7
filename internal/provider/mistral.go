package provider

import "net/http"

// Mistral exposes an OpenAI-compatible chat/completions API.
func newMistralAdapter(apiKey string) *openAICompatAdapter {
	return &openAICompatAdapter{
		vendor:     VendorMistral,
		apiKey:     apiKey,
		baseURL:    "https://api.mistral.ai/v1",
		model:      "mistral-small-latest",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}
