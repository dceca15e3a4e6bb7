package provider

import (
	"context"
	"fmt"
)

// ChatOptions tunes a single completion call.
type ChatOptions struct {
	MaxTokens int    // 0 means the adapter default
	Model     string // optional override of the adapter's default model
}

// Adapter is the uniform completion contract. One implementation exists per
// vendor; they differ only in request envelope, default model and where the
// text lives in the reply. On success Chat returns trimmed plain text. On
// failure it returns a *ProviderError; callers decide fallback behavior.
type Adapter interface {
	Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error)
	Vendor() VendorID
	Model() string
	SetModel(model string)
}

// ProviderError is the typed failure for any adapter call. It carries the
// vendor so callers can report which binding failed without inspecting the
// adapter.
type ProviderError struct {
	Vendor VendorID
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(vendor VendorID, op string, err error) *ProviderError {
	return &ProviderError{Vendor: vendor, Op: op, Err: err}
}
