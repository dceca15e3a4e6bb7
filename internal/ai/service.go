// Package ai layers derived features over the session's message log: spam
// scoring, summaries, notification priority, catch-up digests, code-snippet
// cataloguing and prior-answer lookup. Everything here is strictly additive:
// no provider, a stalled provider or garbage model output degrades to a
// defined fallback, never to an error crossing the feature boundary.
package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kevthetech143/phantom-irc/internal/provider"
	"go.uber.org/zap"
)

// defaultCallTimeout bounds every provider call so a stalled vendor cannot
// stall a whole catch-up or snippet batch.
const defaultCallTimeout = 30 * time.Second

// Service exposes the AI feature set. A nil adapter means AI is disabled:
// every operation returns its defined disabled result without attempting a
// call. The adapter may be rebound at any time, so access goes through the
// mutex.
type Service struct {
	mu      sync.Mutex
	adapter provider.Adapter
	logger  *zap.Logger
	timeout time.Duration
}

// NewService builds the feature service around an adapter. adapter may be nil.
func NewService(adapter provider.Adapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		adapter: adapter,
		logger:  logger,
		timeout: defaultCallTimeout,
	}
}

// errNoAdapter is returned by complete when the adapter was unbound between
// the caller's Enabled check and the call.
var errNoAdapter = errors.New("no provider bound")

// Enabled reports whether a provider is bound.
func (s *Service) Enabled() bool { return s != nil && s.getAdapter() != nil }

// SetAdapter rebinds the provider; nil disables AI features.
func (s *Service) SetAdapter(adapter provider.Adapter) {
	s.mu.Lock()
	s.adapter = adapter
	s.mu.Unlock()
}

func (s *Service) getAdapter() provider.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter
}

// Vendor returns the bound vendor, or VendorNone when disabled.
func (s *Service) Vendor() provider.VendorID {
	adapter := s.getAdapter()
	if adapter == nil {
		return provider.VendorNone
	}
	return adapter.Vendor()
}

// Ask runs a free-form question straight through the provider. Unlike the
// feature operations this surfaces the error, since the caller asked for a
// direct answer and has nothing sensible to fall back to.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	return s.complete(ctx, question, 1024)
}

// complete runs one bounded provider call. Callers convert failure into
// their documented fallback; nothing escapes as a raw provider error.
func (s *Service) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	adapter := s.getAdapter()
	if adapter == nil {
		return "", errNoAdapter
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := adapter.Chat(callCtx, prompt, provider.ChatOptions{MaxTokens: maxTokens})
	if err != nil {
		s.logger.Warn("completion failed",
			zap.String("vendor", string(adapter.Vendor())),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return "", err
	}
	s.logger.Debug("completion ok",
		zap.String("vendor", string(adapter.Vendor())),
		zap.Duration("took", time.Since(start)),
		zap.Int("response_len", len(out)))
	return out, nil
}
