package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kevthetech143/phantom-irc/internal/chat"
)

// Fixed strings the summary feature degrades to.
const (
	summaryNothing  = "Nothing to summarize yet."
	summaryDisabled = "AI features are disabled."
	summaryFailed   = "Unable to generate summary."
)

const summaryPrompt = `Summarize this chat conversation from %s in 2-3 sentences. Mention who was involved and what was discussed.

%s`

// Summarize produces a short synopsis of a message window. An empty window
// returns a fixed string without calling the provider; so do the disabled and
// failure cases.
func (s *Service) Summarize(ctx context.Context, msgs []chat.Message, channel string) string {
	if len(msgs) == 0 {
		return summaryNothing
	}
	if !s.Enabled() {
		return summaryDisabled
	}

	reply, err := s.complete(ctx, fmt.Sprintf(summaryPrompt, channel, renderTranscript(msgs)), 256)
	if err != nil || reply == "" {
		return summaryFailed
	}
	return reply
}

// renderTranscript formats messages as a time-ordered transcript for prompts.
// Order is the log's insertion order.
func renderTranscript(msgs []chat.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Time.Format("15:04"), m.From, m.Body)
	}
	return b.String()
}
