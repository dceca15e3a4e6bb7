package ai

import (
	"context"
	"fmt"
	"strings"
)

// SpamVerdict is the outcome of a pre-send spam check.
type SpamVerdict struct {
	IsSpam     bool
	Confidence int // 0-100
	Reason     string
}

const spamPrompt = `You are a chat moderation filter. Classify the following message destined for channel %s.

Message: %q

Reply with exactly one line in the form:
CLASSIFICATION|CONFIDENCE|REASON
where CLASSIFICATION is SPAM or CLEAN, CONFIDENCE is 0-100, and REASON is a short phrase.`

// CheckSpam classifies an outgoing message. It fails open: no provider, a
// provider failure or an unparseable reply never blocks sending.
func (s *Service) CheckSpam(ctx context.Context, text, channel string) SpamVerdict {
	if !s.Enabled() {
		return SpamVerdict{IsSpam: false, Confidence: 0, Reason: "AI disabled"}
	}

	reply, err := s.complete(ctx, fmt.Sprintf(spamPrompt, channel, text), 128)
	if err != nil {
		return SpamVerdict{IsSpam: false, Confidence: 0, Reason: "AI error"}
	}
	return parseSpamVerdict(reply)
}

// parseSpamVerdict reads the CLASSIFICATION|CONFIDENCE|REASON triple. A
// missing or unparseable confidence defaults to 50.
func parseSpamVerdict(reply string) SpamVerdict {
	line := strings.TrimSpace(reply)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	parts := strings.SplitN(line, "|", 3)

	verdict := SpamVerdict{Confidence: 50}
	verdict.IsSpam = strings.EqualFold(strings.TrimSpace(parts[0]), "SPAM")
	if len(parts) > 1 {
		verdict.Confidence = clampScore(leadingInt(parts[1], 50))
	}
	if len(parts) > 2 {
		verdict.Reason = strings.TrimSpace(parts[2])
	}
	return verdict
}
