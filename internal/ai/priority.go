package ai

import (
	"context"
	"fmt"
	"strings"
)

// Priority labels a message's notification urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityResult carries the label and why it was chosen.
type PriorityResult struct {
	Priority Priority
	Reason   string
}

const priorityPrompt = `Rate the notification priority of this chat message for user %q.

Message: %q

Reply with exactly one word: high, medium, or low.`

// NotificationPriority scores a message. A direct mention of selfNick
// (case-insensitive) is high priority without consulting the provider. Any
// reply outside the three labels, a provider failure, or a missing provider
// falls back to medium.
func (s *Service) NotificationPriority(ctx context.Context, text, selfNick string) PriorityResult {
	if selfNick != "" && strings.Contains(strings.ToLower(text), strings.ToLower(selfNick)) {
		return PriorityResult{Priority: PriorityHigh, Reason: "direct mention"}
	}
	if !s.Enabled() {
		return PriorityResult{Priority: PriorityMedium, Reason: "AI disabled"}
	}

	reply, err := s.complete(ctx, fmt.Sprintf(priorityPrompt, selfNick, text), 16)
	if err != nil {
		return PriorityResult{Priority: PriorityMedium, Reason: "AI error"}
	}

	switch Priority(strings.ToLower(strings.TrimSpace(reply))) {
	case PriorityHigh:
		return PriorityResult{Priority: PriorityHigh, Reason: "model rated high"}
	case PriorityLow:
		return PriorityResult{Priority: PriorityLow, Reason: "model rated low"}
	case PriorityMedium:
		return PriorityResult{Priority: PriorityMedium, Reason: "model rated medium"}
	default:
		return PriorityResult{Priority: PriorityMedium, Reason: "unrecognized rating"}
	}
}
