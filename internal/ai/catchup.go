package ai

import (
	"context"
	"fmt"

	"github.com/Kevthetech143/phantom-irc/internal/chat"
)

// catchUpNoSummary is the placeholder when the SUMMARY line is absent.
const catchUpNoSummary = "No summary available."

// CatchUpReport is the multi-field digest of a message window.
type CatchUpReport struct {
	Topics           []string // at most 3
	Decisions        []string // at most 3
	CodeSnippetCount int
	Summary          string
}

const catchUpPrompt = `Analyze this chat conversation from %s and reply using exactly this labeled format:

TOPICS: topic1; topic2; topic3
DECISIONS: decision1; decision2
CODE_SNIPPETS: <number of code blocks discussed>
SUMMARY: <one or two sentences>

Use "none" for a field with nothing to report.

Conversation:
%s`

// CatchUp performs one completion call and parses each labeled field
// independently: a missing DECISIONS line yields an empty list while TOPICS
// and SUMMARY still parse from their present lines.
func (s *Service) CatchUp(ctx context.Context, msgs []chat.Message, channel string) CatchUpReport {
	disabled := CatchUpReport{Summary: catchUpNoSummary}
	if len(msgs) == 0 || !s.Enabled() {
		return disabled
	}

	reply, err := s.complete(ctx, fmt.Sprintf(catchUpPrompt, channel, renderTranscript(msgs)), 512)
	if err != nil {
		return disabled
	}
	return parseCatchUp(reply)
}

func parseCatchUp(reply string) CatchUpReport {
	report := CatchUpReport{
		Topics:           labeledList(reply, "TOPICS", 3),
		Decisions:        labeledList(reply, "DECISIONS", 3),
		CodeSnippetCount: labeledInt(reply, "CODE_SNIPPETS", 0),
	}
	if summary, ok := labeledLine(reply, "SUMMARY"); ok && summary != "" {
		report.Summary = summary
	} else {
		report.Summary = catchUpNoSummary
	}
	return report
}
