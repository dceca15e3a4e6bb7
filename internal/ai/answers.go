package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxPastAnswers caps how much history is offered for matching.
const maxPastAnswers = 20

// QAEntry is a past question/answer pair supplied by the caller. The feature
// layer only reads it.
type QAEntry struct {
	Question string
	Answer   string
	Author   string
	Time     time.Time
}

// AnswerMatch is the result of a prior-answer lookup.
type AnswerMatch struct {
	FoundAnswer bool
	Answer      string
	Similarity  int // 0-100
	Original    *QAEntry
}

const answerPrompt = `A user asked: %q

Here are previously answered questions:
%s
Does any previous answer address the new question? Reply using exactly this labeled format:

FOUND: yes or no
INDEX: <number of the matching entry, or 0>
SIMILARITY: <0-100>
ANSWER: <the matching answer text, or none>`

// FindPastAnswer checks the most recent history entries for a prior answer to
// question. A match is accepted only when the model says FOUND: yes, the
// index resolves to a real entry, and the answer text is not the "none"
// placeholder; any inconsistency is a no-match, not an error.
func (s *Service) FindPastAnswer(ctx context.Context, question string, history []QAEntry) AnswerMatch {
	if !s.Enabled() || len(history) == 0 {
		return AnswerMatch{}
	}

	recent := history
	if len(recent) > maxPastAnswers {
		recent = recent[len(recent)-maxPastAnswers:]
	}

	var b strings.Builder
	for i, qa := range recent {
		fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n", i+1, qa.Question, qa.Answer)
	}

	reply, err := s.complete(ctx, fmt.Sprintf(answerPrompt, question, b.String()), 512)
	if err != nil {
		return AnswerMatch{}
	}
	return acceptAnswer(reply, recent)
}

func acceptAnswer(reply string, recent []QAEntry) AnswerMatch {
	found, _ := labeledLine(reply, "FOUND")
	if !strings.EqualFold(strings.TrimSpace(found), "yes") {
		return AnswerMatch{}
	}

	idx := labeledInt(reply, "INDEX", 0)
	if idx < 1 || idx > len(recent) {
		return AnswerMatch{}
	}

	answer, _ := labeledLine(reply, "ANSWER")
	if answer == "" || strings.EqualFold(answer, "none") {
		return AnswerMatch{}
	}

	entry := recent[idx-1]
	return AnswerMatch{
		FoundAnswer: true,
		Answer:      answer,
		Similarity:  clampScore(labeledInt(reply, "SIMILARITY", 0)),
		Original:    &entry,
	}
}
