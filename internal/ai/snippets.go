package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kevthetech143/phantom-irc/internal/chat"
)

// CodeSnippet is a fenced code block lifted out of the message log, with a
// model-supplied classification. Snippets are derived on demand and never
// persisted back into the session.
type CodeSnippet struct {
	Language string
	Code     string
	Author   string
	Channel  string
	Time     time.Time
	Context  string // what the code appears to do
	Category string // e.g. function, config, query, general
}

const classifyPrompt = `Classify this code snippet. Reply using exactly this labeled format:

LANGUAGE: <language name>
PURPOSE: <one short phrase describing what it does>
CATEGORY: <one of: function, config, query, script, test, general>

Snippet:
%s`

// ExtractSnippets runs the two-stage pipeline: a pure-text scan for fenced
// code blocks, then one classification call per candidate. A failing
// classification degrades that single snippet to the generic classification;
// it never drops the snippet or aborts the batch.
func (s *Service) ExtractSnippets(ctx context.Context, msgs []chat.Message) []CodeSnippet {
	snippets := scanFences(msgs)
	for i := range snippets {
		s.classifySnippet(ctx, &snippets[i])
	}
	return snippets
}

// scanFences finds ``` blocks across all messages. The language tag after the
// opening fence is optional. A block left open at the end of a message is
// taken through the message's last line.
func scanFences(msgs []chat.Message) []CodeSnippet {
	var out []CodeSnippet
	for _, m := range msgs {
		lines := strings.Split(m.Body, "\n")
		inBlock := false
		lang := ""
		var buf []string
		flush := func() {
			code := strings.TrimRight(strings.Join(buf, "\n"), "\n")
			if strings.TrimSpace(code) != "" {
				out = append(out, CodeSnippet{
					Language: lang,
					Code:     code,
					Author:   m.From,
					Channel:  m.Channel,
					Time:     m.Time,
				})
			}
			buf = nil
		}
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				if inBlock {
					flush()
					inBlock = false
				} else {
					inBlock = true
					lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				}
				continue
			}
			if inBlock {
				buf = append(buf, line)
			}
		}
		if inBlock {
			flush()
		}
	}
	return out
}

// classifySnippet fills Language/Context/Category from one completion call,
// or the generic classification when no provider is bound or the call fails.
func (s *Service) classifySnippet(ctx context.Context, snip *CodeSnippet) {
	genericize := func() {
		snip.Category = "general"
		snip.Context = "Code snippet"
		if snip.Language == "" {
			snip.Language = "unknown"
		}
	}

	if !s.Enabled() {
		genericize()
		return
	}
	reply, err := s.complete(ctx, fmt.Sprintf(classifyPrompt, snip.Code), 128)
	if err != nil {
		genericize()
		return
	}

	if lang, ok := labeledLine(reply, "LANGUAGE"); ok && lang != "" && snip.Language == "" {
		snip.Language = strings.ToLower(lang)
	}
	if snip.Language == "" {
		snip.Language = "unknown"
	}
	if purpose, ok := labeledLine(reply, "PURPOSE"); ok && purpose != "" {
		snip.Context = purpose
	} else {
		snip.Context = "Code snippet"
	}
	if category, ok := labeledLine(reply, "CATEGORY"); ok && category != "" {
		snip.Category = strings.ToLower(category)
	} else {
		snip.Category = "general"
	}
}
