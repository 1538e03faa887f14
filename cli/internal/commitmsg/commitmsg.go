// Package commitmsg normalizes raw model output into a commit message and
// classifies low-value titles.
package commitmsg

import (
	"regexp"
	"strings"
)

// FallbackTitle is used when validating parse finds no conventional-commit
// line anywhere in the model output.
const FallbackTitle = "chore: update"

// conventionalLine matches a Conventional Commits title with one of the
// allowed type tokens and an optional word/hyphen scope.
var conventionalLine = regexp.MustCompile(`^(feat|fix|chore|docs|refactor|style|test)(\([\w-]+\))?: .+`)

// lowValuePatterns flag titles describing debug scaffolding or trivial
// edits; matched generations are abandoned without prompting the user.
var lowValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(add|remove) debug`),
	regexp.MustCompile(`(?i)(print|log)\s+statement`),
	regexp.MustCompile(`(?i)minor\s+(change|update)`),
}

// Message is a parsed commit message: a single-line title and optional body.
type Message struct {
	Title string
	Body  string
}

// Parse extracts a Message from raw model text.
//
// naive mode takes the first line as the title and the remainder as the body,
// trusting the model to have followed instructions.
//
// Validating mode (naive=false, the default) scans for the first line
// matching the conventional-commit grammar, stripping markdown bold and code
// fences first, and falls back to FallbackTitle when nothing matches. It
// tolerates preambles ("Here is your commit message:") and fenced output.
func Parse(raw string, naive bool) Message {
	if naive {
		return parseNaive(raw)
	}
	return parseValidating(raw)
}

func parseNaive(raw string) Message {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Message{Title: FallbackTitle}
	}
	title, body, _ := strings.Cut(raw, "\n")
	return Message{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}
}

func parseValidating(raw string) Message {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		candidate := cleanLine(line)
		if !conventionalLine.MatchString(candidate) {
			continue
		}
		var body []string
		for _, rest := range lines[i+1:] {
			rest = cleanLine(rest)
			if rest == "" && len(body) == 0 {
				continue
			}
			body = append(body, rest)
		}
		return Message{Title: candidate, Body: strings.TrimSpace(strings.Join(body, "\n"))}
	}
	return Message{Title: FallbackTitle}
}

// cleanLine trims whitespace and strips markdown wrapping the model tends to
// add: **bold** and ``` fences (with or without a language tag).
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "```") {
		return ""
	}
	if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4 {
		line = strings.TrimSpace(line[2 : len(line)-2])
	}
	return line
}

// IsLowValue reports whether title matches any low-value pattern
// (case-insensitive).
func IsLowValue(title string) bool {
	for _, p := range lowValuePatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

// Format renders the message as committed: title, then a blank line and the
// body when one exists.
func (m Message) Format() string {
	if m.Body == "" {
		return m.Title
	}
	return m.Title + "\n\n" + m.Body
}
