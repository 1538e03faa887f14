// Package tokens provides simple token estimation for prompts and
// context-limit warnings. Estimation uses a byte-based chars/4 heuristic;
// the prompt is never truncated, only warned about.
package tokens

import "fmt"

// charsPerToken is the divisor for the simple byte-based estimator
// (roughly 4 bytes per token for typical English/code).
const charsPerToken = 4

// Estimate returns an estimated token count for the given prompt text.
// (len(prompt)+3)/4 over bytes, so 0-3 bytes map to 1 token, 4-7 to 2, etc.
// Empty string returns 0.
func Estimate(prompt string) int {
	n := len(prompt)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// WarnIfOver returns a non-empty warning string when the estimated prompt
// plus the response budget meets or exceeds warnThreshold of contextLimit.
// contextLimit <= 0 disables the check.
func WarnIfOver(promptTokens, responseBudget, contextLimit int, warnThreshold float64) string {
	if contextLimit <= 0 || promptTokens < 0 || responseBudget < 0 {
		return ""
	}
	total := promptTokens + responseBudget
	limit := float64(contextLimit) * warnThreshold
	threshold := int(limit)
	if limit > float64(threshold) {
		threshold++
	}
	if total < threshold {
		return ""
	}
	return fmt.Sprintf("estimated tokens %d (prompt %d + response %d) exceeds %.0f%% of context limit %d; the model may truncate",
		total, promptTokens, responseBudget, warnThreshold*100, contextLimit)
}
