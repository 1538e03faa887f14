// Package prompt builds the system and user prompts for commit message
// generation. The user prompt embeds format instructions, few-shot examples,
// and the diff verbatim; the diff is never mutated or truncated here.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const overridePromptFilename = "system_prompt.txt"

// DefaultSystemPrompt is the system role content for every generation request.
const DefaultSystemPrompt = "Generate clear, accurate Git commit messages."

// instructions is the fixed format block: conventional-commit grammar, the
// allowed type tokens, and the scope convention.
const instructions = `You are a meticulous developer crafting Git commit messages in Conventional Commits format.

- Your primary goal is to accurately describe the changes in the provided diff.
- Use the format: <type>(<scope>): <summary>
- The scope should be the name of the file or module most affected (e.g., "auth", "api", "cli").
- Allowed types: feat, fix, chore, docs, refactor, style, test.
- Use "feat" for new features, "fix" for bug fixes, "refactor" for code changes that neither fix a bug nor add a feature, and "chore" for routine tasks.
- Focus ONLY on the changes presented in the diff. Do not invent or generalize.`

// fewShotExamples covers single-file, debug-statement, refactor, and
// multi-file cases so the model has seen each shape once.
const fewShotExamples = `Example 1: Simple addition
Diff:
--- a/src/math.py
+++ b/src/math.py
@@ -1,1 +1,2 @@
 def subtract(x, y):
-    return x - y
+    return x - y
+
+def add(x, y):
+    return x + y
Commit Message:
feat(math): add add() helper function

Example 2: Debugging statement
Diff:
--- a/src/auth.py
+++ b/src/auth.py
@@ -10,3 +10,4 @@
 def login(user, pass):
     # ...
     authenticate(user, pass)
+    print("User authenticated")
Commit Message:
chore(auth): add temporary debug log

Example 3: Refactoring
Diff:
--- a/src/main.py
+++ b/src/main.py
@@ -5,5 +5,5 @@
-    logger.info("Starting app")
+    logger.debug("Starting app")
     run()
Commit Message:
refactor(logging): change log level from info to debug

Example 4: Multi-file change
Diff:
diff --git a/src/cli.py b/src/cli.py
--- a/src/cli.py
+++ b/src/cli.py
@@ -1,3 +1,3 @@
 def run_cli():
-    print("Running CLI tool")
+    # print("Running CLI tool")
     parse_args()
diff --git a/src/api.py b/src/api.py
--- a/src/api.py
+++ b/src/api.py
@@ -10,1 +10,1 @@
-    return {"status": "ok"}
+    return {"status": "live"}
Commit Message:
refactor(cli): comment out debug print
fix(api): correct status response from ok to live`

// SystemPrompt returns the system prompt. If stateDir/system_prompt.txt
// exists and is readable, its contents (trimmed) are used instead of the
// default. Missing file falls back silently; any other read error (e.g.
// permission denied) is returned so the user can see it.
func SystemPrompt(stateDir string) (string, error) {
	if stateDir == "" {
		return DefaultSystemPrompt, nil
	}
	path := filepath.Join(stateDir, overridePromptFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSystemPrompt, nil
		}
		return "", fmt.Errorf("read system prompt override: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// UserPrompt combines the instruction block, the few-shot examples, and the
// diff. The diff is appended verbatim; arbitrarily large diffs pass through
// unmodified (a known scaling limitation, deliberately not fixed here).
func UserPrompt(diff string) string {
	var b strings.Builder
	b.Grow(len(instructions) + len(fewShotExamples) + len(diff) + 64)
	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString(fewShotExamples)
	b.WriteString("\n\nNow, write the commit message for the following diff:\n")
	b.WriteString(diff)
	return b.String()
}
