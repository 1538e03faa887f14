// Package git provides the repository operations commitgen needs: staged diff
// queries, staging a single path, and commit creation. Uses exec git for
// compatibility with hooks, includes, and credential helpers.
package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"commitgen/cli/internal/erruser"
)

// RepoRoot returns the absolute path of the git repository root containing dir.
// Runs "git rev-parse --show-toplevel" with Dir=dir. Returns error if dir is
// not inside a git repository.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return "", erruser.New("This directory is not inside a Git repository.", err)
	}
	root := strings.TrimSpace(string(out))
	return filepath.Abs(root)
}

// CurrentBranch returns the branch name at HEAD, or the short SHA when detached.
func CurrentBranch(ctx context.Context, repoRoot string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return "", erruser.New("Could not read the current branch.", err)
	}
	branch := strings.TrimSpace(string(out))
	if branch != "" && branch != "HEAD" {
		return branch, nil
	}

	cmd = exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err = cmd.Output()
	if err != nil {
		return "", erruser.New("Could not read the current branch.", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// StagedDiff returns the unified diff of staged changes. A failed command or
// empty diff both return "" with nil error: the caller treats either as
// "nothing to commit", which is the right UX for a generation tool.
func StagedDiff(ctx context.Context, repoRoot string) string {
	return runDiff(ctx, repoRoot, "git", "diff", "--cached", "--no-color", "--no-ext-diff")
}

// StagedDiffZeroContext returns the staged diff with zero context lines (-U0).
// Used for per-file segmentation where context lines only cost tokens.
// Lenient like StagedDiff: failures yield "".
func StagedDiffZeroContext(ctx context.Context, repoRoot string) string {
	return runDiff(ctx, repoRoot, "git", "diff", "--cached", "--no-color", "--no-ext-diff", "-U0")
}

func runDiff(ctx context.Context, repoRoot, name string, args ...string) string {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(out)
}

// StagePath stages a single path ("git add -- <path>"). Unlike the diff
// queries this is a hard error: per-file mode must not commit the wrong file.
func StagePath(ctx context.Context, repoRoot, path string) error {
	cmd := exec.CommandContext(ctx, "git", "add", "--", path)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return erruser.New("Could not stage "+path+".", wrapOutput(err, out))
	}
	return nil
}

// Commit writes message to a temporary file and runs "git commit -F <file>".
// The file form preserves the blank line between title and body exactly.
// When paths are given the commit is restricted to those paths, so other
// staged files stay staged and uncommitted. Commit failures are reported as
// errors; nothing needs rolling back since the commit never succeeded.
func Commit(ctx context.Context, repoRoot, message string, paths ...string) error {
	if strings.TrimSpace(message) == "" {
		return erruser.New("Refusing to commit an empty message.", nil)
	}
	f, err := os.CreateTemp("", "commitgen-msg-*")
	if err != nil {
		return erruser.New("Could not create the commit message file.", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(message + "\n"); err != nil {
		_ = f.Close()
		return erruser.New("Could not write the commit message file.", err)
	}
	if err := f.Close(); err != nil {
		return erruser.New("Could not write the commit message file.", err)
	}

	args := []string{"commit", "-F", f.Name()}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return erruser.New("Could not create the commit.", wrapOutput(err, out))
	}
	return nil
}

// wrapOutput attaches trimmed command output to err so "Details:" shows what git said.
func wrapOutput(err error, out []byte) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return err
	}
	return erruser.New(msg, err)
}

func minimalEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"GIT_TERMINAL_PROMPT=0",
	}
	// Commit identity may come from the environment in CI; pass it through.
	for _, k := range []string{"HOME", "GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL", "GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL", "XDG_CONFIG_HOME"} {
		if v := os.Getenv(k); v != "" {
			env = append(env, k+"="+v)
		}
	}
	return env
}
