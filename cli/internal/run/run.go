// Package run orchestrates the generation pipeline: staged diff acquisition,
// optional per-file segmentation, prompt construction, completion request,
// parsing, low-value filtering, the confirm loop, and commit creation.
// Everything is synchronous; one segment is processed start-to-finish before
// the next begins.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"commitgen/cli/internal/commitmsg"
	"commitgen/cli/internal/confirm"
	"commitgen/cli/internal/diff"
	"commitgen/cli/internal/erruser"
	"commitgen/cli/internal/git"
	"commitgen/cli/internal/history"
	"commitgen/cli/internal/llm"
	"commitgen/cli/internal/prompt"
	"commitgen/cli/internal/tokens"
)

// Completer is the behavior run needs from the LLM client; tests substitute
// a deterministic fake.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Options carries everything Generate needs. In/Out/ErrOut are injectable
// for tests; nil Out/ErrOut default to the standard streams.
type Options struct {
	RepoRoot string
	StateDir string

	Model       string
	Temperature float64
	MaxTokens   int

	ContextLimit  int
	WarnThreshold float64

	PerFile        bool
	AutoCommit     bool
	// NoCommit runs the full loop but prints the accepted message instead of
	// creating a commit.
	NoCommit bool
	NaiveParse     bool
	LowValueFilter bool
	Verbose        bool
	MsgFile        string

	HistoryEnabled    bool
	HistoryMaxRecords int

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// now is injectable for deterministic history timestamps in tests.
	now func() time.Time
}

// Result summarizes a run for the caller's final report.
type Result struct {
	Committed int
	Printed   int
	Skipped   int
	Aborted   int
	Filtered  int
	// NoStagedChanges is true when the run short-circuited cleanly because
	// there was nothing to describe.
	NoStagedChanges bool
}

type segment struct {
	path string // empty in whole-diff mode
	diff string
}

// Generate runs the pipeline. Provider failures and commit failures are
// fatal for the run; "no staged changes" is a clean short-circuit reported
// in the Result, not an error.
func Generate(ctx context.Context, client Completer, opts Options) (Result, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	segments, res := collectSegments(ctx, opts)
	if res.NoStagedChanges {
		fmt.Fprintln(opts.Out, "No staged changes detected.")
		return res, nil
	}

	systemPrompt, err := prompt.SystemPrompt(opts.StateDir)
	if err != nil {
		return res, erruser.New("Could not load the system prompt override.", err)
	}

	prompter := &confirm.Prompter{In: opts.In, Out: opts.Out, AutoConfirm: opts.AutoCommit}
	for _, seg := range segments {
		if err := processSegment(ctx, client, prompter, systemPrompt, seg, opts, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// collectSegments queries the staged diff and splits it in per-file mode.
// Per-file uses the zero-context variant so each segment costs fewer tokens.
func collectSegments(ctx context.Context, opts Options) ([]segment, Result) {
	var res Result
	if opts.PerFile {
		combined := git.StagedDiffZeroContext(ctx, opts.RepoRoot)
		fds := diff.SplitByFile(combined)
		if len(fds) == 0 {
			res.NoStagedChanges = true
			return nil, res
		}
		segs := make([]segment, 0, len(fds))
		for _, fd := range fds {
			segs = append(segs, segment{path: fd.Path, diff: fd.Content})
		}
		return segs, res
	}

	combined := git.StagedDiff(ctx, opts.RepoRoot)
	if strings.TrimSpace(combined) == "" {
		res.NoStagedChanges = true
		return nil, res
	}
	return []segment{{diff: combined}}, res
}

func processSegment(ctx context.Context, client Completer, prompter *confirm.Prompter, systemPrompt string, seg segment, opts Options, res *Result) error {
	userPrompt := prompt.UserPrompt(seg.diff)
	if warning := tokens.WarnIfOver(tokens.Estimate(systemPrompt+userPrompt), opts.MaxTokens, opts.ContextLimit, opts.WarnThreshold); warning != "" {
		fmt.Fprintln(opts.ErrOut, "Warning: "+warning)
	}

	for attempt := 1; attempt <= confirm.MaxAttempts; attempt++ {
		if opts.Verbose {
			fmt.Fprintf(opts.ErrOut, "--- prompt (attempt %d) ---\n%s\n--- end prompt ---\n", attempt, userPrompt)
		}

		raw, err := client.Complete(ctx, llm.Request{
			Model: opts.Model,
			Messages: []llm.Message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		})
		if err != nil {
			return erruser.New("The completion request failed.", err)
		}
		if opts.Verbose {
			fmt.Fprintf(opts.ErrOut, "--- raw model output ---\n%s\n--- end output ---\n", raw)
		}

		msg := commitmsg.Parse(raw, opts.NaiveParse)

		if opts.LowValueFilter && commitmsg.IsLowValue(msg.Title) {
			fmt.Fprintln(opts.Out, "Detected low-value commit. Skipping.")
			res.Filtered++
			record(opts, seg, msg, history.OutcomeFiltered)
			return nil
		}

		state := prompter.Ask(seg.path, msg)
		switch state {
		case confirm.Confirmed:
			if opts.NoCommit {
				fmt.Fprintln(opts.Out, msg.Format())
				if err := writeMsgFile(opts.MsgFile, msg); err != nil {
					return err
				}
				res.Printed++
				record(opts, seg, msg, history.OutcomePrinted)
				return nil
			}
			if err := commitSegment(ctx, seg, msg, opts); err != nil {
				return err
			}
			prompter.Notify(confirm.Confirmed, msg.Title)
			res.Committed++
			record(opts, seg, msg, history.OutcomeCommitted)
			return nil
		case confirm.Skipped:
			prompter.Notify(confirm.Skipped, msg.Title)
			res.Skipped++
			record(opts, seg, msg, history.OutcomeSkipped)
			return nil
		default:
			prompter.Notify(confirm.Regenerating, "")
			if attempt == confirm.MaxAttempts {
				prompter.Notify(confirm.Aborted, "")
				res.Aborted++
				record(opts, seg, msg, history.OutcomeAborted)
				return nil
			}
		}
	}
	return nil
}

// commitSegment stages the target file in per-file mode, creates the commit,
// and mirrors the accepted message into MsgFile when configured. The per-file
// commit is restricted to the segment's path so other staged files stay staged.
func commitSegment(ctx context.Context, seg segment, msg commitmsg.Message, opts Options) error {
	var paths []string
	if seg.path != "" {
		if err := git.StagePath(ctx, opts.RepoRoot, seg.path); err != nil {
			return err
		}
		paths = []string{seg.path}
	}
	if err := git.Commit(ctx, opts.RepoRoot, msg.Format(), paths...); err != nil {
		return err
	}
	return writeMsgFile(opts.MsgFile, msg)
}

// writeMsgFile mirrors the accepted message into the configured staging file
// (e.g. .git/COMMIT_EDITMSG or a hook-provided path). No-op when unset.
func writeMsgFile(path string, msg commitmsg.Message) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(msg.Format()+"\n"), 0644); err != nil {
		return erruser.New("Could not write the commit message file "+path+".", err)
	}
	return nil
}

// record appends a history line. History is advisory; failures are reported
// but never abort the run.
func record(opts Options, seg segment, msg commitmsg.Message, outcome string) {
	if !opts.HistoryEnabled || opts.StateDir == "" {
		return
	}
	rec := history.Record{
		Path:      seg.path,
		Title:     msg.Title,
		Body:      msg.Body,
		Outcome:   outcome,
		Model:     opts.Model,
		CreatedAt: opts.now().UTC().Format(time.RFC3339),
	}
	if err := history.Append(opts.StateDir, rec, opts.HistoryMaxRecords); err != nil {
		fmt.Fprintf(opts.ErrOut, "Warning: %v\n", err)
	}
}
