// Package history records generation outcomes to .commitgen/history.jsonl,
// one JSON object per line. The log answers "what did the tool propose and
// what did I do with it" after the fact; it is advisory, so history write
// failures never block a commit (callers report and continue).
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"commitgen/cli/internal/erruser"
)

// Outcome constants for Record.Outcome.
const (
	OutcomeCommitted = "committed"
	OutcomePrinted   = "printed" // accepted in no-commit mode
	OutcomeSkipped   = "skipped"
	OutcomeAborted   = "aborted"
	OutcomeFiltered  = "filtered"
)

// Record is one line in history.jsonl.
type Record struct {
	Path      string `json:"path,omitempty"` // file path in per-file mode; empty for whole-diff runs
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Outcome   string `json:"outcome"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"created_at"` // RFC3339
}

const historyFilename = "history.jsonl"

// DefaultMaxRecords bounds the history file; older lines are dropped.
const DefaultMaxRecords = 1000

// Append writes one record as a single JSON line to stateDir/history.jsonl.
// Creates stateDir and the file if missing. If maxRecords > 0 and the file
// exceeds it after appending, the file is rewritten with only the last
// maxRecords lines (atomic via temp + rename).
func Append(stateDir string, record Record, maxRecords int) error {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return erruser.New("Could not create the history directory.", err)
	}
	path := filepath.Join(stateDir, historyFilename)
	line, err := json.Marshal(record)
	if err != nil {
		return erruser.New("Could not record generation history.", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return erruser.New("Could not record generation history.", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return erruser.New("Could not record generation history.", err)
	}
	if err := f.Close(); err != nil {
		return erruser.New("Could not record generation history.", err)
	}

	if maxRecords > 0 {
		if err := truncateIfNeeded(path, maxRecords); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecords reads all records from stateDir/history.jsonl, oldest first.
// Missing file returns nil, nil.
func ReadRecords(stateDir string) ([]Record, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, historyFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, erruser.New("Could not read the history file.", err)
	}
	var out []Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid history line: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// truncateIfNeeded rewrites path with only the last maxRecords lines when it
// has grown past the bound. Atomic: write temp in the same dir, then rename.
func truncateIfNeeded(path string, maxRecords int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return erruser.New("Could not read history for rotation.", err)
	}
	lines := nonEmptyLines(string(data))
	if len(lines) <= maxRecords {
		return nil
	}
	keep := lines[len(lines)-maxRecords:]

	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return erruser.New("Could not rotate history.", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strings.Join(keep, "\n") + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return erruser.New("Could not rotate history.", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return erruser.New("Could not rotate history.", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return erruser.New("Could not rotate history.", err)
	}
	return nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
