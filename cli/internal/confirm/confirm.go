// Package confirm implements the accept/regenerate/skip loop as an explicit
// finite-state machine, so the bounded-retry behavior is testable without a
// terminal.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"commitgen/cli/internal/commitmsg"
)

// State of one generation unit (the whole diff, or one file in per-file mode).
type State int

const (
	// Generated: a message has been proposed and awaits a user decision.
	Generated State = iota
	// Confirmed: the user accepted; the caller commits.
	Confirmed
	// Regenerating: the user asked for another attempt.
	Regenerating
	// Skipped: the user declined; no commit.
	Skipped
	// Aborted: the attempt budget ran out; no commit.
	Aborted
)

// MaxAttempts bounds regeneration per unit. After the third generated
// message is declined, the loop force-transitions to Aborted.
const MaxAttempts = 3

// String returns the state name for logs and history records.
func (s State) String() string {
	switch s {
	case Generated:
		return "generated"
	case Confirmed:
		return "confirmed"
	case Regenerating:
		return "regenerating"
	case Skipped:
		return "skipped"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition maps a user choice to the next state from Generated.
// "y" (or empty input, the default) confirms; "s" and "n" skip; anything
// else regenerates. Choices are case-insensitive and trimmed.
func Transition(choice string) State {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "y", "yes", "":
		return Confirmed
	case "s", "skip", "n", "no":
		return Skipped
	default:
		return Regenerating
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	acceptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	retryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Prompter renders a proposed message and reads the user's choice.
// In and Out are injectable for tests; AutoConfirm bypasses the prompt
// entirely (every proposal transitions straight to Confirmed).
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	AutoConfirm bool

	reader *bufio.Reader
}

// Ask shows the proposal (path is empty in whole-diff mode) and returns the
// next state. Input errors (e.g. closed stdin) read as Skipped so a broken
// pipe never commits.
func (p *Prompter) Ask(path string, msg commitmsg.Message) State {
	if p.AutoConfirm {
		return Confirmed
	}
	if path != "" {
		fmt.Fprintln(p.Out, labelStyle.Render("File: ")+path)
	}
	fmt.Fprintln(p.Out, labelStyle.Render("Suggested commit title:"))
	fmt.Fprintln(p.Out, titleStyle.Render(msg.Title))
	if msg.Body != "" {
		fmt.Fprintln(p.Out, labelStyle.Render("Suggested commit body:"))
		fmt.Fprintln(p.Out, msg.Body)
	}
	fmt.Fprint(p.Out, "Use this commit message? (y = yes, r = regenerate, s = skip) [y]: ")

	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return Skipped
	}
	return Transition(line)
}

// Notify prints a colored status line for a terminal state.
func (p *Prompter) Notify(state State, detail string) {
	switch state {
	case Confirmed:
		fmt.Fprintln(p.Out, acceptStyle.Render("Commit created: ")+detail)
	case Skipped:
		fmt.Fprintln(p.Out, skipStyle.Render("Skipped: ")+detail)
	case Regenerating:
		fmt.Fprintln(p.Out, retryStyle.Render("Regenerating commit message..."))
	case Aborted:
		fmt.Fprintln(p.Out, skipStyle.Render("Maximum retries reached. Aborting commit."))
	}
}
