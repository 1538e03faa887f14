// Package diff splits a combined unified diff into per-file segments.
//
// # Boundaries
// Git emits one "diff --git a/X b/Y" line per file. Each segment starts at
// its boundary line and runs until the next boundary or end of input. The
// b-side path is used (the post-image name, correct for renames).
//
// # Binary files
// Binary sections are kept as-is; the "Binary files ... differ" notice is
// itself useful signal for a commit message.
//
// # Fidelity
// Concatenating the segments is not guaranteed to reproduce the combined
// diff byte-for-byte; callers that need the whole diff should keep the
// original string.
package diff

import (
	"bufio"
	"strings"
)

const boundaryPrefix = "diff --git "

// FileDiff is one file's slice of a combined diff.
type FileDiff struct {
	Path    string // repo-relative path (b side)
	Content string // segment text, starting at the boundary line
}

// SplitByFile scans a combined unified diff line by line and returns one
// FileDiff per "diff --git" boundary, in input order. A boundary followed
// immediately by another boundary still produces a segment (its content is
// just the boundary line); text before the first boundary is dropped.
// Empty or whitespace-only input returns nil.
func SplitByFile(combined string) []FileDiff {
	if strings.TrimSpace(combined) == "" {
		return nil
	}

	var (
		out     []FileDiff
		path    string
		current []string
	)
	flush := func() {
		if path == "" || len(current) == 0 {
			return
		}
		out = append(out, FileDiff{Path: path, Content: strings.Join(current, "\n") + "\n"})
	}

	sc := bufio.NewScanner(strings.NewReader(combined))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, boundaryPrefix) {
			flush()
			path = pathFromBoundary(line)
			current = []string{line}
			continue
		}
		if path != "" {
			current = append(current, line)
		}
	}
	flush()
	return out
}

// pathFromBoundary extracts the b-side path from a "diff --git a/X b/Y" line.
// Falls back to the a-side when the b field is missing or malformed.
func pathFromBoundary(line string) string {
	rest := strings.TrimPrefix(line, boundaryPrefix)
	fields := strings.Fields(rest)
	if len(fields) >= 2 {
		if p := trimSide(fields[1]); p != "" {
			return p
		}
	}
	if len(fields) >= 1 {
		return trimSide(fields[0])
	}
	return ""
}

func trimSide(s string) string {
	if len(s) >= 2 && (s[0] == 'a' || s[0] == 'b') && s[1] == '/' {
		return s[2:]
	}
	return s
}
