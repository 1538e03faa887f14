package tokens

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := Estimate(tt.in); got != tt.want {
			t.Errorf("Estimate(%d bytes) = %d, want %d", len(tt.in), got, tt.want)
		}
	}
}

func TestWarnIfOver(t *testing.T) {
	t.Parallel()

	if w := WarnIfOver(100, 300, 8192, 0.9); w != "" {
		t.Errorf("under threshold: got %q, want empty", w)
	}
	if w := WarnIfOver(8000, 300, 8192, 0.9); w == "" {
		t.Error("over threshold: want a warning")
	}
	if w := WarnIfOver(1000, 300, 0, 0.9); w != "" {
		t.Errorf("contextLimit=0 disables: got %q", w)
	}
	if w := WarnIfOver(-1, 300, 8192, 0.9); w != "" {
		t.Errorf("negative input: got %q", w)
	}
}

func TestWarnIfOver_exactThreshold(t *testing.T) {
	t.Parallel()
	// threshold = 1000 * 0.5 = 500; total of exactly 500 must warn.
	if w := WarnIfOver(200, 300, 1000, 0.5); w == "" {
		t.Error("total equal to threshold should warn")
	}
	if w := WarnIfOver(199, 300, 1000, 0.5); w != "" {
		t.Errorf("total below threshold should not warn, got %q", w)
	}
}
