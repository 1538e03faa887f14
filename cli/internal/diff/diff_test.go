package diff

import (
	"strings"
	"testing"
)

const twoFileDiff = `diff --git a/x b/x
index 1111111..2222222 100644
--- a/x
+++ b/x
@@ -0,0 +1 @@
+line in x
diff --git a/y b/y
index 3333333..4444444 100644
--- a/y
+++ b/y
@@ -0,0 +1 @@
+line in y
`

func TestSplitByFile_twoFiles(t *testing.T) {
	t.Parallel()
	got := SplitByFile(twoFileDiff)
	if len(got) != 2 {
		t.Fatalf("SplitByFile: %d segments, want 2", len(got))
	}
	if got[0].Path != "x" || got[1].Path != "y" {
		t.Errorf("paths = %q, %q, want x, y", got[0].Path, got[1].Path)
	}
	if !strings.HasPrefix(got[0].Content, "diff --git a/x b/x") {
		t.Errorf("segment x does not start at its boundary:\n%s", got[0].Content)
	}
	if !strings.HasPrefix(got[1].Content, "diff --git a/y b/y") {
		t.Errorf("segment y does not start at its boundary:\n%s", got[1].Content)
	}
	if strings.Contains(got[0].Content, "line in y") {
		t.Error("segment x contains y's lines")
	}
	if strings.Contains(got[1].Content, "line in x") {
		t.Error("segment y contains x's lines")
	}
}

func TestSplitByFile_empty(t *testing.T) {
	t.Parallel()
	if got := SplitByFile(""); got != nil {
		t.Errorf("SplitByFile(\"\") = %v, want nil", got)
	}
	if got := SplitByFile("  \n\t\n"); got != nil {
		t.Errorf("SplitByFile(whitespace) = %v, want nil", got)
	}
}

func TestSplitByFile_leadingGarbageDropped(t *testing.T) {
	t.Parallel()
	got := SplitByFile("warning: CRLF will be replaced\n" + twoFileDiff)
	if len(got) != 2 {
		t.Fatalf("SplitByFile: %d segments, want 2", len(got))
	}
	if strings.Contains(got[0].Content, "warning:") {
		t.Error("text before the first boundary leaked into a segment")
	}
}

func TestSplitByFile_singleFile(t *testing.T) {
	t.Parallel()
	in := "diff --git a/only.go b/only.go\n@@ -1 +1 @@\n-old\n+new\n"
	got := SplitByFile(in)
	if len(got) != 1 {
		t.Fatalf("SplitByFile: %d segments, want 1", len(got))
	}
	if got[0].Path != "only.go" {
		t.Errorf("path = %q, want only.go", got[0].Path)
	}
	if got[0].Content != in {
		t.Errorf("content = %q, want input unchanged", got[0].Content)
	}
}

func TestSplitByFile_rename(t *testing.T) {
	t.Parallel()
	in := "diff --git a/old/name.go b/new/name.go\nsimilarity index 100%\nrename from old/name.go\nrename to new/name.go\n"
	got := SplitByFile(in)
	if len(got) != 1 {
		t.Fatalf("SplitByFile: %d segments, want 1", len(got))
	}
	if got[0].Path != "new/name.go" {
		t.Errorf("path = %q, want b-side new/name.go", got[0].Path)
	}
}

func TestSplitByFile_adjacentBoundaries(t *testing.T) {
	t.Parallel()
	// Two boundary lines back to back: both segments exist, neither is empty.
	in := "diff --git a/a b/a\ndiff --git a/b b/b\n+x\n"
	got := SplitByFile(in)
	if len(got) != 2 {
		t.Fatalf("SplitByFile: %d segments, want 2", len(got))
	}
	for _, fd := range got {
		if strings.TrimSpace(fd.Content) == "" {
			t.Errorf("segment %q has empty content", fd.Path)
		}
	}
}

func TestSplitByFile_binaryNoticeKept(t *testing.T) {
	t.Parallel()
	in := "diff --git a/img.png b/img.png\nBinary files a/img.png and b/img.png differ\n"
	got := SplitByFile(in)
	if len(got) != 1 {
		t.Fatalf("SplitByFile: %d segments, want 1", len(got))
	}
	if !strings.Contains(got[0].Content, "Binary files") {
		t.Error("binary notice should be kept in the segment")
	}
}
