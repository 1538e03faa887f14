package version

import "testing"

func TestString_release(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version = "v1.2.0"
	Commit = "abc1234"
	if got := String(); got != "v1.2.0" {
		t.Errorf("String() = %q, want %q", got, "v1.2.0")
	}
}

func TestString_devWithCommit(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version = "dev"
	Commit = "abc1234"
	if got := String(); got != "dev (abc1234)" {
		t.Errorf("String() = %q, want %q", got, "dev (abc1234)")
	}
}

func TestString_devWithoutCommit(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version = "dev"
	Commit = ""
	if got := String(); got != "dev" {
		t.Errorf("String() = %q, want %q", got, "dev")
	}
}
