package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// emptyEnv is a non-nil env slice so Load does not fall back to os.Environ().
var emptyEnv = []string{"_COMMITGEN_TEST=1"}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_defaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(LoadOptions{GlobalConfigPath: filepath.Join(t.TempDir(), "none.toml"), Env: emptyEnv})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load defaults = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_globalFile(t *testing.T) {
	t.Parallel()
	global := writeConfig(t, t.TempDir(), `
model = "mixtral-8x7b-32768"
temperature = 0.5
timeout = "90s"
per_file = true
`)
	cfg, err := Load(LoadOptions{GlobalConfigPath: global, Env: emptyEnv})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "mixtral-8x7b-32768" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Temperature != 0.5 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.PerFile {
		t.Error("PerFile should be true")
	}
	// Untouched keys keep defaults.
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
}

func TestLoad_repoOverridesGlobal(t *testing.T) {
	t.Parallel()
	global := writeConfig(t, t.TempDir(), "model = \"from-global\"\nmax_tokens = 111\n")

	repoRoot := t.TempDir()
	repoDir := filepath.Join(repoRoot, ".commitgen")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, repoDir, "model = \"from-repo\"\n")

	cfg, err := Load(LoadOptions{RepoRoot: repoRoot, GlobalConfigPath: global, Env: emptyEnv})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-repo" {
		t.Errorf("Model = %q, want repo value", cfg.Model)
	}
	if cfg.MaxTokens != 111 {
		t.Errorf("MaxTokens = %d, want global value to survive", cfg.MaxTokens)
	}
}

func TestLoad_envOverridesFiles(t *testing.T) {
	t.Parallel()
	global := writeConfig(t, t.TempDir(), "model = \"from-file\"\n")
	env := []string{
		"COMMITGEN_MODEL=from-env",
		"COMMITGEN_TIMEOUT=120",
		"COMMITGEN_AUTO_COMMIT=yes",
		"COMMITGEN_LOW_VALUE_FILTER=off",
	}
	cfg, err := Load(LoadOptions{GlobalConfigPath: global, Env: env})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-env" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want bare integer treated as seconds", cfg.Timeout)
	}
	if !cfg.AutoCommit {
		t.Error("AutoCommit should be true")
	}
	if cfg.LowValueFilter {
		t.Error("LowValueFilter should be false")
	}
}

func TestLoad_overridesWin(t *testing.T) {
	t.Parallel()
	model := "from-flag"
	naive := true
	cfg, err := Load(LoadOptions{
		GlobalConfigPath: filepath.Join(t.TempDir(), "none.toml"),
		Env:              []string{"COMMITGEN_MODEL=from-env"},
		Overrides:        &Overrides{Model: &model, NaiveParse: &naive},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-flag" {
		t.Errorf("Model = %q, want flag override", cfg.Model)
	}
	if !cfg.NaiveParse {
		t.Error("NaiveParse override should apply")
	}
}

func TestLoad_invalidTOML(t *testing.T) {
	t.Parallel()
	global := writeConfig(t, t.TempDir(), "model = [broken\n")
	if _, err := Load(LoadOptions{GlobalConfigPath: global, Env: emptyEnv}); err == nil {
		t.Fatal("Load(invalid TOML): expected error")
	}
}

func TestLoad_invalidEnvValues(t *testing.T) {
	t.Parallel()
	none := filepath.Join(t.TempDir(), "none.toml")
	for _, env := range [][]string{
		{"COMMITGEN_TEMPERATURE=hot"},
		{"COMMITGEN_TEMPERATURE=3.5"},
		{"COMMITGEN_MAX_TOKENS=-5"},
		{"COMMITGEN_TIMEOUT=soon"},
		{"COMMITGEN_PER_FILE=maybe"},
	} {
		if _, err := Load(LoadOptions{GlobalConfigPath: none, Env: env}); err == nil {
			t.Errorf("Load(%v): expected error", env)
		}
	}
}

func TestEffectiveStateDir(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if got := cfg.EffectiveStateDir("/repo"); got != filepath.Join("/repo", ".commitgen") {
		t.Errorf("EffectiveStateDir = %q", got)
	}
	cfg.StateDir = "/elsewhere"
	if got := cfg.EffectiveStateDir("/repo"); got != "/elsewhere" {
		t.Errorf("EffectiveStateDir = %q, want explicit StateDir", got)
	}
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeyEnv = "COMMITGEN_TEST_KEY"

	t.Setenv("COMMITGEN_TEST_KEY", "")
	if _, err := cfg.APIKey(); err == nil {
		t.Fatal("APIKey with unset env: expected error")
	}

	t.Setenv("COMMITGEN_TEST_KEY", "sk-test")
	key, err := cfg.APIKey()
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("APIKey = %q", key)
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()
	d, err := parseDuration("2m")
	if err != nil || d != 2*time.Minute {
		t.Errorf("parseDuration(2m) = %v, %v", d, err)
	}
	d, err = parseDuration("45")
	if err != nil || d != 45*time.Second {
		t.Errorf("parseDuration(45) = %v, %v", d, err)
	}
	if _, err := parseDuration("later"); err == nil {
		t.Error("parseDuration(later): expected error")
	}
}
