// Package config provides commitgen configuration with a defined load order:
// CLI flags > environment variables > repo config > global config > defaults.
//
// Paths:
//   - Repo: .commitgen/config.toml (relative to repo root)
//   - Global: XDG config dir, e.g. ~/.config/commitgen/config.toml (see os.UserConfigDir)
//
// Environment variables (override config files when set):
//   - COMMITGEN_MODEL, COMMITGEN_BASE_URL, COMMITGEN_API_KEY_ENV,
//   - COMMITGEN_TEMPERATURE, COMMITGEN_MAX_TOKENS,
//   - COMMITGEN_TIMEOUT (Go duration string or integer seconds),
//   - COMMITGEN_CONTEXT_LIMIT, COMMITGEN_WARN_THRESHOLD,
//   - COMMITGEN_PER_FILE, COMMITGEN_AUTO_COMMIT, COMMITGEN_NAIVE_PARSE,
//     COMMITGEN_LOW_VALUE_FILTER, COMMITGEN_HISTORY_ENABLED (1/true/yes/on or 0/false/no/off),
//   - COMMITGEN_HISTORY_MAX_RECORDS, COMMITGEN_STATE_DIR, COMMITGEN_MSG_FILE.
//
// The API credential itself is never stored in config files; APIKeyEnv names
// the environment variable that holds it (default GROQ_API_KEY).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"commitgen/cli/internal/erruser"
)

// Config holds all commitgen configuration. Empty StateDir means "use
// repoRoot/.commitgen".
type Config struct {
	Model         string        `toml:"model"`
	BaseURL       string        `toml:"base_url"`
	APIKeyEnv     string        `toml:"api_key_env"`
	Temperature   float64       `toml:"temperature"`
	MaxTokens     int           `toml:"max_tokens"`
	Timeout       time.Duration `toml:"timeout"`
	ContextLimit  int           `toml:"context_limit"`
	WarnThreshold float64       `toml:"warn_threshold"`
	// PerFile splits the staged diff and generates one commit per file.
	PerFile bool `toml:"per_file"`
	// AutoCommit accepts every proposal without prompting.
	AutoCommit bool `toml:"auto_commit"`
	// NaiveParse takes the first response line as the title instead of
	// scanning for a conventional-commit line.
	NaiveParse bool `toml:"naive_parse"`
	// LowValueFilter abandons generations whose title looks like debug
	// scaffolding or a trivial edit.
	LowValueFilter bool `toml:"low_value_filter"`
	// MsgFile, when set, also receives the accepted message (e.g. a
	// prepare-commit-msg hook path or .git/COMMIT_EDITMSG).
	MsgFile           string `toml:"msg_file"`
	HistoryEnabled    bool   `toml:"history_enabled"`
	HistoryMaxRecords int    `toml:"history_max_records"`
	StateDir          string `toml:"state_dir"`
}

// Overrides represents optional CLI flag overrides. Non-nil pointer means
// "override with this value".
type Overrides struct {
	Model             *string
	BaseURL           *string
	APIKeyEnv         *string
	Temperature       *float64
	MaxTokens         *int
	Timeout           *time.Duration
	ContextLimit      *int
	WarnThreshold     *float64
	PerFile           *bool
	AutoCommit        *bool
	NaiveParse        *bool
	LowValueFilter    *bool
	MsgFile           *string
	HistoryEnabled    *bool
	HistoryMaxRecords *int
	StateDir          *string
}

// LoadOptions configures Load. All fields are optional.
type LoadOptions struct {
	// RepoRoot is the repository root; if set, repo config is RepoRoot/.commitgen/config.toml.
	RepoRoot string
	// GlobalConfigPath is the global config file path; if empty, XDG path is used.
	GlobalConfigPath string
	// Env is the environment key=value slice; if nil, os.Environ() is used.
	Env []string
	// Overrides are applied last (highest precedence).
	Overrides *Overrides
}

const (
	_defaultModel             = "llama3-8b-8192"
	_defaultBaseURL           = "https://api.groq.com/openai/v1"
	_defaultAPIKeyEnv         = "GROQ_API_KEY"
	_defaultTemperature       = 0.2
	_defaultMaxTokens         = 300
	_defaultTimeout           = 60 * time.Second
	_defaultContextLimit      = 8192
	_defaultWarnThreshold     = 0.9
	_defaultHistoryMaxRecords = 1000
)

// DefaultConfig returns the default configuration (no I/O).
func DefaultConfig() Config {
	return Config{
		Model:             _defaultModel,
		BaseURL:           _defaultBaseURL,
		APIKeyEnv:         _defaultAPIKeyEnv,
		Temperature:       _defaultTemperature,
		MaxTokens:         _defaultMaxTokens,
		Timeout:           _defaultTimeout,
		ContextLimit:      _defaultContextLimit,
		WarnThreshold:     _defaultWarnThreshold,
		PerFile:           false,
		AutoCommit:        false,
		NaiveParse:        false,
		LowValueFilter:    true,
		HistoryEnabled:    true,
		HistoryMaxRecords: _defaultHistoryMaxRecords,
	}
}

// EffectiveStateDir returns the directory used for history and the system
// prompt override. If StateDir is set, it is returned as-is; otherwise
// repoRoot/.commitgen is returned.
func (c Config) EffectiveStateDir(repoRoot string) string {
	if c.StateDir != "" {
		return c.StateDir
	}
	return filepath.Join(repoRoot, ".commitgen")
}

// APIKey reads the credential from the environment variable named by
// APIKeyEnv. Absence is a fatal startup condition for generation; the error
// names the variable so the fix is obvious.
func (c Config) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(c.APIKeyEnv))
	if key == "" {
		return "", erruser.New(c.APIKeyEnv+" is not set in the environment.", nil)
	}
	return key, nil
}

// Load loads configuration with precedence: defaults < global file < repo file < env < overrides.
// Missing config files are ignored. Invalid TOML or invalid env values return an error.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	cfg := DefaultConfig()

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, erruser.New("Could not determine config directory.", err)
		}
		globalPath = filepath.Join(dir, "commitgen", "config.toml")
	}
	if err := mergeFile(&cfg, globalPath); err != nil {
		return nil, err
	}

	if opts.RepoRoot != "" {
		repoPath := filepath.Join(opts.RepoRoot, ".commitgen", "config.toml")
		if err := mergeFile(&cfg, repoPath); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, opts.Env); err != nil {
		return nil, err
	}

	applyOverrides(&cfg, opts.Overrides)
	return &cfg, nil
}

// mergeFile reads path and merges into cfg. Only fields present in the file
// overwrite (pointer decode), so an absent key keeps the previous value.
// Missing file is skipped (no error).
func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return erruser.New("Invalid configuration file.", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return erruser.New("Could not read configuration file.", err)
	}
	var file struct {
		Model             *string  `toml:"model"`
		BaseURL           *string  `toml:"base_url"`
		APIKeyEnv         *string  `toml:"api_key_env"`
		Temperature       *float64 `toml:"temperature"`
		MaxTokens         *int64   `toml:"max_tokens"`
		Timeout           *string  `toml:"timeout"`
		ContextLimit      *int64   `toml:"context_limit"`
		WarnThreshold     *float64 `toml:"warn_threshold"`
		PerFile           *bool    `toml:"per_file"`
		AutoCommit        *bool    `toml:"auto_commit"`
		NaiveParse        *bool    `toml:"naive_parse"`
		LowValueFilter    *bool    `toml:"low_value_filter"`
		MsgFile           *string  `toml:"msg_file"`
		HistoryEnabled    *bool    `toml:"history_enabled"`
		HistoryMaxRecords *int64   `toml:"history_max_records"`
		StateDir          *string  `toml:"state_dir"`
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		return erruser.New("Invalid configuration in "+path+".", err)
	}
	if file.Model != nil && *file.Model != "" {
		cfg.Model = *file.Model
	}
	if file.BaseURL != nil && *file.BaseURL != "" {
		cfg.BaseURL = *file.BaseURL
	}
	if file.APIKeyEnv != nil && *file.APIKeyEnv != "" {
		cfg.APIKeyEnv = *file.APIKeyEnv
	}
	if file.Temperature != nil && *file.Temperature >= 0 && *file.Temperature <= 2 {
		cfg.Temperature = *file.Temperature
	}
	if file.MaxTokens != nil && *file.MaxTokens > 0 {
		cfg.MaxTokens = int(*file.MaxTokens)
	}
	if file.Timeout != nil && *file.Timeout != "" {
		d, err := parseDuration(*file.Timeout)
		if err != nil {
			return erruser.New("Configuration timeout is invalid.", err)
		}
		cfg.Timeout = d
	}
	if file.ContextLimit != nil && *file.ContextLimit >= 0 {
		cfg.ContextLimit = int(*file.ContextLimit)
	}
	if file.WarnThreshold != nil && *file.WarnThreshold >= 0 {
		cfg.WarnThreshold = *file.WarnThreshold
	}
	if file.PerFile != nil {
		cfg.PerFile = *file.PerFile
	}
	if file.AutoCommit != nil {
		cfg.AutoCommit = *file.AutoCommit
	}
	if file.NaiveParse != nil {
		cfg.NaiveParse = *file.NaiveParse
	}
	if file.LowValueFilter != nil {
		cfg.LowValueFilter = *file.LowValueFilter
	}
	if file.MsgFile != nil {
		cfg.MsgFile = *file.MsgFile
	}
	if file.HistoryEnabled != nil {
		cfg.HistoryEnabled = *file.HistoryEnabled
	}
	if file.HistoryMaxRecords != nil && *file.HistoryMaxRecords >= 0 {
		cfg.HistoryMaxRecords = int(*file.HistoryMaxRecords)
	}
	if file.StateDir != nil {
		cfg.StateDir = *file.StateDir
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Try Go duration first (e.g. "90s", "2m")
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}
	// Try integer seconds
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(n) * time.Second, nil
}

// env key names for config
const (
	envModel             = "COMMITGEN_MODEL"
	envBaseURL           = "COMMITGEN_BASE_URL"
	envAPIKeyEnv         = "COMMITGEN_API_KEY_ENV"
	envTemperature       = "COMMITGEN_TEMPERATURE"
	envMaxTokens         = "COMMITGEN_MAX_TOKENS"
	envTimeout           = "COMMITGEN_TIMEOUT"
	envContextLimit      = "COMMITGEN_CONTEXT_LIMIT"
	envWarnThreshold     = "COMMITGEN_WARN_THRESHOLD"
	envPerFile           = "COMMITGEN_PER_FILE"
	envAutoCommit        = "COMMITGEN_AUTO_COMMIT"
	envNaiveParse        = "COMMITGEN_NAIVE_PARSE"
	envLowValueFilter    = "COMMITGEN_LOW_VALUE_FILTER"
	envMsgFile           = "COMMITGEN_MSG_FILE"
	envHistoryEnabled    = "COMMITGEN_HISTORY_ENABLED"
	envHistoryMaxRecords = "COMMITGEN_HISTORY_MAX_RECORDS"
	envStateDir          = "COMMITGEN_STATE_DIR"
)

func applyEnv(cfg *Config, env []string) error {
	vals := make(map[string]string)
	for _, e := range env {
		idx := strings.Index(e, "=")
		if idx <= 0 {
			continue
		}
		vals[strings.TrimSpace(e[:idx])] = strings.TrimSpace(e[idx+1:])
	}
	if v, ok := vals[envModel]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := vals[envBaseURL]; ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := vals[envAPIKeyEnv]; ok && v != "" {
		cfg.APIKeyEnv = v
	}
	if v, ok := vals[envTemperature]; ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return erruser.New("COMMITGEN_TEMPERATURE must be a valid number.", err)
		}
		if f < 0 || f > 2 {
			return erruser.New("COMMITGEN_TEMPERATURE must be between 0 and 2.", nil)
		}
		cfg.Temperature = f
	}
	if v, ok := vals[envMaxTokens]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return erruser.New("COMMITGEN_MAX_TOKENS must be a positive number.", err)
		}
		cfg.MaxTokens = n
	}
	if v, ok := vals[envTimeout]; ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return erruser.New("COMMITGEN_TIMEOUT must be a valid duration.", err)
		}
		cfg.Timeout = d
	}
	if v, ok := vals[envContextLimit]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return erruser.New("COMMITGEN_CONTEXT_LIMIT must be a non-negative number.", err)
		}
		cfg.ContextLimit = n
	}
	if v, ok := vals[envWarnThreshold]; ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return erruser.New("COMMITGEN_WARN_THRESHOLD must be a non-negative number.", err)
		}
		cfg.WarnThreshold = f
	}
	boolEnvs := []struct {
		key  string
		dest *bool
	}{
		{envPerFile, &cfg.PerFile},
		{envAutoCommit, &cfg.AutoCommit},
		{envNaiveParse, &cfg.NaiveParse},
		{envLowValueFilter, &cfg.LowValueFilter},
		{envHistoryEnabled, &cfg.HistoryEnabled},
	}
	for _, be := range boolEnvs {
		v, ok := vals[be.key]
		if !ok || v == "" {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return erruser.New(be.key+" must be 1/true/yes/on or 0/false/no/off.", err)
		}
		*be.dest = b
	}
	if v, ok := vals[envMsgFile]; ok {
		cfg.MsgFile = v
	}
	if v, ok := vals[envHistoryMaxRecords]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return erruser.New("COMMITGEN_HISTORY_MAX_RECORDS must be a non-negative number.", err)
		}
		cfg.HistoryMaxRecords = n
	}
	if v, ok := vals[envStateDir]; ok {
		cfg.StateDir = v
	}
	return nil
}

// parseBool parses common boolean env values: 1/true/yes/on = true, 0/false/no/off = false (case-insensitive).
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o == nil {
		return
	}
	if o.Model != nil && *o.Model != "" {
		cfg.Model = *o.Model
	}
	if o.BaseURL != nil && *o.BaseURL != "" {
		cfg.BaseURL = *o.BaseURL
	}
	if o.APIKeyEnv != nil && *o.APIKeyEnv != "" {
		cfg.APIKeyEnv = *o.APIKeyEnv
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil && *o.MaxTokens > 0 {
		cfg.MaxTokens = *o.MaxTokens
	}
	if o.Timeout != nil && *o.Timeout > 0 {
		cfg.Timeout = *o.Timeout
	}
	if o.ContextLimit != nil && *o.ContextLimit >= 0 {
		cfg.ContextLimit = *o.ContextLimit
	}
	if o.WarnThreshold != nil && *o.WarnThreshold >= 0 {
		cfg.WarnThreshold = *o.WarnThreshold
	}
	if o.PerFile != nil {
		cfg.PerFile = *o.PerFile
	}
	if o.AutoCommit != nil {
		cfg.AutoCommit = *o.AutoCommit
	}
	if o.NaiveParse != nil {
		cfg.NaiveParse = *o.NaiveParse
	}
	if o.LowValueFilter != nil {
		cfg.LowValueFilter = *o.LowValueFilter
	}
	if o.MsgFile != nil {
		cfg.MsgFile = *o.MsgFile
	}
	if o.HistoryEnabled != nil {
		cfg.HistoryEnabled = *o.HistoryEnabled
	}
	if o.HistoryMaxRecords != nil && *o.HistoryMaxRecords >= 0 {
		cfg.HistoryMaxRecords = *o.HistoryMaxRecords
	}
	if o.StateDir != nil {
		cfg.StateDir = *o.StateDir
	}
}
