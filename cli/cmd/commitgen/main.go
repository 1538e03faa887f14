package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"commitgen/cli/internal/config"
	"commitgen/cli/internal/erruser"
	"commitgen/cli/internal/git"
	"commitgen/cli/internal/llm"
	"commitgen/cli/internal/run"
	"commitgen/cli/internal/version"
)

// errExit is an error that carries an exit code for the CLI. Use errors.As to detect it.
type errExit int

func (e errExit) Error() string {
	return "exit " + strconv.Itoa(int(e))
}

func main() {
	os.Exit(Run())
}

// Run is the entry point for the CLI. It is exported for testing so that
// main.go can meet per-file coverage requirements.
func Run() int {
	return runCLI(os.Args[1:])
}

func runCLI(args []string) int {
	rootCmd := &cobra.Command{
		Use:     "commitgen",
		Short:   "AI-assisted Conventional-Commits message generator",
		Version: version.String(),
	}
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exitErr errExit
		if errors.As(err, &exitErr) {
			return int(exitErr)
		}
		fmt.Fprintln(os.Stderr, err)
		if u := errors.Unwrap(err); u != nil {
			fmt.Fprintf(os.Stderr, "Details: %v\n", u)
		}
		return 1
	}
	return 0
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message for the staged changes",
		RunE:  runGenerate,
	}
	cmd.Flags().Bool("per-file", false, "Split the staged diff and generate one commit per file")
	cmd.Flags().BoolP("yes", "y", false, "Accept every proposal without prompting")
	cmd.Flags().Bool("no-commit", false, "Print the accepted message instead of committing")
	cmd.Flags().BoolP("verbose", "v", false, "Echo the prompt and raw model output to stderr")
	cmd.Flags().Bool("naive-parse", false, "Take the first response line as the title without validation")
	cmd.Flags().Bool("no-filter", false, "Disable the low-value commit filter")
	cmd.Flags().String("model", "", "Model identifier (overrides config and env)")
	cmd.Flags().String("base-url", "", "Completion API base URL (overrides config and env)")
	cmd.Flags().Float64("temperature", 0, "Sampling temperature (overrides config and env)")
	cmd.Flags().Int("max-tokens", 0, "Max completion tokens (overrides config and env)")
	cmd.Flags().Duration("timeout", 0, "Completion request timeout (overrides config and env)")
	cmd.Flags().String("msg-file", "", "Also write the accepted message to this file (e.g. .git/COMMIT_EDITMSG)")
	return cmd
}

// overridesFromFlags builds config overrides from the generate flags that were
// explicitly set, so unset flags never clobber config or env values.
func overridesFromFlags(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	changed := false
	if cmd.Flags().Changed("per-file") {
		v, _ := cmd.Flags().GetBool("per-file")
		o.PerFile = &v
		changed = true
	}
	if cmd.Flags().Changed("yes") {
		v, _ := cmd.Flags().GetBool("yes")
		o.AutoCommit = &v
		changed = true
	}
	if cmd.Flags().Changed("naive-parse") {
		v, _ := cmd.Flags().GetBool("naive-parse")
		o.NaiveParse = &v
		changed = true
	}
	if cmd.Flags().Changed("no-filter") {
		v, _ := cmd.Flags().GetBool("no-filter")
		enabled := !v
		o.LowValueFilter = &enabled
		changed = true
	}
	if cmd.Flags().Changed("model") {
		v, _ := cmd.Flags().GetString("model")
		o.Model = &v
		changed = true
	}
	if cmd.Flags().Changed("base-url") {
		v, _ := cmd.Flags().GetString("base-url")
		o.BaseURL = &v
		changed = true
	}
	if cmd.Flags().Changed("temperature") {
		v, _ := cmd.Flags().GetFloat64("temperature")
		o.Temperature = &v
		changed = true
	}
	if cmd.Flags().Changed("max-tokens") {
		v, _ := cmd.Flags().GetInt("max-tokens")
		o.MaxTokens = &v
		changed = true
	}
	if cmd.Flags().Changed("timeout") {
		v, _ := cmd.Flags().GetDuration("timeout")
		o.Timeout = &v
		changed = true
	}
	if cmd.Flags().Changed("msg-file") {
		v, _ := cmd.Flags().GetString("msg-file")
		o.MsgFile = &v
		changed = true
	}
	if !changed {
		return nil
	}
	return o
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// .env is a convenience for the API credential; absence is fine.
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return erruser.New("Could not determine current directory.", err)
	}
	repoRoot, err := git.RepoRoot(cwd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot, Overrides: overridesFromFlags(cmd)})
	if err != nil {
		return err
	}
	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	noCommit, _ := cmd.Flags().GetBool("no-commit")

	client := llm.NewClient(cfg.BaseURL, apiKey, &http.Client{Timeout: cfg.Timeout})
	opts := run.Options{
		RepoRoot:          repoRoot,
		StateDir:          cfg.EffectiveStateDir(repoRoot),
		Model:             cfg.Model,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		ContextLimit:      cfg.ContextLimit,
		WarnThreshold:     cfg.WarnThreshold,
		PerFile:           cfg.PerFile,
		AutoCommit:        cfg.AutoCommit,
		NoCommit:          noCommit,
		NaiveParse:        cfg.NaiveParse,
		LowValueFilter:    cfg.LowValueFilter,
		Verbose:           verbose,
		MsgFile:           cfg.MsgFile,
		HistoryEnabled:    cfg.HistoryEnabled,
		HistoryMaxRecords: cfg.HistoryMaxRecords,
	}
	if _, err := run.Generate(cmd.Context(), client, opts); err != nil {
		if errors.Is(err, llm.ErrUnreachable) {
			fmt.Fprintf(os.Stderr, "Completion endpoint unreachable at %s. Check the URL and your network.\n", cfg.BaseURL)
			fmt.Fprintf(os.Stderr, "Details: %v\n", err)
			return errExit(2)
		}
		return err
	}
	return nil
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify environment (API credential, endpoint reachability)",
		RunE:  runDoctor,
	}
	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return erruser.New("Could not determine current directory.", err)
	}
	repoRoot := ""
	if r, e := git.RepoRoot(cwd); e == nil {
		repoRoot = r
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot})
	if err != nil {
		return err
	}
	apiKey, err := cfg.APIKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		fmt.Fprintf(os.Stderr, "Set %s in the environment or a .env file.\n", cfg.APIKeyEnv)
		return errExit(1)
	}

	client := llm.NewClient(cfg.BaseURL, apiKey, &http.Client{Timeout: 10 * time.Second})
	if err := client.Check(cmd.Context()); err != nil {
		if errors.Is(err, llm.ErrUnreachable) {
			fmt.Fprintf(os.Stderr, "Completion endpoint unreachable at %s. Check the URL and your network.\n", cfg.BaseURL)
			fmt.Fprintf(os.Stderr, "Details: %v\n", err)
			return errExit(2)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return errExit(1)
	}
	fmt.Fprintln(os.Stdout, "Endpoint OK")
	fmt.Fprintf(os.Stdout, "Model: %s\n", cfg.Model)
	return nil
}
