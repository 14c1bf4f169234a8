package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ragchat/config"
	"ragchat/model"
	"ragchat/rag"
	"ragchat/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	settings      string
	repoRoot      string
	python        string
	module        string
	lang          string
	timeout       time.Duration
	probeTimeout  time.Duration
	formatSupport string
	verbose       bool
}

var (
	logger = zap.NewNop()

	// newExecutor is swapped out in tests so no python process is spawned.
	newExecutor = func() rag.Executor { return rag.ExecExecutor{} }
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ragchat",
		Short: "Chat with a local RAG index through scripts.ask",
		Long: `ragchat is a terminal chat front-end for a retrieval-augmented-generation
tool run as "python -m scripts.ask" from a repository checkout.

Run without arguments to start the interactive chat. Each question is passed
to the tool as a subprocess; when the tool supports --format the concise
answer and the full evidence are fetched in two runs.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so only subcommands log to stderr
			if cmd.Parent() == nil {
				return nil
			}
			l, err := newCLILogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			if opts.verbose && config.DebugLog == nil {
				config.DebugLog = logger.Sugar()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.settings, "settings", "", "settings file (default ~/.config/ragchat/settings.toml)")
	pf.StringVar(&opts.repoRoot, "repo-root", "", "repository containing scripts/ask.py")
	pf.StringVar(&opts.python, "python", "", "python interpreter")
	pf.StringVar(&opts.module, "module", "", "python module to run with -m")
	pf.StringVar(&opts.lang, "lang", "", "UI language (ja or en)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "limit for each ask invocation")
	pf.DurationVar(&opts.probeTimeout, "probe-timeout", 0, "limit for the --help probe")
	pf.StringVar(&opts.formatSupport, "format-support", "", "--format handling: auto, on or off")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr (subcommands only)")

	root.AddCommand(newAskCmd(opts), newProbeCmd(opts))
	return root
}

func newCLILogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadConfig layers settings file, environment and .env files, then the
// flags the user actually passed.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	// .env in the working directory may set RAGCHAT_* before the file is read
	config.LoadDotEnv("")

	cfg, err := config.Load(opts.settings)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return nil, err
	}

	config.InitDebugLog(config.GetCacheDir())

	// The tool reads OPENAI_API_KEY and friends from the repo .env as well
	for _, p := range config.LoadDotEnv(cfg.Tool.RepoRoot) {
		logger.Debug("loaded env file", zap.String("path", p))
	}

	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *globalOptions, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("repo-root") {
		root, err := config.ResolveRepoRoot(opts.repoRoot)
		if err != nil {
			return fmt.Errorf("failed to resolve repo root: %w", err)
		}
		cfg.Tool.RepoRoot = root
	}
	if f.Changed("python") {
		cfg.Tool.Python = opts.python
	}
	if f.Changed("module") {
		cfg.Tool.Module = opts.module
	}
	if f.Changed("lang") {
		cfg.Language = opts.lang
	}
	if f.Changed("timeout") {
		secs, err := wholeSeconds("--timeout", opts.timeout)
		if err != nil {
			return err
		}
		cfg.Tool.TimeoutSeconds = secs
	}
	if f.Changed("probe-timeout") {
		secs, err := wholeSeconds("--probe-timeout", opts.probeTimeout)
		if err != nil {
			return err
		}
		cfg.Tool.ProbeTimeoutSeconds = secs
	}
	if f.Changed("format-support") {
		switch mode := strings.ToLower(opts.formatSupport); mode {
		case config.FormatSupportAuto, config.FormatSupportOn, config.FormatSupportOff:
			cfg.Tool.FormatSupport = mode
		default:
			return fmt.Errorf("invalid --format-support %q (want auto, on or off)", opts.formatSupport)
		}
	}

	return nil
}

// wholeSeconds converts a timeout flag to the settings file's unit. Fractions
// are rejected rather than rounded.
func wholeSeconds(flag string, d time.Duration) (int, error) {
	if d < time.Second {
		return 0, fmt.Errorf("%s must be at least 1s, got %v", flag, d)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("%s must be a whole number of seconds, got %v", flag, d)
	}
	return int(d / time.Second), nil
}

func newTool(cfg *config.Config) rag.Tool {
	return rag.Tool{
		RepoRoot: cfg.Tool.RepoRoot,
		Python:   cfg.Tool.Python,
		Module:   cfg.Tool.Module,
		Env:      cfg.Tool.Env,
	}
}

// newCapability honours a forced format_support and probes lazily otherwise.
func newCapability(cfg *config.Config, tool rag.Tool, exec rag.Executor) *rag.Capability {
	switch cfg.Tool.FormatSupport {
	case config.FormatSupportOn:
		return rag.NewStaticCapability(true)
	case config.FormatSupportOff:
		return rag.NewStaticCapability(false)
	}
	return rag.NewCapability(tool, exec, cfg.ProbeTimeout())
}

func newRunner(cfg *config.Config) (*rag.Runner, *rag.Capability) {
	exec := newExecutor()
	tool := newTool(cfg)
	caps := newCapability(cfg, tool, exec)
	return rag.NewRunner(tool, caps, rag.WithExecutor(exec), rag.WithTimeout(cfg.Timeout())), caps
}

func runChat(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return showError("Configuration Error", err.Error())
	}
	defer config.CloseDebugLog()

	if !config.IsDir(cfg.Tool.RepoRoot) {
		return showError("Repository Not Found", fmt.Sprintf(
			"Repository root does not exist:\n\n%s\n\n"+
				"Set repo_root in %s, RAGCHAT_REPO_ROOT or --repo-root.",
			cfg.Tool.RepoRoot, cfg.Path()))
	}

	if config.DebugLog != nil {
		config.DebugLog.Infof("ragchat %s: %s -m %s in %s (format_support=%s, timeout=%v)",
			Version, cfg.Tool.Python, cfg.Tool.Module, cfg.Tool.RepoRoot, cfg.Tool.FormatSupport, cfg.Timeout())
	}

	runner, caps := newRunner(cfg)
	appModel := model.NewModel(cfg, runner, caps, Version)

	p := tea.NewProgram(ui.NewAppView(appModel), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// showError reports a startup failure in a modal, then returns it so the
// process still exits non-zero.
func showError(title, message string) error {
	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return fmt.Errorf("%s: %s", strings.ToLower(title), message)
}
