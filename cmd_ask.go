package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragchat/config"
	"ragchat/model"
	"ragchat/rag"
	"ragchat/ui"
)

var errNoAnswer = errors.New("no answer")

type askOptions struct {
	storage  string
	k        int
	backend  string
	model    string
	noRerank bool
	evidence bool
}

func newAskCmd(global *globalOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Long: `Runs the same query the chat would run for a single question and prints
the answer to stdout. Sidebar defaults come from the settings file; the flags
below override them for this call only.

Example:
  ragchat ask --k 8 --llm-backend none "東京の人口は？"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, global, opts, strings.Join(args, " "))
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.storage, "storage", "", "index storage path")
	f.IntVar(&opts.k, "k", 0, fmt.Sprintf("number of fragments to retrieve (%d-%d)", config.MinTopK, config.MaxTopK))
	f.StringVar(&opts.backend, "llm-backend", "", "openai, compatible-local or none")
	f.StringVar(&opts.model, "llm-model", "", "model name passed to the backend")
	f.BoolVar(&opts.noRerank, "no-rerank", false, "disable reranking")
	f.BoolVarP(&opts.evidence, "evidence", "e", false, "print the evidence after the answer")

	return cmd
}

// queryConfig starts from the settings defaults and applies the flags that
// were set.
func (o *askOptions) queryConfig(cmd *cobra.Command, defaults config.QueryDefaults) (rag.QueryConfig, error) {
	q := model.QueryConfigFromDefaults(defaults)
	f := cmd.Flags()

	if f.Changed("storage") {
		q.Storage = o.storage
	}
	if f.Changed("k") {
		if o.k < config.MinTopK || o.k > config.MaxTopK {
			return q, fmt.Errorf("--k must be between %d and %d, got %d", config.MinTopK, config.MaxTopK, o.k)
		}
		q.K = o.k
	}
	if f.Changed("llm-backend") {
		b, err := rag.ParseBackend(o.backend)
		if err != nil {
			return q, err
		}
		q.Backend = b
	}
	if f.Changed("llm-model") {
		q.Model = o.model
	}
	if f.Changed("no-rerank") {
		q.Rerank = !o.noRerank
	}

	return q, q.Validate()
}

func runAsk(cmd *cobra.Command, global *globalOptions, opts *askOptions, question string) error {
	cfg, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}
	defer config.CloseDebugLog()

	q, err := opts.queryConfig(cmd, cfg.Query)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, _ := newRunner(cfg)
	logger.Debug("asking",
		zap.String("backend", string(q.Backend)),
		zap.Int("k", q.K),
		zap.Bool("rerank", q.Rerank),
		zap.String("repo_root", cfg.Tool.RepoRoot))

	ans, askErr := runner.Ask(ctx, question, q)
	if askErr != nil {
		logger.Warn("ask tool failed", zap.Error(askErr))
	} else {
		logger.Debug("answered",
			zap.Int("invocations", ans.Invocations),
			zap.Ints("exit_codes", ans.ExitCodes))
	}

	// Folded the same way as in the chat so errors land in the evidence
	history := model.NewModel(cfg, nil, nil, Version)
	msg := history.FoldAnswer(ans, askErr, ui.LocaleFor(cfg.Language).Placeholder)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, msg.Content)
	if opts.evidence || (msg.Failed && msg.HasEvidence()) {
		fmt.Fprintf(out, "\n---\n%s\n", msg.Evidence)
	}

	if msg.Failed {
		if askErr != nil {
			return askErr
		}
		return errNoAnswer
	}
	return nil
}
