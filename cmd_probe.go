package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ragchat/config"
	"ragchat/provider"
	"ragchat/rag"
)

const pingTimeout = 5 * time.Second

func newProbeCmd(global *globalOptions) *cobra.Command {
	var pingBackends bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the ask tool runs and whether it supports --format",
		Long: `Runs "<python> -m <module> --help" the way the chat does on start-up and
reports whether the tool accepts --format (two-phase answers) or not.

With --backends, each configured LLM backend endpoint is also pinged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			defer config.CloseDebugLog()

			out := cmd.OutOrStdout()
			tool := newTool(cfg)

			// Always probe, so a forced format_support can be checked against reality
			caps := rag.NewCapability(tool, newExecutor(), cfg.ProbeTimeout())
			start := time.Now()
			supported := caps.Supported(cmd.Context())
			logger.Debug("probe finished", zap.Bool("supported", supported), zap.Duration("took", time.Since(start)))

			fmt.Fprintf(out, "command:        %s\n", tool.Command(nil, 0))
			fmt.Fprintf(out, "repo root:      %s\n", cfg.Tool.RepoRoot)
			fmt.Fprintf(out, "--format:       %s\n", yesNo(supported))
			fmt.Fprintf(out, "format_support: %s\n", cfg.Tool.FormatSupport)
			if forced := cfg.Tool.FormatSupport; forced != config.FormatSupportAuto && (forced == config.FormatSupportOn) != supported {
				logger.Warn("format_support disagrees with the tool's help output",
					zap.String("format_support", forced), zap.Bool("probed", supported))
			}

			if !pingBackends {
				return nil
			}
			for _, line := range pingAll(cmd.Context(), cfg) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pingBackends, "backends", false, "also ping the configured LLM backends")
	return cmd
}

// pingAll checks every backend concurrently; results keep rag.Backends order.
func pingAll(ctx context.Context, cfg *config.Config) []string {
	lines := make([]string, len(rag.Backends))

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range rag.Backends {
		g.Go(func() error {
			lines[i] = fmt.Sprintf("%-16s%s", string(b)+":", pingBackend(ctx, cfg, b))
			return nil
		})
	}
	_ = g.Wait()

	return lines
}

func pingBackend(ctx context.Context, cfg *config.Config, backend rag.Backend) string {
	lister, err := provider.NewProvider(provider.ConfigFor(cfg, backend))
	if err != nil {
		return "not configured (" + err.Error() + ")"
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := lister.Ping(ctx); err != nil {
		logger.Debug("ping failed", zap.String("backend", string(backend)), zap.Error(err))
		return "unreachable (" + err.Error() + ")"
	}
	return "ok"
}

func yesNo(b bool) string {
	if b {
		return "supported"
	}
	return "not supported"
}
