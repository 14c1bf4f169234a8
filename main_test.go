package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ragchat/config"
	"ragchat/rag"
	"ragchat/rag/testutil"
)

// runCLI executes the root command against a throwaway settings file and
// repo root, with exec standing in for python.
func runCLI(t *testing.T, exec rag.Executor, args ...string) (string, error) {
	t.Helper()

	origExec := newExecutor
	newExecutor = func() rag.Executor { return exec }
	t.Cleanup(func() {
		newExecutor = origExec
		logger = zap.NewNop()
		config.DebugLog = nil
	})
	t.Setenv("RAGCHAT_DEBUG", "")
	t.Setenv("RAGCHAT_LANG", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)

	common := []string{
		"--settings", filepath.Join(t.TempDir(), "settings.toml"),
		"--repo-root", t.TempDir(),
	}
	// Subcommand first, then its flags
	root.SetArgs(append(args[:1:1], append(common, args[1:]...)...))

	err := root.Execute()
	return out.String(), err
}

func TestAsk_TwoPhase(t *testing.T) {
	exec := testutil.NewFakeExecutor("")

	out, err := runCLI(t, exec, "ask", "--format-support", "on", "東京の人口は？")
	require.NoError(t, err)

	assert.Equal(t, "concise answer\n", out)
	assert.Len(t, exec.QueryCalls(), 2)
	assert.Zero(t, exec.HelpCalls(), "forced format support skips the probe")
}

func TestAsk_PrintsEvidence(t *testing.T) {
	exec := testutil.NewFakeExecutor("")

	out, err := runCLI(t, exec, "ask", "--format-support", "on", "-e", "q")
	require.NoError(t, err)

	assert.Contains(t, out, "concise answer\n")
	assert.Contains(t, out, "\n---\nfull evidence\n")
}

func TestAsk_AutoProbeWithoutFormat(t *testing.T) {
	exec := testutil.NewFakeExecutor("usage: ask [-h] [--storage STORAGE] [--k K]")

	out, err := runCLI(t, exec, "ask", "q")
	require.NoError(t, err)

	assert.Equal(t, "plain answer\n", out)
	assert.Equal(t, 1, exec.HelpCalls())
	calls := exec.QueryCalls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Args, "--format")
}

func TestAsk_FlagsOverrideDefaults(t *testing.T) {
	exec := testutil.NewFakeExecutor("")

	_, err := runCLI(t, exec, "ask",
		"--format-support", "off",
		"--python", "/opt/venv/bin/python",
		"--storage", "idx/ja",
		"--k", "8",
		"--llm-backend", "compatible-local",
		"--llm-model", "qwen2.5-7b-instruct",
		"--no-rerank",
		"大阪", "の面積は？")
	require.NoError(t, err)

	calls := exec.QueryCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/opt/venv/bin/python", calls[0].Name)
	assert.Equal(t, []string{
		"--storage", "idx/ja",
		"--k", "8",
		"--llm-backend", "internlm2",
		"--q", "大阪 の面積は？",
		"--llm-model", "qwen2.5-7b-instruct",
		"--no-rerank",
	}, testutil.ToolArgs(calls[0]))
}

func TestAsk_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"k too large", []string{"ask", "--k", "13", "q"}, "--k must be between 1 and 12"},
		{"unknown backend", []string{"ask", "--llm-backend", "claude", "q"}, "claude"},
		{"empty storage", []string{"ask", "--storage", " ", "q"}, "storage path is empty"},
		{"bad format support", []string{"ask", "--format-support", "maybe", "q"}, "invalid --format-support"},
		{"sub-second timeout", []string{"ask", "--timeout", "500ms", "q"}, "--timeout must be at least 1s"},
		{"fractional timeout", []string{"ask", "--timeout", "1.9s", "q"}, "--timeout must be a whole number of seconds"},
		{"fractional probe timeout", []string{"ask", "--probe-timeout", "2500ms", "q"}, "--probe-timeout must be a whole number of seconds"},
		{"no question",[]string{"ask"}, "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := testutil.NewFakeExecutor("")
			_, err := runCLI(t, exec, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, exec.QueryCalls())
		})
	}
}

func TestAsk_FailedRunPrintsPlaceholderAndStderr(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{Stderr: "FileNotFoundError: storage", ExitCode: 1}, nil
	}

	out, err := runCLI(t, exec, "ask", "--format-support", "off", "--lang", "en", "q")
	require.ErrorIs(t, err, errNoAnswer)

	assert.True(t, strings.HasPrefix(out, "_(no result / failed)_\n"))
	assert.Contains(t, out, rag.StderrLabel+"\nFileNotFoundError: storage")
}

func TestAsk_TimeoutIsReported(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{ExitCode: -1}, rag.ErrTimeout
	}

	out, err := runCLI(t, exec, "ask", "--format-support", "off", "--timeout", "3s", "q")
	require.ErrorIs(t, err, rag.ErrTimeout)
	assert.Contains(t, out, "[error]")

	calls := exec.QueryCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "3s", calls[0].Timeout.String())
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name          string
		help          string
		formatSupport string
		want          string
	}{
		{"supported", "usage: ask [--format {concise,full}]", "auto", "--format:       supported"},
		{"unsupported", "usage: ask [--storage STORAGE]", "auto", "--format:       not supported"},
		{"forced off still probes", "usage: ask [--format {concise,full}]", "off", "format_support: off"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := testutil.NewFakeExecutor(tt.help)

			out, err := runCLI(t, exec, "probe", "--format-support", tt.formatSupport)
			require.NoError(t, err)

			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "command:        python3 -m scripts.ask")
			assert.Equal(t, 1, exec.HelpCalls())
			assert.Empty(t, exec.QueryCalls())
		})
	}
}

func TestNewCapability(t *testing.T) {
	cfg := config.DefaultConfig()
	tool := rag.Tool{RepoRoot: t.TempDir(), Python: "python3", Module: "scripts.ask"}

	cfg.Tool.FormatSupport = config.FormatSupportOn
	on := newCapability(cfg, tool, testutil.NewFakeExecutor(""))
	assert.True(t, on.Resolved())
	assert.True(t, on.Supported(context.Background()))

	cfg.Tool.FormatSupport = config.FormatSupportOff
	off := newCapability(cfg, tool, testutil.NewFakeExecutor(""))
	assert.False(t, off.Supported(context.Background()))

	cfg.Tool.FormatSupport = config.FormatSupportAuto
	exec := testutil.NewFakeExecutor("--format")
	auto := newCapability(cfg, tool, exec)
	assert.False(t, auto.Resolved())
	assert.True(t, auto.Supported(context.Background()))
	assert.True(t, auto.Supported(context.Background()))
	assert.Equal(t, 1, exec.HelpCalls())
}

func TestPingAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"local-model","object":"model","created":0,"owned_by":"me"}]}`))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("OPENAI_API_KEY", "")
	cfg := config.DefaultConfig()
	cfg.Backends.OpenAI.APIKey = ""
	cfg.Backends.CompatibleLocal.BaseURL = srv.URL + "/v1"

	lines := pingAll(context.Background(), cfg)

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "openai:"))
	assert.Contains(t, lines[0], "not configured")
	assert.Contains(t, lines[1], "ok")
	assert.True(t, strings.HasPrefix(lines[2], "none:"))
	assert.Contains(t, lines[2], "ok")
}
