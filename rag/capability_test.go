package rag_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ragchat/rag"
	"ragchat/rag/testutil"
)

var fakeTool = rag.Tool{RepoRoot: "/repo", Python: "python3", Module: "scripts.ask"}

const helpWithFormat = "usage: ask [--storage S] [--k K] [--format {concise,full}]"

func TestCapability_Supported(t *testing.T) {
	tests := []struct {
		name string
		exec func() *testutil.FakeExecutor
		want bool
	}{
		{
			name: "flag in stdout",
			exec: func() *testutil.FakeExecutor { return testutil.NewFakeExecutor(helpWithFormat) },
			want: true,
		},
		{
			name: "flag absent",
			exec: func() *testutil.FakeExecutor { return testutil.NewFakeExecutor("usage: ask [--storage S]") },
			want: false,
		},
		{
			name: "flag in stderr",
			exec: func() *testutil.FakeExecutor {
				f := testutil.NewFakeExecutor("")
				f.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
					return rag.Result{Stderr: helpWithFormat}, nil
				}
				return f
			},
			want: true,
		},
		{
			name: "non-zero exit fails closed",
			exec: func() *testutil.FakeExecutor {
				f := testutil.NewFakeExecutor("")
				f.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
					return rag.Result{Stdout: helpWithFormat, ExitCode: 1}, nil
				}
				return f
			},
			want: false,
		},
		{
			name: "launch failure fails closed",
			exec: func() *testutil.FakeExecutor {
				f := testutil.NewFakeExecutor("")
				f.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
					return rag.Result{ExitCode: -1}, rag.ErrLaunch
				}
				return f
			},
			want: false,
		},
		{
			name: "timeout fails closed",
			exec: func() *testutil.FakeExecutor {
				f := testutil.NewFakeExecutor("")
				f.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
					return rag.Result{ExitCode: -1}, rag.ErrTimeout
				}
				return f
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := tt.exec()
			caps := rag.NewCapability(fakeTool, exec, time.Second)

			assert.False(t, caps.Resolved())
			assert.Equal(t, tt.want, caps.Supported(context.Background()))
			assert.True(t, caps.Resolved())
			assert.Equal(t, 1, exec.HelpCalls())
		})
	}
}

func TestCapability_ProbeCommand(t *testing.T) {
	exec := testutil.NewFakeExecutor(helpWithFormat)
	caps := rag.NewCapability(fakeTool, exec, 7*time.Second)
	caps.Supported(context.Background())

	calls := exec.Calls()
	if assert.Len(t, calls, 1) {
		assert.Equal(t, "python3", calls[0].Name)
		assert.Equal(t, []string{"-m", "scripts.ask", "--help"}, calls[0].Args)
		assert.Equal(t, "/repo", calls[0].Dir)
		assert.Equal(t, 7*time.Second, calls[0].Timeout)
	}
}

func TestCapability_FirstResultIsFinal(t *testing.T) {
	exec := testutil.NewFakeExecutor("usage: ask")
	caps := rag.NewCapability(fakeTool, exec, time.Second)

	assert.False(t, caps.Supported(context.Background()))

	// The tool gaining --format later does not change the cached answer.
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{Stdout: helpWithFormat}, nil
	}
	for i := 0; i < 5; i++ {
		assert.False(t, caps.Supported(context.Background()))
	}

	assert.Equal(t, 1, caps.Probes())
	assert.Equal(t, 1, exec.HelpCalls())
}

func TestCapability_ConcurrentCallersShareOneProbe(t *testing.T) {
	release := make(chan struct{})
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		<-release
		return rag.Result{Stdout: helpWithFormat}, nil
	}
	caps := rag.NewCapability(fakeTool, exec, time.Second)

	const callers = 16
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = caps.Supported(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, got := range results {
		assert.True(t, got, "caller %d", i)
	}
	assert.Equal(t, 1, exec.HelpCalls())
	assert.Equal(t, 1, caps.Probes())
}

func TestStaticCapability(t *testing.T) {
	on := rag.NewStaticCapability(true)
	off := rag.NewStaticCapability(false)

	assert.True(t, on.Resolved())
	assert.True(t, on.Supported(context.Background()))
	assert.False(t, off.Supported(context.Background()))
	assert.Equal(t, 0, on.Probes())
}

func TestCapability_RealProcess(t *testing.T) {
	tests := []struct {
		help string
		want bool
	}{
		{help: "with-format", want: true},
		{help: "plain", want: false},
		{help: "fail", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.help, func(t *testing.T) {
			tool := rag.Tool{
				RepoRoot: t.TempDir(),
				Python:   os.Args[0],
				Module:   "scripts.ask",
				Env:      []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_HELP=" + tt.help},
			}
			caps := rag.NewCapability(tool, rag.ExecExecutor{}, 10*time.Second)
			assert.Equal(t, tt.want, caps.Supported(context.Background()))
		})
	}
}
