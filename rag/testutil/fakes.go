package testutil

import (
	"context"
	"slices"
	"sync"

	"ragchat/rag"
)

// FakeExecutor implements rag.Executor without spawning processes. Every
// command is recorded; responses come from ExecuteFunc.
type FakeExecutor struct {
	ExecuteFunc func(ctx context.Context, cmd rag.Command) (rag.Result, error)

	mu    sync.Mutex
	calls []rag.Command
}

// NewFakeExecutor answers --help with helpText and every other invocation
// according to its --format value: "concise answer", "full evidence", or
// "plain answer" when no format was passed.
func NewFakeExecutor(helpText string) *FakeExecutor {
	f := &FakeExecutor{}
	f.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		if IsHelp(cmd) {
			return rag.Result{Stdout: helpText, Args: cmd.Args}, nil
		}
		switch ArgValue(cmd.Args, "--format") {
		case string(rag.FormatConcise):
			return rag.Result{Stdout: "concise answer", Args: cmd.Args}, nil
		case string(rag.FormatFull):
			return rag.Result{Stdout: "full evidence", Args: cmd.Args}, nil
		}
		return rag.Result{Stdout: "plain answer", Args: cmd.Args}, nil
	}
	return f
}

func (f *FakeExecutor) Execute(ctx context.Context, cmd rag.Command) (rag.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	fn := f.ExecuteFunc
	f.mu.Unlock()
	return fn(ctx, cmd)
}

// Calls returns a copy of all recorded commands.
func (f *FakeExecutor) Calls() []rag.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// QueryCalls returns recorded commands excluding help probes.
func (f *FakeExecutor) QueryCalls() []rag.Command {
	var out []rag.Command
	for _, c := range f.Calls() {
		if !IsHelp(c) {
			out = append(out, c)
		}
	}
	return out
}

// HelpCalls counts recorded help probes.
func (f *FakeExecutor) HelpCalls() int {
	n := 0
	for _, c := range f.Calls() {
		if IsHelp(c) {
			n++
		}
	}
	return n
}

// IsHelp reports whether cmd is a --help probe.
func IsHelp(cmd rag.Command) bool {
	return slices.Contains(cmd.Args, "--help")
}

// ToolArgs strips the leading "-m <module>" from a recorded command.
func ToolArgs(cmd rag.Command) []string {
	if len(cmd.Args) >= 2 && cmd.Args[0] == "-m" {
		return cmd.Args[2:]
	}
	return cmd.Args
}

// ArgValue returns the value following flag, or "" if absent.
func ArgValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
