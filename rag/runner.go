package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ragchat/config"
)

const DefaultTimeout = 120 * time.Second

// StderrLabel heads the section of evidence that carries the tool's stderr.
const StderrLabel = "[stderr]"

// Answer is the outcome of one question.
type Answer struct {
	Text        string
	Evidence    string
	Invocations int
	ExitCodes   []int
}

// Runner invokes the ask tool. It holds no per-query state.
type Runner struct {
	tool    Tool
	exec    Executor
	caps    *Capability
	timeout time.Duration
}

type RunnerOption func(*Runner)

func WithExecutor(exec Executor) RunnerOption {
	return func(r *Runner) {
		r.exec = exec
	}
}

func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func NewRunner(tool Tool, caps *Capability, opts ...RunnerOption) *Runner {
	r := &Runner{
		tool:    tool,
		exec:    ExecExecutor{},
		caps:    caps,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.caps == nil {
		r.caps = NewCapability(tool, r.exec, DefaultProbeTimeout)
	}
	return r
}

func (r *Runner) Capability() *Capability {
	return r.caps
}

// Run performs a single invocation. A requested format is dropped silently
// when the tool does not support --format. A non-zero exit code is returned
// in the Result, not as an error.
func (r *Runner) Run(ctx context.Context, query string, cfg QueryConfig, format Format) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if format != FormatUnspecified && !r.caps.Supported(ctx) {
		format = FormatUnspecified
	}

	cmd := r.tool.Command(BuildArgs(query, cfg, format), r.timeout)
	if config.DebugLog != nil {
		config.DebugLog.Debugf("[rag] run: %s (dir=%s, timeout=%v)", cmd, cmd.Dir, cmd.Timeout)
	}

	res, err := r.exec.Execute(ctx, cmd)
	if err != nil {
		return res, fmt.Errorf("run ask tool: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Debugf("[rag] done: exit=%d stdout=%d bytes stderr=%d bytes in %v",
			res.ExitCode, len(res.Stdout), len(res.Stderr), res.Duration)
	}
	return res, nil
}

// Ask answers a question. With --format support the tool is run twice, once
// for the concise answer and once for the full evidence; otherwise once, with
// stdout as the answer. Stderr is always folded into the evidence under
// StderrLabel. On error the partial Answer gathered so far is returned.
func (r *Runner) Ask(ctx context.Context, query string, cfg QueryConfig) (Answer, error) {
	if err := cfg.Validate(); err != nil {
		return Answer{}, err
	}

	if r.caps.Supported(ctx) {
		return r.askTwoPhase(ctx, query, cfg)
	}

	var ans Answer
	res, err := r.Run(ctx, query, cfg, FormatUnspecified)
	ans.Invocations++
	if err != nil {
		return ans, err
	}
	ans.ExitCodes = append(ans.ExitCodes, res.ExitCode)
	ans.Text = res.Stdout
	if res.Stderr != "" {
		ans.Evidence = StderrLabel + "\n" + res.Stderr
	}
	return ans, nil
}

func (r *Runner) askTwoPhase(ctx context.Context, query string, cfg QueryConfig) (Answer, error) {
	var ans Answer

	concise, err := r.Run(ctx, query, cfg, FormatConcise)
	ans.Invocations++
	if err != nil {
		return ans, fmt.Errorf("concise answer: %w", err)
	}
	ans.ExitCodes = append(ans.ExitCodes, concise.ExitCode)
	ans.Text = concise.Stdout

	full, err := r.Run(ctx, query, cfg, FormatFull)
	ans.Invocations++
	if err != nil {
		return ans, fmt.Errorf("full evidence: %w", err)
	}
	ans.ExitCodes = append(ans.ExitCodes, full.ExitCode)
	ans.Evidence = full.Stdout

	var stderrs []string
	for _, s := range []string{concise.Stderr, full.Stderr} {
		if s != "" {
			stderrs = append(stderrs, s)
		}
	}
	if len(stderrs) > 0 {
		merged := strings.Join(stderrs, "\n")
		ans.Evidence = strings.TrimSpace(ans.Evidence + "\n\n" + StderrLabel + "\n" + merged)
	}

	return ans, nil
}
