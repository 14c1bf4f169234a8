package rag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"ragchat/config"
)

var (
	// ErrLaunch means the process could not be started at all.
	ErrLaunch = errors.New("failed to launch ask tool")
	// ErrTimeout means the process was killed after exceeding its deadline.
	ErrTimeout = errors.New("ask tool timed out")
)

// PathEnvVar is extended with the repository root so `-m scripts.ask`
// resolves no matter where ragchat was started from.
const PathEnvVar = "PYTHONPATH"

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the tool itself has been killed.
const waitDelay = 2 * time.Second

// Command is one fully-specified process invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string
	Timeout time.Duration
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the captured outcome of a process that ran to completion,
// whatever its exit code.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Args     []string
	Duration time.Duration
}

// Executor runs a Command synchronously. A non-zero exit status is reported
// through Result.ExitCode, not as an error; errors are reserved for
// ErrLaunch, ErrTimeout and context cancellation.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (Result, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Execute(ctx context.Context, c Command) (Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	res := Result{
		Stdout:   cleanOutput(stdout.Bytes()),
		Stderr:   cleanOutput(stderr.Bytes()),
		Args:     c.Args,
		Duration: duration,
	}

	if err == nil {
		return res, nil
	}

	// Deadline has to be checked before ExitError: a killed process also
	// reports an exit status.
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%w after %v: %s", ErrTimeout, c.Timeout, c.Name)
		}
		return res, fmt.Errorf("ask tool cancelled: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if config.DebugLog != nil {
			config.DebugLog.Debugf("[rag] %s exited with %d after %v", c.Name, res.ExitCode, duration)
		}
		return res, nil
	}

	res.ExitCode = -1
	return res, fmt.Errorf("%w: %v", ErrLaunch, err)
}

// cleanOutput decodes process output leniently: invalid UTF-8 is replaced
// rather than rejected, then surrounding whitespace is trimmed.
func cleanOutput(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "�"))
}

// Tool locates the external ask tool.
type Tool struct {
	RepoRoot string
	Python   string
	Module   string
	Env      []string // extra KEY=VALUE pairs
}

// Command builds the invocation `<python> -m <module> <args...>` rooted at
// the repository with PYTHONPATH extended.
func (t Tool) Command(args []string, timeout time.Duration) Command {
	full := append([]string{"-m", t.Module}, args...)
	return Command{
		Name:    t.Python,
		Args:    full,
		Dir:     t.RepoRoot,
		Env:     BuildEnv(os.Environ(), t.RepoRoot, t.Env),
		Timeout: timeout,
	}
}

// BuildEnv returns a copy of base with PYTHONPATH extended (never replaced)
// by repoRoot, followed by extra.
func BuildEnv(base []string, repoRoot string, extra []string) []string {
	env := make([]string, 0, len(base)+len(extra)+1)
	prefix := PathEnvVar + "="
	existing := ""
	for _, kv := range base {
		if strings.HasPrefix(kv, prefix) {
			existing = strings.TrimPrefix(kv, prefix)
			continue
		}
		env = append(env, kv)
	}

	value := repoRoot
	if existing != "" {
		value = repoRoot + string(os.PathListSeparator) + existing
	}
	if value != "" {
		env = append(env, prefix+value)
	}

	return append(env, extra...)
}
