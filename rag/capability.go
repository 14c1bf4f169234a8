package rag

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"ragchat/config"
)

// FormatFlag is looked for in the tool's --help output.
const FormatFlag = "--format"

const DefaultProbeTimeout = 15 * time.Second

// Capability records whether the ask tool supports --format. The first
// probe result is kept for the lifetime of the value and never re-probed.
type Capability struct {
	probe func(ctx context.Context) bool

	mu        sync.Mutex
	resolved  bool
	supported bool

	group  singleflight.Group
	probes atomic.Int32
}

// NewCapability probes tool lazily through exec on first use.
func NewCapability(tool Tool, exec Executor, timeout time.Duration) *Capability {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	c := &Capability{}
	c.probe = func(ctx context.Context) bool {
		return probeHelp(ctx, tool, exec, timeout)
	}
	return c
}

// NewStaticCapability returns an already-resolved Capability.
func NewStaticCapability(supported bool) *Capability {
	return &Capability{resolved: true, supported: supported}
}

// Supported returns the cached answer, probing once if needed. Concurrent
// first callers share a single probe process.
func (c *Capability) Supported(ctx context.Context) bool {
	c.mu.Lock()
	if c.resolved {
		s := c.supported
		c.mu.Unlock()
		return s
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("probe", func() (interface{}, error) {
		c.mu.Lock()
		if c.resolved {
			s := c.supported
			c.mu.Unlock()
			return s, nil
		}
		c.mu.Unlock()

		c.probes.Add(1)
		s := c.probe(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.resolved {
			c.resolved = true
			c.supported = s
		}
		return c.supported, nil
	})

	return v.(bool)
}

// Resolved reports whether the answer is already cached.
func (c *Capability) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Probes returns how many help probes were actually run.
func (c *Capability) Probes() int {
	return int(c.probes.Load())
}

// probeHelp fails closed: launch errors, timeouts and non-zero exits all
// mean "unsupported".
func probeHelp(ctx context.Context, tool Tool, exec Executor, timeout time.Duration) bool {
	cmd := tool.Command([]string{"--help"}, timeout)
	res, err := exec.Execute(ctx, cmd)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Warnf("[rag] help probe failed, assuming no %s support: %v", FormatFlag, err)
		}
		return false
	}
	if res.ExitCode != 0 {
		if config.DebugLog != nil {
			config.DebugLog.Warnf("[rag] help probe exited with %d, assuming no %s support", res.ExitCode, FormatFlag)
		}
		return false
	}

	helpText := res.Stdout + "\n" + res.Stderr
	supported := strings.Contains(helpText, FormatFlag)
	if config.DebugLog != nil {
		config.DebugLog.Infof("[rag] help probe: %s supported=%v (%v)", FormatFlag, supported, res.Duration)
	}
	return supported
}
