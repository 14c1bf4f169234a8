package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format support modes for the external tool's --format flag.
const (
	FormatSupportAuto = "auto"
	FormatSupportOn   = "on"
	FormatSupportOff  = "off"
)

// ToolConfig locates the external ask tool and bounds its runtime.
type ToolConfig struct {
	RepoRoot            string   `toml:"repo_root"`
	Python              string   `toml:"python"`
	Module              string   `toml:"module"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
	ProbeTimeoutSeconds int      `toml:"probe_timeout_seconds"`
	FormatSupport       string   `toml:"format_support"`
	Env                 []string `toml:"env,omitempty"`
}

// QueryDefaults seeds the sidebar when the UI starts.
type QueryDefaults struct {
	Storage    string `toml:"storage"`
	K          int    `toml:"k"`
	LLMBackend string `toml:"llm_backend"`
	LLMModel   string `toml:"llm_model"`
	Rerank     bool   `toml:"rerank"`
}

// BackendEndpoint is an OpenAI-compatible API used for listing models.
type BackendEndpoint struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key,omitempty"`
}

type BackendsConfig struct {
	OpenAI          BackendEndpoint `toml:"openai"`
	CompatibleLocal BackendEndpoint `toml:"compatible_local"`
}

type Config struct {
	Language    string            `toml:"language"`
	Tool        ToolConfig        `toml:"tool"`
	Query       QueryDefaults     `toml:"query"`
	Backends    BackendsConfig    `toml:"backends"`
	Keybindings KeyBindingsConfig `toml:"keybindings"`

	path string
}

var DebugLog *zap.SugaredLogger

// Path returns the file the config was loaded from (empty for in-memory configs).
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Tool.TimeoutSeconds) * time.Second
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Tool.ProbeTimeoutSeconds) * time.Second
}

func (c *Config) applyEnvOverrides() {
	if root := os.Getenv("RAGCHAT_REPO_ROOT"); root != "" {
		c.Tool.RepoRoot = root
	}
	if python := os.Getenv("RAGCHAT_PYTHON"); python != "" {
		c.Tool.Python = python
	}
	if timeout := os.Getenv("RAGCHAT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.Tool.TimeoutSeconds = secs
		}
	}
	if lang := os.Getenv("RAGCHAT_LANG"); lang != "" {
		c.Language = lang
	}
}

// normalize fills zero values left by a partial settings file and
// resolves the repository root to an absolute path.
func (c *Config) normalize() error {
	def := DefaultConfig()

	if c.Tool.Python == "" {
		c.Tool.Python = def.Tool.Python
	}
	if c.Tool.Module == "" {
		c.Tool.Module = def.Tool.Module
	}
	if c.Tool.TimeoutSeconds <= 0 {
		c.Tool.TimeoutSeconds = def.Tool.TimeoutSeconds
	}
	if c.Tool.ProbeTimeoutSeconds <= 0 {
		c.Tool.ProbeTimeoutSeconds = def.Tool.ProbeTimeoutSeconds
	}

	switch strings.ToLower(c.Tool.FormatSupport) {
	case "", FormatSupportAuto:
		c.Tool.FormatSupport = FormatSupportAuto
	case FormatSupportOn, "true", "yes":
		c.Tool.FormatSupport = FormatSupportOn
	case FormatSupportOff, "false", "no":
		c.Tool.FormatSupport = FormatSupportOff
	default:
		return fmt.Errorf("invalid format_support %q (want auto, on or off)", c.Tool.FormatSupport)
	}

	if c.Language != "en" {
		c.Language = "ja"
	}

	if c.Query.Storage == "" {
		c.Query.Storage = def.Query.Storage
	}
	if c.Query.K < MinTopK {
		c.Query.K = MinTopK
	}
	if c.Query.K > MaxTopK {
		c.Query.K = MaxTopK
	}
	if c.Query.LLMBackend == "" {
		c.Query.LLMBackend = def.Query.LLMBackend
	}

	root, err := ResolveRepoRoot(c.Tool.RepoRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve repo root: %w", err)
	}
	c.Tool.RepoRoot = root

	c.Keybindings.applyDefaults()

	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("RAGCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dir>/debug.log when RAGCHAT_DEBUG is set.
// DebugLog stays nil otherwise, so call sites guard with a nil check.
func InitDebugLog(dir string) {
	if !CheckDebug() {
		return
	}

	if err := EnsureDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create log directory %s: %v\n", dir, err)
		return
	}
	logPath := filepath.Join(dir, "debug.log")

	// Pre-create with 0600, the log contains queries and tool output
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}
	_ = f.Close()

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not build debug logger: %v\n", err)
		return
	}

	DebugLog = logger.Sugar()
	DebugLog.Infof("=== Debug logging started (RAGCHAT_DEBUG=%s) ===", os.Getenv("RAGCHAT_DEBUG"))
	DebugLog.Infof("Log path: %s", logPath)
}

// CloseDebugLog flushes buffered log entries.
func CloseDebugLog() {
	if DebugLog != nil {
		_ = DebugLog.Sync()
	}
}

// Load reads settings.toml from path (GetSettingsFilePath when empty),
// writing a commented template first if the file does not exist.
// Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetSettingsFilePath()
	}

	cfg, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}
