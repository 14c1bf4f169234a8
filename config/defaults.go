package config

// Sidebar slider bounds for top-k.
const (
	MinTopK = 1
	MaxTopK = 12
)

func DefaultConfig() *Config {
	return &Config{
		Language: "ja",
		Tool: ToolConfig{
			RepoRoot:            "",
			Python:              "python3",
			Module:              "scripts.ask",
			TimeoutSeconds:      120,
			ProbeTimeoutSeconds: 15,
			FormatSupport:       FormatSupportAuto,
		},
		Query: QueryDefaults{
			Storage:    "storage",
			K:          4,
			LLMBackend: "openai",
			LLMModel:   "gpt-5-mini",
			Rerank:     true,
		},
		Backends: BackendsConfig{
			OpenAI: BackendEndpoint{
				BaseURL: "https://api.openai.com/v1",
			},
			CompatibleLocal: BackendEndpoint{
				BaseURL: "http://localhost:1234/v1",
			},
		},
		Keybindings: *DefaultKeybindings(),
	}
}

func GenerateSettingsTemplate() string {
	return `# ragchat configuration
# Location: ~/.config/ragchat/settings.toml
# This file uses TOML format: https://toml.io

# UI language for labels and placeholders: "ja" or "en"
language = "ja"

[tool]
# Repository that contains the scripts.ask module (empty = current directory)
repo_root = ""

# Interpreter used to run "python -m scripts.ask"
python = "python3"
module = "scripts.ask"

# Hard limits; the process is killed when exceeded
timeout_seconds = 120
probe_timeout_seconds = 15

# Whether scripts.ask understands --format: "auto" probes --help once per run
format_support = "auto"

# Extra KEY=VALUE pairs passed to the tool
# env = ["OPENAI_API_KEY=sk-..."]

[query]
# Defaults for the sidebar
storage = "storage"
k = 4
llm_backend = "openai"      # openai, compatible-local or none
llm_model = "gpt-5-mini"
rerank = true

# Endpoints used only to list model names in the model picker
[backends.openai]
base_url = "https://api.openai.com/v1"

[backends.compatible_local]
base_url = "http://localhost:1234/v1"

[keybindings.modifiers]
primary = "alt"
secondary = "alt+shift"

[keybindings.actions]
# clear_history = "ctrl+l"
`
}
