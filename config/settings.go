package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// LoadSettings decodes a settings file over the defaults. A missing file is
// created from the template and the defaults are returned.
func LoadSettings(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	if !FileExists(path) {
		if err := CreateDefaultSettings(path); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return cfg, nil
}

// SaveSettings writes cfg back to the file it was loaded from.
func SaveSettings(cfg *Config) error {
	if cfg.path == "" {
		return fmt.Errorf("config has no backing file")
	}

	if err := EnsureDir(filepath.Dir(cfg.path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(cfg.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}

// SaveQueryDefaults replaces the [query] section of the file at path. The
// rest is re-read from disk so env and flag overrides never reach the file.
func SaveQueryDefaults(path string, q QueryDefaults) error {
	if path == "" {
		return fmt.Errorf("config has no backing file")
	}

	onDisk, err := LoadSettings(path)
	if err != nil {
		return err
	}
	onDisk.Query = q

	return SaveSettings(onDisk)
}

func CreateDefaultSettings(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(path) {
		return nil
	}

	if err := os.WriteFile(path, []byte(GenerateSettingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// LoadDotEnv loads .env files from the working directory and the repository
// root, in that order. Variables already present in the environment win, and
// missing files are skipped.
func LoadDotEnv(repoRoot string) []string {
	candidates := []string{".env"}
	if repoRoot != "" {
		candidates = append(candidates, filepath.Join(ExpandPath(repoRoot), ".env"))
	}

	var loaded []string
	seen := map[string]bool{}
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] || !FileExists(abs) {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err != nil {
			if DebugLog != nil {
				DebugLog.Warnf("Failed to load %s: %v", abs, err)
			}
			continue
		}
		loaded = append(loaded, abs)
	}

	return loaded
}
