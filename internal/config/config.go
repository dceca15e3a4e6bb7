// Package config loads phantom's user configuration from
// ~/.phantom/config.json, with environment fallbacks for the AI key.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the whole user configuration.
type Config struct {
	// Network connection
	Server   string `json:"server,omitempty"`
	Port     int    `json:"port,omitempty"`
	Nick     string `json:"nick,omitempty"`
	Username string `json:"username,omitempty"`
	RealName string `json:"realname,omitempty"`
	UseTLS   bool   `json:"use_tls,omitempty"`

	// Channels to auto-join after connecting
	Channels []string `json:"channels,omitempty"`

	// AI provider binding. The key's format selects the vendor; Model
	// optionally overrides the vendor default.
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`

	// Simulation mode: run against the self-simulating backend instead of a
	// live server. ScriptPath optionally points at a YAML simulation script.
	Simulate   bool   `json:"simulate,omitempty"`
	ScriptPath string `json:"script_path,omitempty"`
}

// keyEnvVars is the fallback order when the config file carries no API key.
var keyEnvVars = []string{
	"PHANTOM_API_KEY",
	"ANTHROPIC_API_KEY",
	"GROQ_API_KEY",
	"GEMINI_API_KEY",
	"MISTRAL_API_KEY",
	"OPENAI_API_KEY",
}

// DefaultPath returns ~/.phantom/config.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".phantom", "config.json")
	}
	return filepath.Join(home, ".phantom", "config.json")
}

// Load reads the config file at path. A missing file yields defaults, not an
// error; a malformed file is an error. The API key falls back to the
// environment when the file has none.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:     6667,
		Nick:     "phantom",
		RealName: "phantom chat",
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env resolution
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.APIKey == "" {
		cfg.APIKey = keyFromEnv()
	}
	if cfg.Username == "" {
		cfg.Username = cfg.Nick
	}
	return cfg, nil
}

func keyFromEnv() string {
	for _, name := range keyEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Save writes the config file, creating the dot-directory as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
