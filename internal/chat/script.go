package chat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script supplies the simulated backend's cast and material. A script file is
// optional; without one the built-in corpus is used.
type Script struct {
	Topic    string   `yaml:"topic"`
	Personas []string `yaml:"personas"`
	Lines    []string `yaml:"lines"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(s.Personas) == 0 || len(s.Lines) == 0 {
		return nil, fmt.Errorf("script %s needs at least one persona and one line", path)
	}
	return &s, nil
}

// DefaultScript is the built-in simulation corpus.
func DefaultScript() *Script {
	return &Script{
		Topic:    "shipping software, slowly",
		Personas: []string{"ada", "linus", "grace", "dennis", "barbara"},
		Lines: []string{
			"anyone seen the deploy finish yet?",
			"the tests pass locally, I swear",
			"pushing a fix for the flaky timeout now",
			"```go\nfunc retry(n int, f func() error) error {\n\tvar err error\n\tfor i := 0; i < n; i++ {\n\t\tif err = f(); err == nil {\n\t\t\treturn nil\n\t\t}\n\t}\n\treturn err\n}\n```",
			"we should pin that dependency before it bites us again",
			"lunch? the build takes twenty minutes anyway",
			"who owns the staging credentials these days",
			"rebased, force-pushed, sorry in advance",
			"the new linter flags half the repo",
			"ship it",
		},
	}
}
