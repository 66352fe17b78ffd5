package rjmcmc

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// modelsFile is the on-disk schema for config.RJMCMCConfig.ModelsFile: the
// structural parameters of each registered model (everything except its
// log-likelihood/log-prior callables and its KDE fit, which the caller
// supplies in code).
type modelsFile struct {
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig is the YAML-facing counterpart of ModelSpec, with weight
// fields broken out the way config.RunConfig breaks out SCAM/AM/DE/KDE
// weights, rather than nesting a sub-struct.
type ModelConfig struct {
	Name       string `yaml:"name"`
	Ndim       int    `yaml:"ndim"`
	SCAMWeight int    `yaml:"scam_weight"`
	AMWeight   int    `yaml:"am_weight"`
	DEWeight   int    `yaml:"de_weight"`
	KDEWeight  int    `yaml:"kde_weight"`
	DEWindow   int    `yaml:"de_window"`
	KDEWindow  int    `yaml:"kde_window"`
	Seed       int64  `yaml:"seed"`
}

// Parser reads a model-registry YAML file, substituting ${VAR}/$VAR
// references against its own variable table and the process environment
// before parsing — the same two-tier substitution the chaos scenario
// parser uses ahead of its own yaml.Unmarshal call.
type Parser struct {
	Variables map[string]string
}

// NewParser creates a Parser with optional seed variables.
func NewParser(variables map[string]string) *Parser {
	if variables == nil {
		variables = make(map[string]string)
	}
	return &Parser{Variables: variables}
}

// ParseFile reads and parses the model registry at path.
func (p *Parser) ParseFile(path string) ([]ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	return p.Parse(data)
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Parse parses a model registry from YAML bytes.
func (p *Parser) Parse(data []byte) ([]ModelConfig, error) {
	substituted := p.substituteVariables(string(data))

	var mf modelsFile
	if err := yaml.Unmarshal([]byte(substituted), &mf); err != nil {
		return nil, fmt.Errorf("failed to parse models file: %w", err)
	}
	if len(mf.Models) == 0 {
		return nil, fmt.Errorf("models file defines no models")
	}
	return mf.Models, nil
}

func (p *Parser) substituteVariables(content string) string {
	return varPattern.ReplaceAllStringFunc(content, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if v, ok := p.Variables[name]; ok {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return match
	})
}
