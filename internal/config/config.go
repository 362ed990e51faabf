// Package config reads the optional YAML configuration file for the CLI.
// Flags always override file values; the zero value of every field means
// "use the flag default".
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the projgraph configuration file.
type Config struct {
	// Schema is the SDL file or files backing the model field registry.
	Schema StringList `yaml:"schema,omitempty"`

	// Strict makes unresolved fragments and variables fail a request.
	Strict bool `yaml:"strict,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
	Otel   OtelConfig   `yaml:"otel,omitempty"`
}

// ServerConfig configures the HTTP inspection endpoint.
type ServerConfig struct {
	Addr         string   `yaml:"addr,omitempty"`
	Pretty       bool     `yaml:"pretty,omitempty"`
	Timeout      Duration `yaml:"timeout,omitempty"`
	MaxBodyBytes int64    `yaml:"max_body_bytes,omitempty"`
}

// OtelConfig configures trace export.
type OtelConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Service  string `yaml:"service,omitempty"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got yaml kind %d", node.Kind)
	}
}

// Duration decodes Go duration strings ("10s", "1m30s") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}
