package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkspaceConfig represents a pre-configured workspace in the config file.
type WorkspaceConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Token    string `yaml:"token"`
	Insecure bool   `yaml:"insecure"`
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	Listen     string            `yaml:"listen"`
	LogLevel   string            `yaml:"log_level"`
	Workspaces []WorkspaceConfig `yaml:"workspaces"`
}

// Defaults applied to anything still unset after flags and file.
const (
	DefaultListen   = ":8080"
	DefaultLogLevel = "info"
)

// Load builds the configuration from CLI flag values and an optional YAML file.
// Flag values that are non-empty take precedence over config file values.
func Load(path, listen, logLevel string) (*Config, error) {
	c := &Config{Listen: listen, LogLevel: logLevel}

	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Apply defaults for anything still unset
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	for i, ws := range c.Workspaces {
		if ws.Host == "" {
			return nil, fmt.Errorf("workspaces[%d] (%s): host is required", i, ws.Name)
		}
		if ws.Name == "" {
			c.Workspaces[i].Name = ws.Host
		}
		// Tokens may be given as ${VAR} so they stay out of the file.
		c.Workspaces[i].Token = os.ExpandEnv(ws.Token)
	}

	return c, nil
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Only apply file values if CLI flag wasn't set
	if c.Listen == "" && file.Listen != "" {
		c.Listen = file.Listen
	}
	if c.LogLevel == "" && file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}

	// Workspaces always come from config file
	c.Workspaces = file.Workspaces

	return nil
}
