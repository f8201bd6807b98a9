// Package yaml provides YAML-based configuration file parsing.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	Project string     `yaml:"project"`
	App     string     `yaml:"app"`
	Policy  yamlPolicy `yaml:"policy"`
	Auth    yamlAuth   `yaml:"auth"`
}

type yamlPolicy struct {
	// Pointers distinguish "absent" from an explicit zero
	MinCount *int `yaml:"min_count"`
	MaxDays  *int `yaml:"max_days"`
}

type yamlAuth struct {
	KeyFile string `yaml:"key_file"`
	KeyJSON string `yaml:"key_json"`
}

// FileConfig is the parsed optional configuration file. Flags override
// any value set here.
type FileConfig struct {
	Project  string
	App      string
	MinCount *int
	MaxDays  *int
	KeyFile  string
	KeyJSON  string
}

// ParseConfig parses configuration YAML content
func ParseConfig(data []byte) (*FileConfig, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &FileConfig{
		Project:  raw.Project,
		App:      raw.App,
		MinCount: raw.Policy.MinCount,
		MaxDays:  raw.Policy.MaxDays,
		KeyFile:  raw.Auth.KeyFile,
		KeyJSON:  raw.Auth.KeyJSON,
	}, nil
}

// LoadConfigFile reads and parses a configuration file
func LoadConfigFile(path string) (*FileConfig, error) {
	//nolint:gosec // G304: User explicitly provides the config file path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}
