package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig holds defaults read from an optional YAML file (--config,
// default ~/.adoscan.yaml). Flag values take precedence over file values;
// the CLI only applies a file value when the matching flag was not set.
type FileConfig struct {
	Organization  string   `yaml:"organization"`
	Projects      []string `yaml:"projects"`
	Throttle      int      `yaml:"throttle"`
	Timeout       string   `yaml:"timeout"`
	Out           string   `yaml:"out"`
	ConsoleFormat string   `yaml:"console_format"`
}

// DefaultFilePath returns ~/.adoscan.yaml, or "" when the home directory
// cannot be determined.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".adoscan.yaml")
}

// LoadFile reads a FileConfig from path. A missing file is not an error
// when explicit is false (the default path is optional); it is an error
// when the user named the file themselves.
func LoadFile(path string, explicit bool) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// ParseTimeout parses the file's timeout value ("15m", "1h").
func (fc *FileConfig) ParseTimeout() (time.Duration, error) {
	if fc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(fc.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout in config file: %w", err)
	}
	return d, nil
}
