package intelephense

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a config file is absent or leaves fields unset.
const (
	DefaultMaxCompletions    = 100
	DefaultReparseDebounceMs = 250
)

// ErrConfigNotFound is returned when no config file exists between the
// starting directory and the filesystem root.
var ErrConfigNotFound = errors.New("no .phpls.yaml found")

// Config represents the .phpls.yaml configuration file.
type Config struct {
	Completion CompletionConfig `yaml:"completion,omitempty"`

	// ReparseDebounceMs is the window, in milliseconds, during which edits
	// coalesce into a single reparse.
	ReparseDebounceMs int `yaml:"reparseDebounceMs,omitempty"`
}

// CompletionConfig holds completion engine settings.
type CompletionConfig struct {
	// MaxItems caps the number of items in a completion result.
	MaxItems int `yaml:"maxItems,omitempty"`
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".phpls.yaml", ".phpls.yml", "phpls.yaml", "phpls.yml"}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Completion:        CompletionConfig{MaxItems: DefaultMaxCompletions},
		ReparseDebounceMs: DefaultReparseDebounceMs,
	}
}

// DebounceWindow returns the reparse debounce window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	ms := c.ReparseDebounceMs
	if ms <= 0 {
		ms = DefaultReparseDebounceMs
	}

	return time.Duration(ms) * time.Millisecond
}

// MaxItems returns the completion cap with the default applied.
func (c *Config) MaxItems() int {
	if c.Completion.MaxItems <= 0 {
		return DefaultMaxCompletions
	}

	return c.Completion.MaxItems
}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
