package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"qsearch/internal/eventbus"
)

// Field kinds
const (
	KindInput  = "input"
	KindSelect = "select"
)

// Config represents the application configuration
type Config struct {
	Version        int               `toml:"version"`
	Server         string            `toml:"server"` // base URL the api path is resolved against
	API            string            `toml:"api"`
	MinChars       int               `toml:"min_chars"`
	Timeout        Duration          `toml:"timeout"`
	Debounce       Duration          `toml:"debounce"`
	ScrollDebounce Duration          `toml:"scroll_debounce"`
	ResultType     string            `toml:"result_type"`
	Params         map[string]string `toml:"params,omitempty"` // sent with every request
	Fields         []Field           `toml:"fields"`
	Log            LogSettings       `toml:"log"`
}

// Field describes one form control
type Field struct {
	Name    string   `toml:"name"`
	Kind    string   `toml:"kind"` // input or select
	Label   string   `toml:"label,omitempty"`
	Options []string `toml:"options,omitempty"`
}

// LogSettings represents logging configuration
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration is a time.Duration stored as a string such as "300ms"
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the per-user configuration file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "qsearch", "config.toml")
}

// NewConfigService creates a config service reading path; empty path means DefaultPath
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// Path returns the file the service loads from and saves to
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file. A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path.
// Values missing from the file keep their defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	fieldsBefore := cfg.Fields
	cfg.Fields = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = fieldsBefore
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the components cannot work with
func (c *Config) Validate() error {
	if c.API == "" {
		return errors.New("api must not be empty")
	}
	if c.MinChars < 0 {
		return fmt.Errorf("min_chars must be >= 0, got %d", c.MinChars)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return errors.New("field without name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case KindInput:
		case KindSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("select field %q has no options", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:        1,
		Server:         "http://localhost:8080",
		API:            "/api/search",
		MinChars:       3,
		Timeout:        Duration{time.Second},
		Debounce:       Duration{300 * time.Millisecond},
		ScrollDebounce: Duration{100 * time.Millisecond},
		ResultType:     "guide",
		Params:         map[string]string{},
		Fields: []Field{
			{Name: "q", Kind: KindInput, Label: "Search"},
			{
				Name:    "categories",
				Kind:    KindSelect,
				Label:   "Category",
				Options: []string{"", "getting-started", "core", "web", "data", "messaging", "security", "observability"},
			},
		},
		Log: LogSettings{
			Level: "info",
			File:  "qsearch.log",
		},
	}
}
