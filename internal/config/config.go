// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "AGENDA"

// Config holds all agenda configuration.
type Config struct {
	Store Store `yaml:"store"`
	UI    UI    `yaml:"ui"`
	Log   Log   `yaml:"log"`
}

// Store holds record store settings.
type Store struct {
	Path string `yaml:"path" validate:"required"`
}

// UI holds prompt and message settings.
type UI struct {
	Language   string `yaml:"language" validate:"required,oneof=es en"`
	Plain      bool   `yaml:"plain"`       // Never start the terminal UI
	LocalesDir string `yaml:"locales_dir"` // Local catalogs overriding the embedded ones
}

// Log holds diagnostic logging settings.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"` // Empty logs to stderr
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			Path: "users.json",
		},
		UI: UI{
			Language:   "es",
			LocalesDir: ".agenda/locales",
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing, empty and comment-only files
// are skipped; invalid YAML or unknown fields return an error.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

// fieldError renders a validation failure using the YAML key path.
func fieldError(fe validator.FieldError) string {
	path := yamlPath(fe.StructNamespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", path)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

var yamlKeys = map[string]string{
	"Store.Path":    "store.path",
	"UI.Language":   "ui.language",
	"UI.Plain":      "ui.plain",
	"UI.LocalesDir": "ui.locales_dir",
	"Log.Level":     "log.level",
	"Log.File":      "log.file",
}

func yamlPath(namespace string) string {
	ns := strings.TrimPrefix(namespace, "Config.")
	if k, ok := yamlKeys[ns]; ok {
		return k
	}
	return ns
}

// env lists the supported environment overrides. Pointers distinguish unset
// variables from empty ones; split_words derives AGENDA_STORE_PATH and friends
// without falling back to unprefixed names such as LANGUAGE.
type env struct {
	StorePath  *string `split_words:"true"`
	Language   *string
	Plain      *bool
	LocalesDir *string `split_words:"true"`
	LogLevel   *string `split_words:"true"`
	LogFile    *string `split_words:"true"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: AGENDA_STORE_PATH, AGENDA_LANGUAGE, AGENDA_PLAIN,
// AGENDA_LOCALES_DIR, AGENDA_LOG_LEVEL, AGENDA_LOG_FILE.
func (c *Config) ApplyEnv() error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.merge(&rawConfig{
		Store: &rawStore{Path: e.StorePath},
		UI:    &rawUI{Language: e.Language, Plain: e.Plain, LocalesDir: e.LocalesDir},
		Log:   &rawLog{Level: e.LogLevel, File: e.LogFile},
	})
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store *rawStore `yaml:"store"`
	UI    *rawUI    `yaml:"ui"`
	Log   *rawLog   `yaml:"log"`
}

type rawStore struct {
	Path *string `yaml:"path"`
}

type rawUI struct {
	Language   *string `yaml:"language"`
	Plain      *bool   `yaml:"plain"`
	LocalesDir *string `yaml:"locales_dir"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Store != nil {
		if layer.Store.Path != nil {
			c.Store.Path = *layer.Store.Path
		}
	}
	if layer.UI != nil {
		if layer.UI.Language != nil {
			c.UI.Language = *layer.UI.Language
		}
		if layer.UI.Plain != nil {
			c.UI.Plain = *layer.UI.Plain
		}
		if layer.UI.LocalesDir != nil {
			c.UI.LocalesDir = *layer.UI.LocalesDir
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
}
