// Package config loads the YAML configuration shared by the formbuilder
// commands. Values not present in the file keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

// Config is the root configuration document.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Storage storage.Config `yaml:"storage"`
	Builder BuilderConfig  `yaml:"builder"`
	Log     LogConfig      `yaml:"log"`
	Theme   ThemeConfig    `yaml:"theme"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	Title           string        `yaml:"title"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxImportBytes caps the size of an uploaded field list.
	MaxImportBytes int64 `yaml:"max_import_bytes"`
}

type BuilderConfig struct {
	IDStrategy builder.IDStrategy `yaml:"id_strategy"`
}

type LogConfig struct {
	Level  string         `yaml:"level"`
	Format logging.Format `yaml:"format"`
}

type ThemeConfig struct {
	Variant string `yaml:"variant"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Title:           "Form Builder",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxImportBytes:  1 << 20,
		},
		Storage: storage.Config{
			Driver: storage.DriverFile,
			Path:   "./formbuilder-data",
			Key:    storage.DefaultKey,
		},
		Builder: BuilderConfig{IDStrategy: builder.IDStrategyTimestamp},
		Log:     LogConfig{Level: "info", Format: logging.FormatLogfmt},
		Theme:   ThemeConfig{Variant: theme.VariantLight},
	}
}

// Load reads path over the defaults. When expandEnv is set, ${VAR}
// references are substituted from the environment before parsing. An empty
// path returns the defaults.
func Load(path string, expandEnv bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	if err := cfg.Decode(file, expandEnv); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode overlays the YAML document in r onto cfg. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader, expandEnv bool) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if expandEnv {
		expanded, err := envsubst.EvalEnv(string(raw))
		if err != nil {
			return fmt.Errorf("expand env: %w", err)
		}
		raw = []byte(expanded)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config: server.base_path %q must start with /", c.Server.BasePath)
	}
	if c.Server.MaxImportBytes <= 0 {
		return errors.New("config: server.max_import_bytes must be positive")
	}
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverPostgres:
	case storage.DriverFile, storage.DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("config: storage.path is required for the %s driver", c.Storage.Driver)
		}
	case storage.DriverS3:
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return errors.New("config: storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if _, err := builder.NewIDGenerator(c.Builder.IDStrategy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logging.New(c.Log.Format, c.Log.Level, io.Discard); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch theme.NormalizeVariant(c.Theme.Variant) {
	case theme.VariantLight, theme.VariantDark:
	default:
		return fmt.Errorf("config: unknown theme.variant %q", c.Theme.Variant)
	}
	return nil
}
