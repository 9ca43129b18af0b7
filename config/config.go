package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete quill configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Qute     QuteConfig     `mapstructure:"qute"`
	AsciiDoc AsciiDocConfig `mapstructure:"asciidoc"`
	Server   ServerConfig   `mapstructure:"server"`
	Parse    ParseConfig    `mapstructure:"parse"`
}

// LogConfig holds logging configuration. An empty Path logs to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// QuteConfig holds template language settings.
type QuteConfig struct {
	Infix      bool     `mapstructure:"infix"`
	Extensions []string `mapstructure:"extensions"`
}

// AsciiDocConfig holds markup language settings.
type AsciiDocConfig struct {
	Extensions []string `mapstructure:"extensions"`
}

// ServerConfig holds language server settings.
type ServerConfig struct {
	Name         string        `mapstructure:"name"`
	ParseTimeout time.Duration `mapstructure:"parse_timeout"`
}

// ParseConfig holds settings of the parse command.
type ParseConfig struct {
	Workers int `mapstructure:"workers"`
}

var levels = map[string]int{
	"error": 0,
	"warn":  0,
	"info":  1,
	"debug": 2,
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.path", "")

	v.SetDefault("qute.infix", false)
	v.SetDefault("qute.extensions", []string{".qute", ".html", ".txt", ".json", ".yaml", ".yml"})

	v.SetDefault("asciidoc.extensions", []string{".adoc", ".asciidoc", ".asc"})

	v.SetDefault("server.name", "quill")
	v.SetDefault("server.parse_timeout", "5s")

	v.SetDefault("parse.workers", 8)
}

// NewViper returns a viper instance with defaults and QUILL_ environment
// overrides, reading path when it is not empty. A missing default config
// file is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// New decodes and validates the configuration held by v.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration at path, or the defaults and environment
// when path is empty.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return New(v)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[c.Log.Level]; !ok {
		return fmt.Errorf("log.level %q is not one of error, warn, info, debug", c.Log.Level)
	}
	if c.Parse.Workers < 1 {
		return errors.New("parse.workers must be at least 1")
	}
	if c.Server.ParseTimeout < 0 {
		return errors.New("server.parse_timeout must not be negative")
	}
	for _, ext := range c.Qute.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("qute.extensions: %q must start with a dot", ext)
		}
	}
	for _, ext := range c.AsciiDoc.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("asciidoc.extensions: %q must start with a dot", ext)
		}
	}
	return nil
}

// Verbosity maps Log.Level to a commonlog verbosity.
func (c *Config) Verbosity() int {
	return levels[c.Log.Level]
}

// LogPath returns the log file path, nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.Path == "" {
		return nil
	}
	return &c.Log.Path
}

// Language names the language of a file by its extension: "asciidoc",
// "qute", or "" when neither claims it. AsciiDoc wins ties.
func (c *Config) Language(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.AsciiDoc.Extensions {
		if e == ext {
			return LanguageAsciiDoc
		}
	}
	for _, e := range c.Qute.Extensions {
		if e == ext {
			return LanguageQute
		}
	}
	return ""
}

const (
	LanguageAsciiDoc = "asciidoc"
	LanguageQute     = "qute"
)

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := New(v)
	if err != nil {
		panic(fmt.Errorf("default configuration: %w", err))
	}
	return cfg
}
