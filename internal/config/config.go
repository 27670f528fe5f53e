// Package config loads transly settings from defaults, an optional YAML file,
// TRANSLY_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/logging"
	"github.com/valpere/transly/internal/pipeline"
	"github.com/valpere/transly/internal/session"
	"github.com/valpere/transly/internal/translator"
)

const (
	EnvPrefix     = "TRANSLY"
	redactedValue = "[redacted]"
)

// Engines lists the accepted values of the engine key.
var Engines = []string{"backend", "google", "mymemory"}

type MyMemoryConfig struct {
	Email string `mapstructure:"email" json:"email"`
}

type SessionConfig struct {
	File string `mapstructure:"file" json:"file"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

type Config struct {
	API      api.Config              `mapstructure:"api" json:"api"`
	Engine   string                  `mapstructure:"engine" json:"engine"`
	Google   translator.GoogleConfig `mapstructure:"google" json:"google"`
	MyMemory MyMemoryConfig          `mapstructure:"mymemory" json:"mymemory"`
	Chunk    pipeline.Config         `mapstructure:"chunk" json:"chunk"`
	Detect   bool                    `mapstructure:"detect" json:"detect"`
	Verify   bool                    `mapstructure:"verify" json:"verify"`
	Session  SessionConfig           `mapstructure:"session" json:"session"`
	Log      LogConfig               `mapstructure:"log" json:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" json:"-"`
}

// New returns a viper instance with every key registered and environment
// lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	chunk := pipeline.DefaultConfig()

	v.SetDefault("api.base_url", api.DefaultBaseURL)
	v.SetDefault("api.timeout", api.DefaultTimeout)
	v.SetDefault("api.token", "")
	v.SetDefault("engine", "backend")
	v.SetDefault("google.credentials", "")
	v.SetDefault("google.project_id", "")
	v.SetDefault("mymemory.email", "")
	v.SetDefault("chunk.direct_limit", chunk.DirectLimit)
	v.SetDefault("chunk.max_chars", chunk.MaxChars)
	v.SetDefault("chunk.hard_split", chunk.HardSplit)
	v.SetDefault("chunk.interval", chunk.Interval)
	v.SetDefault("detect", false)
	v.SetDefault("verify", false)
	v.SetDefault("session.file", "")
	v.SetDefault("log.level", logging.DefaultLevel)
}

// DefaultDir is $XDG_CONFIG_HOME/transly, falling back to ~/.config/transly.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "transly"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(home, ".config", "transly"), nil
}

// Load reads file, or config.yaml from DefaultDir when file is empty, and
// decodes the merged settings. A missing default file is not an error; a
// missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Session.File == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.Session.File = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !validEngine(c.Engine) {
		return fmt.Errorf("unknown engine %q (want one of %s)", c.Engine, strings.Join(Engines, ", "))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Chunk.DirectLimit < 0 || c.Chunk.MaxChars < 0 {
		return fmt.Errorf("chunk sizes must not be negative")
	}
	if c.Chunk.Interval < 0 {
		return fmt.Errorf("chunk.interval must not be negative")
	}
	return nil
}

func validEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}

// Print writes the configuration as YAML with secrets redacted.
func (c *Config) Print(w io.Writer) error {
	printable := *c
	if printable.API.Token != "" {
		printable.API.Token = redactedValue
	}

	out, err := yaml.MarshalWithOptions(printable, durationEncoder())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// durationEncoder renders time.Duration as "300ms" instead of nanoseconds.
func durationEncoder() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](func(d time.Duration) ([]byte, error) {
		return yaml.Marshal(d.String())
	})
}
