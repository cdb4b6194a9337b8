package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kanbanflow/workflow-engine/internal/service"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Dispatcher   DispatcherConfig   `mapstructure:"dispatcher" yaml:"dispatcher"`
	Dependencies DependenciesConfig `mapstructure:"dependencies" yaml:"dependencies"`
	Classifier   ClassifierConfig   `mapstructure:"classifier" yaml:"classifier"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type DatabaseConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver"`
	Path          string `mapstructure:"path" yaml:"path"`
	BusyTimeoutMs int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

type DispatcherConfig struct {
	WebhookURL   string `mapstructure:"webhook_url" yaml:"webhook_url"`
	WebhookToken string `mapstructure:"webhook_token" yaml:"-"`
}

type DependenciesConfig struct {
	// RejectCycles refuses edges that would close a dependency cycle.
	RejectCycles bool `mapstructure:"reject_cycles" yaml:"reject_cycles"`
}

type ClassifierConfig struct {
	Rules []service.StatusRule `mapstructure:"rules" yaml:"rules"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./kanbanflow.db")
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("dispatcher.webhook_url", "")
	v.SetDefault("dispatcher.webhook_token", "")
	v.SetDefault("dependencies.reject_cycles", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads .env (optional), then config.yaml from the given path or the
// search path, then KANBAN_* environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".kanbanflow"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("invalid database.driver %q: want sqlite or sqlite3", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	for i, r := range c.Classifier.Rules {
		if !r.Status.IsValid() {
			return fmt.Errorf("classifier.rules[%d]: unknown status %q", i, r.Status)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("classifier.rules[%d]: keywords are required", i)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds the process logger described by the log section.
func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
