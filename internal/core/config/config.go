package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "GROAN_"

// Config represents the top-level application config.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Input   InputConfig   `koanf:"input"`
	Storage StorageConfig `koanf:"storage"`
	Builder BuilderConfig `koanf:"builder"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
}

type APIConfig struct {
	URL            string        `koanf:"url"`
	UserAgent      string        `koanf:"user_agent"`
	PageLimit      int           `koanf:"page_limit"`
	RequestDelay   time.Duration `koanf:"request_delay"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type InputConfig struct {
	GroupsFile string `koanf:"groups_file"`
}

type StorageConfig struct {
	Type         string `koanf:"type"` // filesystem | postgres
	RevisionsDir string `koanf:"revisions_dir"`
	SeriesDir    string `koanf:"series_dir"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type BuilderConfig struct {
	WorkerCount int `koanf:"worker_count"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

// SlogLevel maps Level onto slog. Validate guarantees a known value.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.url %q", c.API.URL)
	}
	if strings.TrimSpace(c.API.UserAgent) == "" {
		return fmt.Errorf("api.user_agent is required")
	}
	if c.API.PageLimit <= 0 || c.API.PageLimit > 500 {
		return fmt.Errorf("invalid api.page_limit %d (must be 1-500)", c.API.PageLimit)
	}
	if c.API.RequestDelay < 0 {
		return fmt.Errorf("api.request_delay must be >= 0")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be > 0")
	}

	if strings.TrimSpace(c.Input.GroupsFile) == "" {
		return fmt.Errorf("input.groups_file is required")
	}

	switch c.Storage.Type {
	case "filesystem":
		if strings.TrimSpace(c.Storage.RevisionsDir) == "" {
			return fmt.Errorf("storage.revisions_dir is required")
		}
		if strings.TrimSpace(c.Storage.SeriesDir) == "" {
			return fmt.Errorf("storage.series_dir is required")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required")
		}
		if c.Storage.MaxOpenConns <= 0 {
			return fmt.Errorf("storage.max_open_conns must be > 0")
		}
		if c.Storage.MaxIdleConns <= 0 {
			return fmt.Errorf("storage.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported storage.type %q (must be filesystem or postgres)", c.Storage.Type)
	}

	if c.Builder.WorkerCount <= 0 {
		return fmt.Errorf("builder.worker_count must be > 0")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	return nil
}

// Load parses config from defaults, an optional YAML file and GROAN_ env vars,
// then validates it. GROAN_API__REQUEST_DELAY sets api.request_delay.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"api.url":                "https://en.wikipedia.org/w/api.php",
		"api.user_agent":         "groan/1.0 (article size history; https://github.com/groan-lab/groan)",
		"api.page_limit":         500,
		"api.request_delay":      "1s",
		"api.request_timeout":    "30s",
		"input.groups_file":      "groans.csv",
		"storage.type":           "filesystem",
		"storage.revisions_dir":  "revisions",
		"storage.series_dir":     "time_series",
		"storage.dsn":            "",
		"storage.max_open_conns": 10,
		"storage.max_idle_conns": 5,
		"storage.auto_migrate":   true,
		"builder.worker_count":   1,
		"server.port":            8080,
		"server.host":            "0.0.0.0",
		"server.mode":            "release",
		"log.level":              "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
