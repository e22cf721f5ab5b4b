package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valislegal/valis/internal/domain/conversation"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Transport modes.
const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig         `yaml:"server"`
	DB        DBConfig             `yaml:"db"`
	Log       LogConfig            `yaml:"log"`
	Transport TransportConfig      `yaml:"transport"`
	Auth      AuthConfig           `yaml:"auth"`
	Redis     RedisConfig          `yaml:"redis"`
	Export    ExportConfig         `yaml:"export"`
	Inbox     InboxConfig          `yaml:"inbox"`
	Dispatch  DispatchConfig       `yaml:"dispatch"`
	Agents    []conversation.Agent `yaml:"agents"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type ExportConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type InboxConfig struct {
	Dir      string `yaml:"dir"`
	TenantID string `yaml:"tenant"`
}

type DispatchConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// DefaultAgents is the roster used when the file names none.
func DefaultAgents() []conversation.Agent {
	return []conversation.Agent{
		{ID: "lexa", Name: "Lexa", Nickname: "lexa"},
		{ID: "iuris", Name: "Iuris", Nickname: "iuris"},
		{ID: "norma", Name: "Norma", Nickname: "norma"},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Driver: DriverSQLite,
			Path:   "valis.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: ModeHTTP,
		},
		Export: ExportConfig{
			CacheTTL: 24 * time.Hour,
		},
		Dispatch: DispatchConfig{
			Delay: 1500 * time.Millisecond,
		},
	}

	if path := os.Getenv("VALIS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("VALIS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("VALIS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid VALIS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if driver := os.Getenv("VALIS_DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dbPath := os.Getenv("VALIS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("VALIS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("VALIS_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("VALIS_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("VALIS_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid VALIS_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if secret := os.Getenv("VALIS_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if addr := os.Getenv("VALIS_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if dir := os.Getenv("VALIS_INBOX_DIR"); dir != "" {
		cfg.Inbox.Dir = dir
	}
	if tenant := os.Getenv("VALIS_INBOX_TENANT"); tenant != "" {
		cfg.Inbox.TenantID = tenant
	}
	if delay := os.Getenv("VALIS_DISPATCH_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return Config{}, fmt.Errorf("invalid VALIS_DISPATCH_DELAY: %w", err)
		}
		cfg.Dispatch.Delay = d
	}

	if len(cfg.Agents) == 0 {
		cfg.Agents = DefaultAgents()
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	switch c.Transport.Mode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth enabled without a jwt secret")
	}
	if c.Inbox.Dir != "" && c.Inbox.TenantID == "" {
		return fmt.Errorf("inbox dir set without an inbox tenant")
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.ID == "" || seen[a.ID] {
			return fmt.Errorf("invalid agent roster: empty or duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
