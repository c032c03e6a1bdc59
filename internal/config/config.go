package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the realtime daemon
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	DBPath       string        `yaml:"db_path"`
	JWTSecret    string        `yaml:"jwt_secret"`
	ClientBuffer int           `yaml:"client_buffer"`
	PingInterval time.Duration `yaml:"ping_interval"`
	PongTimeout  time.Duration `yaml:"pong_timeout"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
}

// ClientConfig configures CLI commands that talk to a daemon
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
}

// LogConfig selects the log level and destination. An empty File logs to
// stderr.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the config at path, or at the user's config directory when
// path is empty. A missing file yields the defaults. Environment variables
// override whatever the file says.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			// Can't determine config path, run on defaults and env
			config := &Config{}
			config.applyEnv()
			config.applyDefaults()
			return config, nil
		}
		path = p
	}

	var config Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	config.applyEnv()

	// Fill in any missing values with defaults
	config.applyDefaults()

	return &config, nil
}

// Save writes the config to path, or to the user's config directory when
// path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// The file may hold the JWT secret
	return os.WriteFile(path, data, 0o600)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "boardsync", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "boardsync", "config.yaml"), nil
}

// DefaultDBPath is ~/.boardsync/boardsync.db
func DefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "boardsync.db"
	}
	return filepath.Join(homeDir, ".boardsync", "boardsync.db")
}

// applyEnv lets BOARDSYNC_* variables override file values
func (c *Config) applyEnv() {
	c.Server.Addr = getEnvString("BOARDSYNC_ADDR", c.Server.Addr)
	c.Server.DBPath = getEnvString("BOARDSYNC_DB", c.Server.DBPath)
	c.Server.JWTSecret = getEnvString("BOARDSYNC_JWT_SECRET", c.Server.JWTSecret)
	c.Server.ClientBuffer = getEnvInt("BOARDSYNC_CLIENT_BUFFER", c.Server.ClientBuffer)
	c.Server.PingInterval = getEnvDuration("BOARDSYNC_PING_INTERVAL", c.Server.PingInterval)
	c.Client.ServerURL = getEnvString("BOARDSYNC_SERVER_URL", c.Client.ServerURL)
	c.Client.Token = getEnvString("BOARDSYNC_TOKEN", c.Client.Token)
	c.Log.Level = getEnvString("BOARDSYNC_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvString("BOARDSYNC_LOG_FILE", c.Log.File)
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:7420"
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = DefaultDBPath()
	}
	if c.Server.ClientBuffer <= 0 {
		c.Server.ClientBuffer = 64
	}
	if c.Server.PingInterval <= 0 {
		c.Server.PingInterval = 30 * time.Second
	}
	if c.Server.PongTimeout <= c.Server.PingInterval {
		c.Server.PongTimeout = 3 * c.Server.PingInterval
	}
	if c.Server.CallTimeout <= 0 {
		c.Server.CallTimeout = 30 * time.Second
	}
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = "http://" + c.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
