package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete configuration of both binaries.
// board-api reads the server side sections, jobboard reads Client and Logging.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
	Auth     AuthConfig     `yaml:"auth"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Client   ClientConfig   `yaml:"client"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// DatabaseConfig selects and configures the SQL backend.
// For sqlite only Path is used.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RabbitMQConfig holds the RabbitMQ connection used to publish board events
type RabbitMQConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// RedisConfig holds the Redis pub/sub channel used to publish board events
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// AuthConfig holds session and seed account settings
type AuthConfig struct {
	SessionTTL    time.Duration `yaml:"session_ttl"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
	AdminUsername string        `yaml:"admin_username"`
}

// UploadsConfig holds attachment storage settings
type UploadsConfig struct {
	Dir       string `yaml:"dir"`
	PublicURL string `yaml:"public_url"`
	MaxBytes  int64  `yaml:"max_bytes"`
}

// ClientConfig holds settings of the jobboard command
type ClientConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	SessionFile     string        `yaml:"session_file"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Notifications   NotifyConfig  `yaml:"notifications"`
}

// NotifyConfig holds how long each kind of notification stays visible
type NotifyConfig struct {
	LoadTTL     time.Duration `yaml:"load_ttl"`
	MutationTTL time.Duration `yaml:"mutation_ttl"`
	ModalTTL    time.Duration `yaml:"modal_ttl"`
}

// Load reads and parses the configuration file.
// ${VAR} references are expanded from the environment before parsing.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Default returns the configuration used for any key missing from the file
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "jobboard.db",
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: ExchangeConfig{Name: "board_events", Type: "topic", Durable: true},
			Publish:  PublishConfig{RetryAttempts: 3, RetryInterval: time.Second, BackoffMultiplier: 2},
		},
		Redis:   RedisConfig{Channel: "board_events"},
		Logging: LoggingConfig{Level: "info", Format: "console", Output: "stderr"},
		App:     AppConfig{Name: "jobboard", Environment: "development"},
		Auth:    AuthConfig{SessionTTL: 24 * time.Hour, AdminUsername: "admin"},
		Uploads: UploadsConfig{Dir: "uploads", MaxBytes: 10 << 20},
		Client: ClientConfig{
			BaseURL:         "http://localhost:8080",
			Timeout:         30 * time.Second,
			RefreshInterval: 30 * time.Second,
			Notifications: NotifyConfig{
				LoadTTL:     3 * time.Second,
				MutationTTL: time.Second,
				ModalTTL:    3 * time.Second,
			},
		},
	}
}

// ValidateAPIConfig checks the sections board-api depends on
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port < MinPort || c.Database.Port > MaxPort {
			return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required")
		}
		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}
		if c.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.URL == "" {
			return fmt.Errorf("redis url is required")
		}
		if c.Redis.Channel == "" {
			return fmt.Errorf("redis channel is required")
		}
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth session_ttl must be greater than 0")
	}

	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads dir is required")
	}

	return nil
}

// ValidateClientConfig checks the sections the jobboard command depends on
func (c *Config) ValidateClientConfig() error {
	if c.Client.BaseURL == "" {
		return fmt.Errorf("client base_url is required")
	}

	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client timeout must be greater than 0")
	}

	n := c.Client.Notifications
	if n.LoadTTL <= 0 || n.MutationTTL <= 0 || n.ModalTTL <= 0 {
		return fmt.Errorf("client notification ttls must be greater than 0")
	}

	return nil
}

// SessionPath returns where the jobboard command keeps the signed-in session
func (c *ClientConfig) SessionPath() (string, error) {
	if c.SessionFile != "" {
		return c.SessionFile, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "jobboard", "session.yaml"), nil
}
