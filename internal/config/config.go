package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	Portal  PortalConfig  `yaml:"portal"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Camera  CameraConfig  `yaml:"camera"`
	Archive ArchiveConfig `yaml:"archive"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// PortalConfig describes the remote student-portal REST backend.
type PortalConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	APIPrefix     string        `yaml:"api_prefix"`
	TokenHeader   string        `yaml:"token_header"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts" validate:"gte=0"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type SessionConfig struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend" validate:"omitempty,oneof=file redis"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

type RedisConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool_size"`
	ArchiveQueue string `yaml:"archive_queue"`
	DLQSuffix    string `yaml:"dlq_suffix"`
}

type CameraConfig struct {
	// FramesDir is read by the directory-backed camera used on headless
	// agents; a real device integration replaces it.
	FramesDir   string `yaml:"frames_dir"`
	JPEGQuality int    `yaml:"jpeg_quality" validate:"gte=0,lte=100"`
}

type ArchiveConfig struct {
	Enabled bool     `yaml:"enabled"`
	Workers int      `yaml:"workers"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type ExportConfig struct {
	OutputPath string `yaml:"output_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Portal.APIPrefix == "" {
		c.Portal.APIPrefix = "/api/v1/student"
	}
	if c.Portal.TokenHeader == "" {
		c.Portal.TokenHeader = "x-student-token"
	}
	if c.Portal.Timeout == 0 {
		c.Portal.Timeout = 30 * time.Second
	}
	if c.Portal.RetryDelay == 0 {
		c.Portal.RetryDelay = time.Second
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "file"
	}
	if c.Session.Path == "" {
		c.Session.Path = "session.json"
	}
	if c.Session.Key == "" {
		c.Session.Key = "student:session"
	}
	if c.Camera.JPEGQuality == 0 {
		c.Camera.JPEGQuality = 90
	}
	if c.Archive.Workers == 0 {
		c.Archive.Workers = 2
	}
	if c.Redis.ArchiveQueue == "" {
		c.Redis.ArchiveQueue = "capture:archive"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Server.RefreshInterval == 0 {
		c.Server.RefreshInterval = 5 * time.Minute
	}
	if c.Export.OutputPath == "" {
		c.Export.OutputPath = "schedule.xlsx"
	}
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
