package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver      string `yaml:"driver"` // postgres, mysql
		DSN         string `yaml:"url"`
		AutoMigrate bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		SendTimeout  int    `yaml:"send_timeout"` // seconds per message
		MaxParallel  int    `yaml:"max_parallel"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	App struct {
		BaseURL     string   `yaml:"base_url"`
		CORSOrigins []string `yaml:"cors_origins"`
		// Minutes between sweeps that close ended auctions.
		CloseInterval int `yaml:"close_interval"`
	} `yaml:"app"`

	Seed struct {
		CountyEmail    string `yaml:"county_email"`
		CountyPassword string `yaml:"county_password"`
		CountyName     string `yaml:"county_name"`
	} `yaml:"seed"`
}

var AppConfig *Config

// LoadConfig reads .env (if any), the YAML file at CONFIG_PATH and the
// environment overrides, then stores the result in AppConfig.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	AppConfig = cfg
}

// Load builds a Config from the YAML file at path. A missing file is allowed
// when DATABASE_URL is set, so containers can run on environment alone.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("DATABASE_URL") != "":
		log.Printf("Config file %s not found, using environment", path)
	default:
		return nil, fmt.Errorf("open config file at %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "SMTP_FROM")
	setString(&cfg.App.BaseURL, "APP_BASE_URL")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.App.CORSOrigins = strings.Split(origins, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Email.SendTimeout <= 0 {
		cfg.Email.SendTimeout = 15
	}
	if cfg.Email.MaxParallel <= 0 {
		cfg.Email.MaxParallel = 1
	}
	if cfg.App.CloseInterval <= 0 {
		cfg.App.CloseInterval = 5
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "County Auctions"
	}
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	return nil
}

func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.Email.SendTimeout) * time.Second
}

func (c *Config) CloseInterval() time.Duration {
	return time.Duration(c.App.CloseInterval) * time.Minute
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
