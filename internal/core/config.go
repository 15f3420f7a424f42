package core

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort             = 8080
	defaultDatabaseType     = "sqlite"
	defaultConnectionString = "diary.db"
	defaultFlashType        = "memory"
	defaultFlashTTL         = 10 * time.Minute

	FlashTypeMemory = "memory"
	FlashTypeRedis  = "redis"
)

type Database struct {
	Type             string `yaml:"type" env:"TYPE"`
	ConnectionString string `yaml:"connectionString" env:"CONNECTION_STRING"`
}

// Flash configures where one-shot user messages are kept between a redirect
// and the next page render.
type Flash struct {
	Type             string        `yaml:"type" env:"TYPE"`
	ConnectionString string        `yaml:"connectionString" env:"CONNECTION_STRING"`
	TTL              time.Duration `yaml:"ttl" env:"TTL"`
}

type ServiceConfig struct {
	Port     int      `yaml:"port" env:"PORT"`
	Timezone string   `yaml:"timezone" env:"TIMEZONE"`
	Database Database `yaml:"database" envPrefix:"DATABASE_"`
	Flash    Flash    `yaml:"flash" envPrefix:"FLASH_"`
}

// LoadConfig loads configuration from the specified YAML file. Environment
// variables prefixed with DIARY_ override values from the file.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	config := defaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: "DIARY_"}); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func defaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: defaultPort,
		Database: Database{
			Type:             defaultDatabaseType,
			ConnectionString: defaultConnectionString,
		},
		Flash: Flash{
			Type: defaultFlashType,
			TTL:  defaultFlashTTL,
		},
	}
}

func (config *ServiceConfig) validate() error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}

	switch config.Database.Type {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unsupported database type: %q", config.Database.Type)
	}
	if config.Database.ConnectionString == "" {
		return fmt.Errorf("database connection string is empty")
	}

	switch config.Flash.Type {
	case FlashTypeMemory:
	case FlashTypeRedis:
		if config.Flash.ConnectionString == "" {
			return fmt.Errorf("flash connection string is required for type %q", FlashTypeRedis)
		}
	default:
		return fmt.Errorf("unsupported flash type: %q", config.Flash.Type)
	}
	if config.Flash.TTL <= 0 {
		return fmt.Errorf("flash ttl must be positive, got %s", config.Flash.TTL)
	}

	if _, err := config.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone, or the process local zone when
// none is set. Calendar filters are evaluated in this zone.
func (config *ServiceConfig) Location() (*time.Location, error) {
	if config.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", config.Timezone, err)
	}
	return loc, nil
}
