package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvFile    = ".env"
	ConfigFile = "config.yaml"
)

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Paging  PagingConfig  `yaml:"paging"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info notice warn warning error fatal panic"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver" validate:"oneof=badger postgres"`
	DSN        string `yaml:"dsn" validate:"required_if=Driver postgres"`
	BadgerPath string `yaml:"badger_path"`
	BackupDir  string `yaml:"backup_dir" validate:"required"`
}

// PagingConfig bounds the page sizes served by the list endpoints.
type PagingConfig struct {
	DefaultSize int `yaml:"default_size" validate:"gt=0,ltefield=MaxSize"`
	MaxSize     int `yaml:"max_size" validate:"gt=0"`
}

// Default returns the configuration used when no file or variable overrides it.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			Driver:     DriverBadger,
			BadgerPath: "data/badger",
			BackupDir:  "data/backups",
		},
		Paging: PagingConfig{DefaultSize: 10, MaxSize: 100},
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order. An empty path looks for config.yaml in the
// working directory or its parents; a missing file is not an error then.
// Variables from a .env file next to the config file are loaded first and
// never replace variables already set.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(GetBasePath(), ConfigFile)
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), EnvFile))

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if port := getEnv("PORT", ""); port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = getEnv("POSTGRES_DSN", cfg.Storage.DSN)
	cfg.Storage.BadgerPath = getEnv("BADGER_PATH", cfg.Storage.BadgerPath)

	if v := getEnv("SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	if v := getEnv("PAGE_SIZE_MAX", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAGE_SIZE_MAX: %w", err)
		}
		cfg.Paging.MaxSize = n
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetBasePath returns the nearest directory, starting at the working directory,
// that contains config.yaml. It falls back to the working directory.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
