package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
}

// ServerConfig holds the API listener settings
type ServerConfig struct {
	Port            int `yaml:"port"`
	ShutdownSeconds int `yaml:"shutdown_seconds"`
}

// DatabaseConfig selects the gorm dialect and connection string
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	LogMode bool   `yaml:"log_mode"`
	Seed    bool   `yaml:"seed"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// RestaurantConfig holds lifecycle rules
type RestaurantConfig struct {
	Tables  int    `yaml:"tables"`
	TipRate string `yaml:"tip_rate"`
	// Timezone is used to interpret report date bounds
	Timezone string `yaml:"timezone"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ShutdownSeconds: 10},
		Database: DatabaseConfig{Driver: "sqlite3", DSN: "comanda.db", Seed: true},
		Log:      LogConfig{Level: "info"},
		Metrics:  MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
		Restaurant: RestaurantConfig{
			Tables:   20,
			TipRate:  "0.10",
			Timezone: "Local",
		},
	}
}

// maxTables matches the tables of the dining room
const maxTables = 20

// DotEnvFile is read from the working directory before environment overrides
const DotEnvFile = ".env"

// Load reads the YAML file at path over the defaults, then applies a .env
// file and COMANDA_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, DotEnvFile)
}

// LoadWithEnvFile is Load with an explicit dotenv path. An empty envFile
// skips the dotenv step.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// real environment variables win over the dotenv file
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"COMANDA_DB_DRIVER": &c.Database.Driver,
		"COMANDA_DB_DSN":    &c.Database.DSN,
		"COMANDA_LOG_LEVEL": &c.Log.Level,
		"COMANDA_TIP_RATE":  &c.Restaurant.TipRate,
		"COMANDA_TIMEZONE":  &c.Restaurant.Timezone,
	}
	for key, dst := range strVars {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"COMANDA_PORT":         &c.Server.Port,
		"COMANDA_METRICS_PORT": &c.Metrics.Port,
		"COMANDA_TABLES":       &c.Restaurant.Tables,
	}
	for key, dst := range intVars {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %q", key, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	if c.Restaurant.Tables < 1 || c.Restaurant.Tables > maxTables {
		return fmt.Errorf("restaurant.tables must be between 1 and %d, got %d", maxTables, c.Restaurant.Tables)
	}
	rate, err := c.TipRate()
	if err != nil {
		return err
	}
	if rate.IsNegative() {
		return fmt.Errorf("restaurant.tip_rate must not be negative, got %s", rate)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	return nil
}

// TipRate parses the suggested tip rate
func (c *Config) TipRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Restaurant.TipRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid restaurant.tip_rate %q: %w", c.Restaurant.TipRate, err)
	}
	return rate, nil
}
