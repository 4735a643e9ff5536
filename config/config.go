// Package config loads the application configuration from a YAML file
// with environment overrides for secrets and deployment knobs. Nothing
// here is hard-coded into the domain packages: critical items, the asset
// catalog, recipients, and transport endpoints all arrive through Config.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration surface.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Inspection InspectionConfig `yaml:"inspection"`
	Alerts     AlertConfig      `yaml:"alerts"`
	Service    ServiceConfig    `yaml:"service"`
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig is the advisory list of known equipment. Submissions for
// keys outside the catalog are still accepted; the catalog feeds the UI.
type CatalogConfig struct {
	Assets []string `yaml:"assets"`
}

// InspectionConfig declares the checklist items and which of them are
// critical (a broken critical item triggers an alert).
type InspectionConfig struct {
	Items         []string `yaml:"items"`
	CriticalItems []string `yaml:"critical_items"`
}

// AlertConfig configures notification delivery.
type AlertConfig struct {
	Enabled            bool              `yaml:"enabled"`
	Force              bool              `yaml:"force"` // notify on every breakdown (testing)
	From               string            `yaml:"from"`
	Recipients         []string          `yaml:"recipients"`
	CriticalCategories []string          `yaml:"critical_categories"`
	Transports         []TransportConfig `yaml:"transports"`
}

// TransportConfig is one SMTP endpoint. The password is referenced by
// environment variable name, never stored in the file.
type TransportConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
	Mode        string `yaml:"mode"` // "starttls" or "ssl"

	Password string `yaml:"-"` // resolved from PasswordEnv at load time
}

// ServiceConfig drives the usage report's next-service thresholds.
type ServiceConfig struct {
	DefaultThresholdHours float64            `yaml:"default_threshold_hours"`
	Thresholds            map[string]float64 `yaml:"thresholds"`
}

// Default returns the configuration the original deployment shipped with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			RateLimitPerSec: 10,
			RateLimitBurst:  20,
		},
		Database: DatabaseConfig{Path: "inspection.db"},
		Inspection: InspectionConfig{
			Items:         []string{"Brake Inspection", "Engine", "Lights", "Tires"},
			CriticalItems: []string{"Brake Inspection", "Engine"},
		},
		Service: ServiceConfig{DefaultThresholdHours: 500},
	}
}

// Load reads the configuration from path, fills unset fields with
// defaults, and resolves environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	for i := range c.Alerts.Transports {
		t := &c.Alerts.Transports[i]
		if t.PasswordEnv != "" {
			t.Password = os.Getenv(t.PasswordEnv)
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	for _, t := range c.Alerts.Transports {
		if t.Host == "" || t.Port == 0 {
			return fmt.Errorf("alert transport needs host and port")
		}
		if t.Mode != "" && t.Mode != "starttls" && t.Mode != "ssl" {
			return fmt.Errorf("alert transport mode must be starttls or ssl, got %q", t.Mode)
		}
	}
	return nil
}
