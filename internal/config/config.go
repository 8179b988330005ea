package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all timekeeper configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Process-level keys read from API_KEY and OTHER_KEY
	Keys KeysConfig `yaml:"keys"`

	// HTTP chat surface
	Server ServerConfig `yaml:"server"`

	// Record store backend
	Store StoreConfig `yaml:"store"`

	// Remark extraction model
	LLM LLMConfig `yaml:"llm"`

	// Timesheet email transport
	Mail MailConfig `yaml:"mail"`

	// Salary estimation
	Payroll PayrollConfig `yaml:"payroll"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// KeysConfig carries the two opaque keys the process surface accepts.
type KeysConfig struct {
	APIKey   string `yaml:"api_key"`
	OtherKey string `yaml:"other_key"`
}

// ServerConfig configures the HTTP chat server.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// PayrollConfig configures the salary estimator.
type PayrollConfig struct {
	HoursPerDay int    `yaml:"hours_per_day"`
	HourlyRate  int    `yaml:"hourly_rate"`
	Currency    string `yaml:"currency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "timekeeper",
		Version: "1.0.0",

		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         7860,
			ReadTimeout:  "15s",
			WriteTimeout: "90s",
		},

		Store: StoreConfig{
			Backend:   BackendXLSX,
			Path:      "attendance.xlsx",
			SheetName: "Attendance",
		},

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  "60s",
		},

		Mail: MailConfig{
			Provider: "sendgrid",
			Subject:  "Attendance Report",
			Body:     "Hi,\n\nPlease find the attached attendance report.\n\nRegards,\nAttendance Assistant",
		},

		Payroll: PayrollConfig{
			HoursPerDay: 8,
			HourlyRate:  144,
			Currency:    "₹",
		},

		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			LogsDir: ".timekeeper/logs",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("API_KEY"); key != "" {
		c.Keys.APIKey = key
	}
	if key := os.Getenv("OTHER_KEY"); key != "" {
		c.Keys.OtherKey = key
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		c.Mail.APIKey = key
	}
	if from := os.Getenv("FROM_EMAIL"); from != "" {
		c.Mail.From = from
	}

	if path := os.Getenv("TIMEKEEPER_STORE"); path != "" {
		c.Store.Path = path
	}
	if backend := os.Getenv("TIMEKEEPER_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// GetLLMTimeout returns the extraction timeout as a duration.
// Zero disables the deadline.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 60*time.Second)
}

// GetReadTimeout returns the HTTP read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 90*time.Second)
}

// ListenAddr returns host:port for the chat server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validBackend := false
	for _, b := range ValidBackends {
		if c.Store.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}
	if c.Store.Backend != BackendMemory && c.Store.Path == "" {
		return fmt.Errorf("store path required for %s backend", c.Store.Backend)
	}

	if c.Payroll.HoursPerDay <= 0 || c.Payroll.HourlyRate < 0 {
		return fmt.Errorf("invalid payroll settings: %d hours/day at %d/hr", c.Payroll.HoursPerDay, c.Payroll.HourlyRate)
	}

	return nil
}
