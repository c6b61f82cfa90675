package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DatabaseURL is the postgres connection string.
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// WindowWeeks is the rolling fairness window in whole weeks.
	WindowWeeks int `yaml:"windowWeeks,omitempty" validate:"omitempty,min=1"`

	// PendingExpiryDays is how old a PENDING booking may grow before the
	// sweep expires it.
	PendingExpiryDays int `yaml:"pendingExpiryDays,omitempty" validate:"omitempty,min=1"`

	// SweepRRule schedules the expiry sweep when running in loop mode,
	// e.g. "FREQ=HOURLY;INTERVAL=6".
	SweepRRule string `yaml:"sweepRRule,omitempty"`

	// GmailUserID and GmailSender configure assignment notices. Leave
	// GmailUserID empty to disable notification sending.
	GmailUserID string `yaml:"gmailUserID,omitempty"`
	GmailSender string `yaml:"gmailSender,omitempty"`
}

// Defaults applied after load when the field is unset.
const (
	DefaultWindowWeeks       = 8
	DefaultPendingExpiryDays = 14
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration for the given environment. It
// looks for seva_config.<env>.yaml in the current directory first, then in
// the user's home directory.
func Load(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.WindowWeeks == 0 {
		cfg.WindowWeeks = DefaultWindowWeeks
	}
	if cfg.PendingExpiryDays == 0 {
		cfg.PendingExpiryDays = DefaultPendingExpiryDays
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.SweepRRule != "" {
		if _, err := rrule.StrToRRule(cfg.SweepRRule); err != nil {
			return fmt.Errorf("invalid sweepRRule: %w", err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in the current directory and
// the home directory. If env is provided the file name carries it as an
// extension, e.g. "seva_config.test.yaml".
func findConfigFile(env string) (string, error) {
	configFileName := "seva_config.yaml"
	if env != "" {
		configFileName = "seva_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
