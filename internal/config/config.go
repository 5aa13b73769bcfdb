// Package config loads and validates the devbox configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Launch  LaunchConfig  `mapstructure:"launch"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Wait    WaitConfig    `mapstructure:"wait"`
	SSH     SSHConfig     `mapstructure:"ssh"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig contains Lambda Cloud API settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LaunchConfig contains the default launch parameters.
type LaunchConfig struct {
	Region       string `mapstructure:"region"`
	InstanceType string `mapstructure:"instance_type"`
	SSHKeyName   string `mapstructure:"ssh_key_name"`
	FileSystem   string `mapstructure:"filesystem"`
	ImageID      string `mapstructure:"image_id"`
	Name         string `mapstructure:"name"`
}

// RetryConfig contains the launch retry/backoff settings.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
	Jitter       bool          `mapstructure:"jitter"`
}

// WaitConfig contains the readiness polling settings.
type WaitConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SSHConfig contains SSH display and config-generation settings.
type SSHConfig struct {
	Username  string `mapstructure:"username"`
	HostAlias string `mapstructure:"host_alias"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devbox.yaml"
	}
	return filepath.Join(home, ".config", "devbox", "config.yaml")
}

// Load loads configuration from the specified file path. A missing file is
// not an error; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	setDefaults(v)

	v.SetEnvPrefix("DEVBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.api_key", "DEVBOX_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://cloud.lambda.ai/api/v1")
	v.SetDefault("api.timeout", 2*time.Minute)

	v.SetDefault("retry.max_attempts", 10)
	v.SetDefault("retry.initial_delay", 5*time.Second)
	v.SetDefault("retry.max_delay", 60*time.Second)
	v.SetDefault("retry.multiplier", 1.5)
	v.SetDefault("retry.jitter", false)

	v.SetDefault("wait.poll_interval", 10*time.Second)
	v.SetDefault("wait.timeout", 10*time.Minute)

	v.SetDefault("ssh.username", "ubuntu")
	v.SetDefault("ssh.host_alias", "devbox")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// validate performs configuration validation.
func validate(config *Config) error {
	if err := validateAPI(&config.API); err != nil {
		return err
	}
	if err := validateRetry(&config.Retry); err != nil {
		return err
	}
	if err := validateWait(&config.Wait); err != nil {
		return err
	}
	return validateLogging(&config.Logging)
}

func validateAPI(api *APIConfig) error {
	if api.APIKey == "" {
		return fmt.Errorf("api.api_key is required (or set DEVBOX_API_KEY)")
	}
	if api.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	return nil
}

func validateRetry(retry *RetryConfig) error {
	if retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be >= 0")
	}
	if retry.InitialDelay <= 0 {
		return fmt.Errorf("retry.initial_delay must be positive")
	}
	if retry.MaxDelay < retry.InitialDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.initial_delay")
	}
	if retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be >= 1")
	}
	return nil
}

func validateWait(wait *WaitConfig) error {
	if wait.PollInterval <= 0 {
		return fmt.Errorf("wait.poll_interval must be positive")
	}
	if wait.Timeout <= 0 {
		return fmt.Errorf("wait.timeout must be positive")
	}
	return nil
}

func validateLogging(logging *LoggingConfig) error {
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	for _, level := range validLogLevels {
		if logging.Level == level {
			return nil
		}
	}
	return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLogLevels, ", "))
}

// SetupLogger creates a zap logger with the configured settings.
func (c *Config) SetupLogger() (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch c.Logging.Format {
	case "text":
		cfg := zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
		logger, err = cfg.Build()
	default:
		if c.Logging.Level == "debug" {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
