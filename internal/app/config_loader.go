package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.flix-offline")
		v.AddConfigPath("/etc/flix-offline")
	}

	// FLIXOFFLINE_SIMULATION_TICK_INTERVAL=500ms and friends
	v.SetEnvPrefix("FLIXOFFLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys
// that are missing from the config file
func bindDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("simulation.tick_interval", config.Simulation.TickInterval)
	v.SetDefault("simulation.min_step", config.Simulation.MinStep)
	v.SetDefault("simulation.max_step", config.Simulation.MaxStep)
	v.SetDefault("simulation.seconds_per_percent", config.Simulation.SecondsPerPercent)
	v.SetDefault("storage.driver", config.Storage.Driver)
	v.SetDefault("storage.path", config.Storage.Path)
	v.SetDefault("storage.slot", config.Storage.Slot)
	v.SetDefault("cache.ttl", config.Cache.TTL)
	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.method", config.Notification.Method)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
	v.SetDefault("logging.logs_dir", config.Logging.LogsDir)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Storage.Path = expandPath(config.Storage.Path)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Simulation.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}

	if config.Simulation.MinStep < 1 || config.Simulation.MinStep > 100 {
		return fmt.Errorf("min step must be between 1 and 100, got %d", config.Simulation.MinStep)
	}

	if config.Simulation.MaxStep < config.Simulation.MinStep || config.Simulation.MaxStep > 100 {
		return fmt.Errorf("max step must be between min step and 100, got %d", config.Simulation.MaxStep)
	}

	if config.Simulation.SecondsPerPercent < 0 {
		return fmt.Errorf("seconds per percent cannot be negative")
	}

	switch config.Storage.Driver {
	case domain.StorageDriverSQLite, domain.StorageDriverFile:
	default:
		return fmt.Errorf("unknown storage driver: %s", config.Storage.Driver)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path not configured")
	}

	if config.Storage.Slot == "" {
		return fmt.Errorf("storage slot not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("server", map[string]interface{}{
		"host": config.Server.Host,
		"port": config.Server.Port,
	})
	v.Set("simulation", map[string]interface{}{
		"tick_interval":       config.Simulation.TickInterval.String(),
		"min_step":            config.Simulation.MinStep,
		"max_step":            config.Simulation.MaxStep,
		"seconds_per_percent": config.Simulation.SecondsPerPercent,
	})
	v.Set("storage", map[string]interface{}{
		"driver": config.Storage.Driver,
		"path":   config.Storage.Path,
		"slot":   config.Storage.Slot,
	})
	v.Set("cache", map[string]interface{}{
		"ttl": config.Cache.TTL.String(),
	})
	v.Set("notification", map[string]interface{}{
		"enabled": config.Notification.Enabled,
		"method":  config.Notification.Method,
	})
	v.Set("logging", map[string]interface{}{
		"level":       config.Logging.Level,
		"format":      config.Logging.Format,
		"output_path": config.Logging.OutputPath,
		"logs_dir":    config.Logging.LogsDir,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
