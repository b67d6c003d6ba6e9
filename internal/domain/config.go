package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Simulation   SimulationConfig   `mapstructure:"simulation"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SimulationConfig tunes the simulated download progress
type SimulationConfig struct {
	TickInterval      time.Duration `mapstructure:"tick_interval"`
	MinStep           int           `mapstructure:"min_step"`            // smallest progress step per tick, in percent
	MaxStep           int           `mapstructure:"max_step"`            // largest progress step per tick, inclusive
	SecondsPerPercent int           `mapstructure:"seconds_per_percent"` // rate behind the remaining estimate
}

// StorageConfig selects the durable slot for the download snapshot
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or file
	Path   string `mapstructure:"path"`
	Slot   string `mapstructure:"slot"`
}

// CacheConfig contains content cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // log, osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // category log files
}

const (
	StorageDriverSQLite = "sqlite"
	StorageDriverFile   = "file"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Simulation: SimulationConfig{
			TickInterval:      time.Second,
			MinStep:           5,
			MaxStep:           14,
			SecondsPerPercent: 6,
		},
		Storage: StorageConfig{
			Driver: StorageDriverSQLite,
			Path:   "$HOME/.flix-offline/downloads.db",
			Slot:   "downloads",
		},
		Cache: CacheConfig{
			TTL: 30 * time.Minute,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "log",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			LogsDir:    "$HOME/.flix-offline/logs",
		},
	}
}
