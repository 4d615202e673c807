package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database   Database   `mapstructure:"database"`
	Server     Server     `mapstructure:"server"`
	Logger     Logger     `mapstructure:"logger"`
	Journal    Journal    `mapstructure:"journal"`
	ChartCheck ChartCheck `mapstructure:"chartcheck"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Server holds the configuration for the API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Journal holds journal defaults applied when a payload omits them.
type Journal struct {
	LocalTZ string   `mapstructure:"local_tz"`
	Assets  []string `mapstructure:"assets"`
}

// ChartCheck holds the configuration for the chart-URL checker.
type ChartCheck struct {
	TimeoutSeconds int     `mapstructure:"timeout"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; the defaults describe a working
// local setup.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("journal.local_tz", "UTC+3")
	viper.SetDefault("journal.assets", []string{"EUR/USD", "GBP/USD", "XAU/USD", "XAG/USD"})
	viper.SetDefault("chartcheck.timeout", 10) // seconds
	viper.SetDefault("chartcheck.rate_limit", 5)
	viper.SetDefault("chartcheck.rate_limit_burst", 2)

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
