package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from the yaml file named after the
// environment (GG_ENV), with env-variable overrides on top.
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix("GG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// Validate ensures required settings are present before startup proceeds.
func (c *Config) Validate() error {
	var missing []string

	if c.Telegram.Token == "" {
		missing = append(missing, "telegram.token (or GG_TELEGRAM_TOKEN)")
	}
	if c.Server.Port == 0 {
		missing = append(missing, "server.port")
	}
	if c.Database.Host == "" {
		missing = append(missing, "database.host (or GG_DB_HOST)")
	}
	if c.Database.Database == "" {
		missing = append(missing, "database.database (or GG_DB_NAME)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Telegram defaults
	v.SetDefault("telegram.pollTimeout", 30) // seconds

	// Webhook server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Database defaults for non-sensitive settings
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 2) // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Shop policy defaults
	v.SetDefault("shop.maxQuantity", 10)
	v.SetDefault("shop.enforceSufficiency", true)

	// Gateway defaults
	v.SetDefault("gateways.wegate.enabled", true)
	v.SetDefault("gateways.wegate.timeout", 10) // seconds
	v.SetDefault("gateways.pagbank.enabled", false)
	v.SetDefault("gateways.pagbank.timeout", 10) // seconds
}

// getEnvironment determines the environment from GG_ENV
func getEnvironment() string {
	env := os.Getenv("GG_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures sensitive values always come from the
// environment when set, regardless of what the config file says.
func processEnvOverrides(v *viper.Viper) {
	if token := os.Getenv("GG_TELEGRAM_TOKEN"); token != "" {
		v.Set("telegram.token", token)
	}
	if dbHost := os.Getenv("GG_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("GG_DB_PORT"); dbPort != "" {
		v.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("GG_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("GG_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("GG_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}
	if token := os.Getenv("GG_WEGATE_TOKEN"); token != "" {
		v.Set("gateways.wegate.token", token)
	}
	if secret := os.Getenv("GG_WEGATE_WEBHOOK_SECRET"); secret != "" {
		v.Set("gateways.wegate.webhookSecret", secret)
	}
	if token := os.Getenv("GG_PAGBANK_TOKEN"); token != "" {
		v.Set("gateways.pagbank.token", token)
	}
	if secret := os.Getenv("GG_PAGBANK_WEBHOOK_SECRET"); secret != "" {
		v.Set("gateways.pagbank.webhookSecret", secret)
	}
}

// processDurations converts raw numeric config values into durations with
// their documented units.
func processDurations(config *Config) {
	config.Server.ReadTimeout = toSeconds(config.Server.ReadTimeout)
	config.Server.WriteTimeout = toSeconds(config.Server.WriteTimeout)
	config.Server.IdleTimeout = toSeconds(config.Server.IdleTimeout)
	config.Server.ReadHeaderTimeout = toSeconds(config.Server.ReadHeaderTimeout)
	config.Server.ShutdownTimeout = toSeconds(config.Server.ShutdownTimeout)

	config.Database.ConnMaxLifetime = toMinutes(config.Database.ConnMaxLifetime)
	config.Database.ConnMaxIdleTime = toMinutes(config.Database.ConnMaxIdleTime)
	config.Database.QueryTimeout = toSeconds(config.Database.QueryTimeout)
	config.Database.RetryDelay = toSeconds(config.Database.RetryDelay)

	config.Gateways.Wegate.Timeout = toSeconds(config.Gateways.Wegate.Timeout)
	config.Gateways.PagBank.Timeout = toSeconds(config.Gateways.PagBank.Timeout)
}

// toSeconds treats bare numbers as seconds; already-qualified durations pass through.
func toSeconds(d time.Duration) time.Duration {
	if d > 0 && d < time.Microsecond {
		return d * time.Second
	}
	return d
}

func toMinutes(d time.Duration) time.Duration {
	if d > 0 && d < time.Microsecond {
		return d * time.Minute
	}
	return d
}
