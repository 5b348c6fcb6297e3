package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Shop        ShopConfig     `mapstructure:"shop"`
	Gateways    GatewaysConfig `mapstructure:"gateways"`
}

// TelegramConfig contains bot transport settings
type TelegramConfig struct {
	Token       string  `mapstructure:"token"`
	PollTimeout int     `mapstructure:"pollTimeout"` // seconds, long-poll timeout
	AdminIDs    []int64 `mapstructure:"adminIds"`    // seeded as admins at startup
}

// ServerConfig contains webhook HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// ShopConfig contains purchase policy settings
type ShopConfig struct {
	MaxQuantity int `mapstructure:"maxQuantity"`
	// EnforceSufficiency guards the balance check before a purchase debit.
	// Off means unlimited negative-balance purchases; only ever disable it
	// deliberately, in a test environment.
	EnforceSufficiency bool `mapstructure:"enforceSufficiency"`
}

// GatewaysConfig holds one section per payment provider
type GatewaysConfig struct {
	Wegate  GatewayConfig `mapstructure:"wegate"`
	PagBank GatewayConfig `mapstructure:"pagbank"`
}

// GatewayConfig contains the settings for one upstream payment provider.
// An empty WebhookSecret disables signature verification for that provider;
// acceptable for local development only.
type GatewayConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BaseURL       string        `mapstructure:"baseUrl"`
	Token         string        `mapstructure:"token"`
	WebhookSecret string        `mapstructure:"webhookSecret"`
	Timeout       time.Duration `mapstructure:"timeout"` // seconds, outbound HTTP
}
