// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT"`
	Port           string      `mapstructure:"PORT"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
	JwtSecretKey   string      `mapstructure:"JWT_SECRET_KEY"`
	FrontendURL    string      `mapstructure:"FRONTEND_URL"`
	// BackendURL is the externally reachable base URL, used to build the
	// gateway webhook notification URL.
	BackendURL string `mapstructure:"BACKEND_URL"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST"`
	Port         int    `mapstructure:"PORT"`
	User         string `mapstructure:"USER"`
	Password     string `mapstructure:"PASSWORD"`
	Name         string `mapstructure:"NAME"`
	SSLMode      string `mapstructure:"SSL_MODE"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and
// pgxpool.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details for the payment edge locks.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
	UseTLS   bool   `mapstructure:"USE_TLS"`
}

// MercadoPagoConfig holds credentials and tuning for the payment gateway.
type MercadoPagoConfig struct {
	AccessToken    string `mapstructure:"ACCESS_TOKEN"`
	WebhookSecret  string `mapstructure:"WEBHOOK_SECRET"`
	BaseURL        string `mapstructure:"BASE_URL"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS"`
	// PendingTTLMinutes is how long a pending checkout blocks its edge
	// before a new payment request may supersede it.
	PendingTTLMinutes int `mapstructure:"PENDING_TTL_MINUTES"`
}

// Config is the root configuration object.
type Config struct {
	Server      ServerConfig      `mapstructure:"SERVER"`
	Database    DatabaseConfig    `mapstructure:"DATABASE"`
	Redis       RedisConfig       `mapstructure:"REDIS"`
	MercadoPago MercadoPagoConfig `mapstructure:"MERCADO_PAGO"`
}

// LoadConfig reads configuration from the environment with sane defaults and
// validates it. Fails fast on anything that would break at request time.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SERVER.BACKEND_URL", "http://localhost:8080")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "cuentaclara_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("MERCADO_PAGO.BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("MERCADO_PAGO.TIMEOUT_SECONDS", 10)
	v.SetDefault("MERCADO_PAGO.PENDING_TTL_MINUTES", 30)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
		{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
		{"SERVER.BACKEND_URL", "BACKEND_URL"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"MERCADO_PAGO.ACCESS_TOKEN", "MP_ACCESS_TOKEN"},
		{"MERCADO_PAGO.WEBHOOK_SECRET", "MP_WEBHOOK_SECRET"},
		{"MERCADO_PAGO.BASE_URL", "MP_BASE_URL"},
		{"MERCADO_PAGO.TIMEOUT_SECONDS", "MP_TIMEOUT_SECONDS"},
		{"MERCADO_PAGO.PENDING_TTL_MINUTES", "MP_PENDING_TTL_MINUTES"},
	}
	for _, binding := range envBindings {
		if err := v.BindEnv(binding[0], binding[1]); err != nil {
			return nil, fmt.Errorf("failed to bind env var %s: %w", binding[1], err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s", c.Server.Environment)
	}

	if c.Server.Environment == EnvProduction {
		if len(c.Server.JwtSecretKey) < minJWTLength {
			return fmt.Errorf("JWT_SECRET_KEY must be at least %d characters in production", minJWTLength)
		}
		if c.MercadoPago.AccessToken == "" {
			return fmt.Errorf("MP_ACCESS_TOKEN is required in production")
		}
		if c.MercadoPago.WebhookSecret == "" {
			return fmt.Errorf("MP_WEBHOOK_SECRET is required in production")
		}
	}

	if c.MercadoPago.TimeoutSeconds <= 0 {
		return fmt.Errorf("MP_TIMEOUT_SECONDS must be positive")
	}
	if c.MercadoPago.PendingTTLMinutes <= 0 {
		return fmt.Errorf("MP_PENDING_TTL_MINUTES must be positive")
	}

	return nil
}
