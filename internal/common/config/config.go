// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Servers  ServersConfig  `mapstructure:"servers"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServersConfig holds listen addresses for the two HTTP surfaces.
type ServersConfig struct {
	TaskAPI   ListenConfig `mapstructure:"task_api"`
	NotifyAPI ListenConfig `mapstructure:"notify_api"`
	Metrics   ListenConfig `mapstructure:"metrics"`
}

type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns a host:port listen address.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds settings for password hashing and token issuance.
type AuthConfig struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	TokenTTL     int    `mapstructure:"token_ttl"`   // hours
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
	Issuer       string `mapstructure:"issuer"`
	SessionStore string `mapstructure:"session_store"` // "redis" or "none"
}

// NotifyConfig holds settings for the realtime notification pipeline.
// URL is the delivery endpoint the task service calls after persisting
// a notification record; Timeout bounds that best-effort call.
type NotifyConfig struct {
	URL            string `mapstructure:"url"`
	Timeout        int    `mapstructure:"timeout"`          // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`    // milliseconds, per websocket push
	ReadBufferSize int    `mapstructure:"read_buffer_size"` // bytes
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
