package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Backend      string `mapstructure:"backend"`
	URL          string `mapstructure:"url"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	TestDBName   string `mapstructure:"test_name"` // Separate database for integration tests
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// AMQPConfig configures ledger event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// env names kept from earlier deployments
var envBindings = map[string][]string{
	"server.port":                 {"SERVER_PORT", "PORT"},
	"server.mode":                 {"GIN_MODE"},
	"server.cors_allowed_origins": {"CORS_ALLOWED_ORIGINS"},
	"server.shutdown_timeout":     {"SHUTDOWN_TIMEOUT"},
	"database.backend":            {"DATA_BACKEND"},
	"database.url":                {"DATABASE_URL"},
	"database.host":               {"DB_HOST"},
	"database.port":               {"DB_PORT"},
	"database.username":           {"DB_USERNAME"},
	"database.password":           {"DB_PASSWORD"},
	"database.name":               {"DB_NAME"},
	"database.sslmode":            {"DB_SSLMODE"},
	"database.test_name":          {"TEST_DB_NAME"},
	"database.max_open_conns":     {"DB_MAX_OPEN_CONNS"},
	"database.max_idle_conns":     {"DB_MAX_IDLE_CONNS"},
	"auth.jwt_secret":             {"JWT_SECRET"},
	"auth.jwt_issuer":             {"JWT_ISSUER"},
	"auth.token_ttl":              {"JWT_TTL"},
	"amqp.url":                    {"AMQP_URL"},
	"amqp.exchange":               {"AMQP_EXCHANGE"},
	"amqp.routing_key":            {"AMQP_ROUTING_KEY"},
	"log.level":                   {"LOG_LEVEL"},
	"log.format":                  {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.backend", BackendPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "fintrack")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.test_name", "fintrack_test")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.jwt_issuer", "fintrack")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("amqp.exchange", "fintrack")
	v.SetDefault("amqp.routing_key", "ledger.events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Database.Backend = strings.ToLower(strings.TrimSpace(c.Database.Backend))
	return &c, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Database.Backend {
	case BackendPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			problems = append(problems, "database host or DATABASE_URL is required for the postgres backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be one of postgres, memory", c.Database.Backend))
	}

	if len(c.Auth.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "token TTL must be positive")
	}

	if c.AMQP.URL != "" && c.AMQP.Exchange == "" {
		problems = append(problems, "AMQP exchange is required when AMQP_URL is set")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}
