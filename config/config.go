package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"db"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	OAuth       OAuthConfig       `mapstructure:"oauth"`
	RemoteStore RemoteStoreConfig `mapstructure:"remote"`
	Lifecycle   LifecycleConfig   `mapstructure:"lifecycle"`
	Reconcile   ReconcileConfig   `mapstructure:"reconcile"`
	App         AppConfig         `mapstructure:"app"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ApplyRate       float64       `mapstructure:"apply_rate"`
	ApplyBurst      int           `mapstructure:"apply_burst"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// AuthConfig selects how identity tokens are verified at sign-in.
// Provider is one of "firebase" or "header" (development only).
type AuthConfig struct {
	Provider                string        `mapstructure:"provider"`
	FirebaseCredentialsPath string        `mapstructure:"firebase_credentials_path"`
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
}

// Enabled reports whether Google sign-in is configured.
func (o OAuthConfig) Enabled() bool {
	return o.GoogleClientID != "" && o.GoogleClientSecret != ""
}

// RemoteStoreConfig points at the hosted REST interface of the same database
// Database.DSN names. Both backends address the projects, applications and
// workspaces tables.
type RemoteStoreConfig struct {
	URL        string  `mapstructure:"url"`
	ServiceKey string  `mapstructure:"service_key"`
	RateLimit  float64 `mapstructure:"rate_limit"`
	Burst      int     `mapstructure:"burst"`
}

// LifecycleConfig picks the application workflow strategy.
// Mode "transactional" requires Backend "postgres".
type LifecycleConfig struct {
	Mode    string `mapstructure:"mode"`
	Backend string `mapstructure:"backend"`
}

type ReconcileConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type AppConfig struct {
	Environment string   `mapstructure:"env"`
	LogLevel    string   `mapstructure:"log_level"`
	Version     string   `mapstructure:"version"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for _, k := range v.AllKeys() {
		_ = v.BindEnv(k)
	}
	// legacy single PORT variable
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.port", port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)
	v.SetDefault("server.apply_rate", 0.5)
	v.SetDefault("server.apply_burst", 3)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "workhub")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", 7*24*time.Hour)

	v.SetDefault("auth.provider", "firebase")
	v.SetDefault("auth.firebase_credentials_path", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", time.Hour)

	v.SetDefault("oauth.google_client_id", "")
	v.SetDefault("oauth.google_client_secret", "")
	v.SetDefault("oauth.google_redirect_url", "")

	v.SetDefault("remote.url", "")
	v.SetDefault("remote.service_key", "")
	v.SetDefault("remote.rate_limit", 10.0)
	v.SetDefault("remote.burst", 20)

	v.SetDefault("lifecycle.mode", "transactional")
	v.SetDefault("lifecycle.backend", "postgres")

	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.schedule", "0 */5 * * * *")

	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.cors_origins", "*")
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	switch c.Auth.Provider {
	case "firebase":
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("AUTH_FIREBASE_CREDENTIALS_PATH is required for the firebase provider")
		}
	case "header":
		if c.App.Environment == "production" {
			return fmt.Errorf("auth provider %q is not allowed in production", c.Auth.Provider)
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	switch c.Lifecycle.Backend {
	case "postgres":
	case "remote":
		if c.RemoteStore.URL == "" || c.RemoteStore.ServiceKey == "" {
			return fmt.Errorf("REMOTE_URL and REMOTE_SERVICE_KEY are required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown LIFECYCLE_BACKEND %q", c.Lifecycle.Backend)
	}

	switch c.Lifecycle.Mode {
	case "transactional":
		if c.Lifecycle.Backend != "postgres" {
			return fmt.Errorf("transactional lifecycle requires the postgres backend")
		}
	case "sequential":
	default:
		return fmt.Errorf("unknown LIFECYCLE_MODE %q", c.Lifecycle.Mode)
	}

	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
