// Package config loads the server configuration from an optional file
// overlaid by KCCA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	CORSOrigins    []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	WebDir         string   `mapstructure:"web_dir" yaml:"web_dir"`       // Static site bundle served at /
	UploadDir      string   `mapstructure:"upload_dir" yaml:"upload_dir"` // Poster and image uploads served at /uploads/
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite3, sqlite or postgres
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// AuthConfig holds the single admin credential.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type AuthConfig struct {
	Username     string        `mapstructure:"username" yaml:"username"`
	Password     string        `mapstructure:"password" yaml:"password"`           // Secret: plain password, hashed at startup
	PasswordHash string        `mapstructure:"password_hash" yaml:"password_hash"` // Secret: bcrypt hash, preferred over Password
	JWTSecret    string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`       // Secret: HMAC key for admin tokens
	TokenTTL     time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// PaymentConfig describes where registrants send M-Pesa payments.
type PaymentConfig struct {
	Paybill        string        `mapstructure:"paybill" yaml:"paybill"`
	Account        string        `mapstructure:"account" yaml:"account"`
	DefaultFee     int64         `mapstructure:"default_fee" yaml:"default_fee"`
	PendingTTL     time.Duration `mapstructure:"pending_ttl" yaml:"pending_ttl"`
	ExpiryInterval time.Duration `mapstructure:"expiry_interval" yaml:"expiry_interval"`
}

// MailConfig configures SMTP delivery of confirmation emails. An empty Host
// disables mail.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type MailConfig struct {
	Host          string `mapstructure:"host" yaml:"host"`
	Port          int    `mapstructure:"port" yaml:"port"`
	Username      string `mapstructure:"username" yaml:"username"`
	Password      string `mapstructure:"password" yaml:"password"` // Secret
	From          string `mapstructure:"from" yaml:"from"`
	RetryAttempts uint   `mapstructure:"retry_attempts" yaml:"retry_attempts"`
}

type Config struct {
	HTTP          HTTPConfig     `mapstructure:"http" yaml:"http"`
	Database      DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth          AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Payment       PaymentConfig  `mapstructure:"payment" yaml:"payment"`
	Mail          MailConfig     `mapstructure:"mail" yaml:"mail"`
	StatsInterval time.Duration  `mapstructure:"stats_interval" yaml:"stats_interval"`
}

// DevJWTSecret signs admin tokens when the server runs with --dev and no
// secret is configured.
const DevJWTSecret = "chesskenya_admin_secret"

var defaults = map[string]any{
	"http.addr":               ":3001",
	"http.cors_origins":       []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:3002"},
	"http.web_dir":            "web",
	"http.upload_dir":         "uploads",
	"http.max_upload_bytes":   int64(10 << 20),
	"database.driver":         "sqlite3",
	"database.dsn":            "kiambu_chess.db",
	"auth.username":           "admin",
	"auth.token_ttl":          24 * time.Hour,
	"payment.paybill":         "247247",
	"payment.account":         "KCCA2024",
	"payment.default_fee":     int64(1000),
	"payment.pending_ttl":     48 * time.Hour,
	"payment.expiry_interval": 10 * time.Minute,
	"mail.port":               587,
	"mail.from":               "kiambuchess@gmail.com",
	"mail.retry_attempts":     uint(3),
	"stats_interval":          10 * time.Minute,
}

// envOnly are keys without a default. Viper only consults the environment
// for keys it knows about, so these are bound explicitly.
var envOnly = []string{
	"auth.password",
	"auth.password_hash",
	"auth.jwt_secret",
	"mail.host",
	"mail.username",
	"mail.password",
}

// bindEnvs binds every key to KCCA_<KEY>, e.g. auth.jwt_secret to
// KCCA_AUTH_JWT_SECRET.
func bindEnvs(v *viper.Viper) error {
	keys := append([]string{}, envOnly...)
	for key := range defaults {
		keys = append(keys, key)
	}
	for _, key := range keys {
		env := "KCCA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the config file at path, if it exists, and applies KCCA_*
// environment variables on top of it. An empty path reads the environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Default is Load without a config file.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite3", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret: required"))
	}
	if c.Auth.Username == "" {
		errs = append(errs, errors.New("auth.username: required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl: must be positive"))
	}
	if c.Payment.DefaultFee <= 0 {
		errs = append(errs, errors.New("payment.default_fee: must be positive"))
	}
	if c.Payment.PendingTTL <= 0 {
		errs = append(errs, errors.New("payment.pending_ttl: must be positive"))
	}
	if c.Payment.ExpiryInterval <= 0 {
		errs = append(errs, errors.New("payment.expiry_interval: must be positive"))
	}
	if c.StatsInterval <= 0 {
		errs = append(errs, errors.New("stats_interval: must be positive"))
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("http.max_upload_bytes: must be positive"))
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		errs = append(errs, errors.New("http.cors_origins: required"))
	}
	for _, o := range c.HTTP.CORSOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("http.cors_origins: %q is not an http(s) origin", o))
		}
	}
	return errors.Join(errs...)
}
