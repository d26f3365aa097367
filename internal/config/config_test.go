package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.HTTP.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:3002"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "247247", cfg.Payment.Paybill)
	assert.Equal(t, "KCCA2024", cfg.Payment.Account)
	assert.Equal(t, int64(1000), cfg.Payment.DefaultFee)
	assert.Equal(t, uint(3), cfg.Mail.RetryAttempts)
	assert.Empty(t, cfg.Mail.Host)

	require.Error(t, cfg.Validate(), "no jwt secret configured")
	cfg.Auth.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcca.yaml")
	err := os.WriteFile(path, []byte(`
http:
  addr: ":8080"
database:
  driver: postgres
  dsn: postgres://kcca@localhost/kcca?sslmode=disable
auth:
  jwt_secret: from-file
  token_ttl: 2h
payment:
  default_fee: 1500
`), 0o644)
	require.NoError(t, err)

	t.Setenv("KCCA_AUTH_JWT_SECRET", "from-env")
	t.Setenv("KCCA_PAYMENT_PAYBILL", "400200")
	t.Setenv("KCCA_MAIL_HOST", "smtp.gmail.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "400200", cfg.Payment.Paybill)
	assert.Equal(t, int64(1500), cfg.Payment.DefaultFee)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcca.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"zero fee", func(c *Config) { c.Payment.DefaultFee = 0 }, "payment.default_fee"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "auth.token_ttl"},
		{"no upload size", func(c *Config) { c.HTTP.MaxUploadBytes = 0 }, "http.max_upload_bytes"},
		{"no expiry interval", func(c *Config) { c.Payment.ExpiryInterval = 0 }, "payment.expiry_interval"},
		{"no stats interval", func(c *Config) { c.StatsInterval = -time.Second }, "stats_interval"},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"no cors origins", func(c *Config) { c.HTTP.CORSOrigins = nil }, "http.cors_origins"},
		{"bad cors origin", func(c *Config) { c.HTTP.CORSOrigins = []string{"kcca.or.ke"} }, "http.cors_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "s3cret"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
