package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/ledger.db", cfg.Database.Path)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "statements", cfg.Storage.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("LEDGER_DATABASE_DRIVER", "Postgres")
	t.Setenv("LEDGER_DATABASE_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_AUTH_JWTSECRET", "s3cret")
	t.Setenv("LEDGER_AUTH_TOKENTTLMINUTES", "15")
	t.Setenv("LEDGER_STORAGE_BUCKET", "statements-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "statements-bucket", cfg.Storage.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.DSN = "" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = " " }},
		{"negative ttl", func(c *Config) { c.Auth.TokenTTLMinutes = -1 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	memory := base
	memory.Database.Driver = DriverMemory
	assert.NoError(t, memory.Validate())
}
