package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Authority.PrivateKey = "4c0883a69102937d6231471b5dbb6204fe51296170827936ea5cce4b76994b0f"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresAuthorityKey(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authority")
}

func TestValidate_EncryptedKeyNeedsPassword(t *testing.T) {
	cfg := Defaults()
	cfg.Authority.EncryptedKeyPath = "/etc/wagerpool/key.json"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_password")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "verbose"
	cfg.Server.Port = 0
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "server")
	assert.Contains(t, err.Error(), "redis")
}

func TestValidate_DSNSkipsHostChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.DSN = "postgres://user:pass@db:5432/wagerpool"
	cfg.Postgres.Host = ""
	cfg.Postgres.Port = 0
	cfg.Postgres.Database = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PoolBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.PoolMinConns = 20
	cfg.Postgres.PoolMaxConns = 10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool_min_conns")
}

func TestValidate_S3OnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.S3.Bucket = ""
	assert.NoError(t, cfg.Validate(), "disabled S3 is not validated")

	cfg.S3.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WAGERPOOL_POSTGRES_HOST", "db.internal")
	t.Setenv("WAGERPOOL_SERVER_PORT", "9090")
	t.Setenv("WAGERPOOL_SERVER_BET_RATE_WINDOW", "30s")
	t.Setenv("WAGERPOOL_POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("WAGERPOOL_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.BetRateWindow.Duration)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestApplyEnvOverrides_IgnoresUnsetAndMalformed(t *testing.T) {
	t.Setenv("WAGERPOOL_SERVER_PORT", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	// Malformed values leave the default in place.
	assert.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestDurationRoundTrip(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("5m")))
	assert.Equal(t, 5*time.Minute, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5m0s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
