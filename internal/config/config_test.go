package config

import (
	"testing"
	"time"

	"gym_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_SCHEMA_PATH",
		"JWT_SECRET", "JWT_EXPIRATION", "ENCRYPTION_KEY", "SETTINGS_CIPHER_VERSION",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
		"BOOTSTRAP_ADMIN_USERNAME", "BOOTSTRAP_ADMIN_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, utils.DefaultEncryptionKey, cfg.EncryptionKey)
	assert.True(t, cfg.UsingDefaultKey)
	assert.Equal(t, utils.CipherV1, cfg.CipherVersion)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "host=localhost port=5432 user=gym_user password=gym_password dbname=gym_backend_db sslmode=disable", cfg.Database.DSN())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENCRYPTION_KEY", "prod-key")
	t.Setenv("SETTINGS_CIPHER_VERSION", "V2")
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prod-key", cfg.EncryptionKey)
	assert.False(t, cfg.UsingDefaultKey)
	assert.Equal(t, utils.CipherV2, cfg.CipherVersion)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_EXPIRATION", "three days")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_EXPIRATION")

	clearEnv(t)
	t.Setenv("SETTINGS_CIPHER_VERSION", "v3")
	_, err = FromEnv()
	assert.ErrorIs(t, err, utils.ErrUnknownCipher)
}
