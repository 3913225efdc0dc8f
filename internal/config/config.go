package config

import (
	"fmt"
	"strings"
	"time"

	"gym_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Config is the process configuration read from the environment.
type Config struct {
	Port     string
	Database DatabaseConfig

	JWTSecret     string
	JWTExpiration time.Duration

	EncryptionKey   string
	CipherVersion   utils.CipherVersion
	UsingDefaultKey bool

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string

	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: utils.Getenv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:       utils.Getenv("DB_HOST", "localhost"),
			Port:       utils.Getenv("DB_PORT", "5432"),
			User:       utils.Getenv("DB_USER", "gym_user"),
			Password:   utils.Getenv("DB_PASSWORD", "gym_password"),
			Name:       utils.Getenv("DB_NAME", "gym_backend_db"),
			SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		},
		JWTSecret:              utils.Getenv("JWT_SECRET", ""),
		EncryptionKey:          utils.Getenv("ENCRYPTION_KEY", ""),
		CORSAllowedOrigins:     utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
		LogLevel:               utils.Getenv("LOG_LEVEL", "info"),
		LogFormat:              utils.Getenv("LOG_FORMAT", "json"),
		BootstrapAdminUsername: utils.Getenv("BOOTSTRAP_ADMIN_USERNAME", ""),
		BootstrapAdminPassword: utils.Getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	ttl, err := utils.GetenvDuration("JWT_EXPIRATION", 72*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTExpiration = ttl

	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = utils.DefaultEncryptionKey
		cfg.UsingDefaultKey = true
	}

	switch v := utils.CipherVersion(strings.ToLower(utils.Getenv("SETTINGS_CIPHER_VERSION", string(utils.CipherV1)))); v {
	case utils.CipherV1, utils.CipherV2:
		cfg.CipherVersion = v
	default:
		return nil, fmt.Errorf("SETTINGS_CIPHER_VERSION: %w %q", utils.ErrUnknownCipher, v)
	}

	return cfg, nil
}
