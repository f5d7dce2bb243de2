package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Gradebook", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/stu.csv", cfg.Store.Path)
	assert.Equal(t, "admin", cfg.Auth.AdminID)
	assert.Equal(t, 24*time.Hour, cfg.Auth.ExpiresIn)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_PATH", "/tmp/alt/students.csv")
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("AUTH_ADMIN_ID", "registrar")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/alt/students.csv", cfg.Store.Path)
	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "registrar", cfg.Auth.AdminID)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_RejectsMissingSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSNAndURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:    "db.internal",
		Port:    5433,
		Name:    "gradebook",
		User:    "loader",
		SSLMode: "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=loader password= dbname=gradebook sslmode=require",
		cfg.GetDSN())
	assert.Equal(t,
		"postgres://loader:@db.internal:5433/gradebook?sslmode=require",
		cfg.GetURL())
}
