package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "chapterhub-backend", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "warn", cfg.Governance.ConflictPolicy)
	assert.Equal(t, 10, cfg.Governance.StoreHistoryCapacity)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestValidate_SamplingRatioOutOfRange(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Telemetry.SamplingRatio = 1.5

	assert.Error(t, cfg.validate())
}

func TestValidate_InvalidConflictPolicy(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Governance.ConflictPolicy = "ignore"

	assert.Error(t, cfg.validate())
}

func TestValidate_IdleExceedsOpenConns(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 50
	cfg.Database.MaxOpenConns = 10

	assert.Error(t, cfg.validate())
}

func TestValidate_ProductionRequiresPassword(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	cfg.Database.SSLMode = "require"

	assert.Error(t, cfg.validate())

	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.validate())
}

func TestDatabaseDSN_EscapesCredentials(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "chapterhub",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
