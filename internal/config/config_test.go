package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxcasase/BDPW-Back-End/internal/identity"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, identity.Scheme{User: identity.Numeric, Item: identity.Numeric}, cfg.IdentityScheme())
	assert.Equal(t, "mpt", cfg.Mongo().Database)
	assert.True(t, cfg.Events())
	assert.False(t, cfg.Tracing().Enabled)
}

func TestLoad_OpaqueForms(t *testing.T) {
	setEnvs(t, map[string]string{
		"USER_ID_FORM": "opaque",
		"ITEM_ID_FORM": "opaque",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, identity.Opaque, cfg.IdentityScheme().User)
	assert.Equal(t, identity.Opaque, cfg.IdentityScheme().Item)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr string
	}{
		{"unknown identity form", map[string]string{"USER_ID_FORM": "uuid"}, "unknown identity form"},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"zero store timeout", map[string]string{"STORE_TIMEOUT": "0s"}, "STORE_TIMEOUT must be positive"},
		{"sample rate above one", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "rate limit"},
		{"default secret in production", map[string]string{"ENVIRONMENT": "production"}, "JWT_SECRET must be explicitly set"},
		{"short secret in production", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "short-but-not-default"}, "at least 32 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ProductionWithStrongSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "this-is-a-very-secure-secret-key-for-production-use-1234",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Tracing().Environment)
}

func TestEvents_Disabled(t *testing.T) {
	setEnvs(t, map[string]string{"EVENTS_ENABLED": "false"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Events())
}

func TestPostgres_DSN(t *testing.T) {
	setEnvs(t, map[string]string{"POSTGRES_HOST": "db", "POSTGRES_DB": "users"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://mpt:mpt_secret@db:5432/users?sslmode=disable", cfg.Postgres().DSN())
}
