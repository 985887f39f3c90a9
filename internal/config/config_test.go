package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "businki", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, StorageLocal, cfg.Storage.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 60, cfg.LLM.TimeoutSec)
	assert.Equal(t, int64(16<<20), cfg.Document.MaxUploadSizeBytes)
	assert.Equal(t, "document.activated", cfg.RabbitMQ.RoutingKey.DocumentActivated)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BUSINKI_DATABASE_DRIVER", "sqlite")
	t.Setenv("BUSINKI_LLM_PROVIDER", "http")
	t.Setenv("BUSINKI_LLM_BASEURL", "http://llm.local")
	t.Setenv("BUSINKI_LLM_MODEL", "house-model")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ProviderHTTP, cfg.LLM.Provider)
	assert.Equal(t, "http://llm.local", cfg.LLM.BaseURL)
	assert.Equal(t, "house-model", cfg.LLM.Model)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DBCfg{Driver: DriverPostgres},
			Storage:  StorageCfg{Driver: StorageLocal},
			LLM:      LLMCfg{Provider: ProviderOpenAI, Temperature: 0.7},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:        "unknown database driver",
			mutate:      func(c *Config) { c.Database.Driver = "mysql" },
			errContains: "database driver",
		},
		{
			name:        "s3 without bucket",
			mutate:      func(c *Config) { c.Storage.Driver = StorageS3 },
			errContains: "s3.bucket",
		},
		{
			name:        "http provider without base url",
			mutate:      func(c *Config) { c.LLM.Provider = ProviderHTTP },
			errContains: "llm.baseurl",
		},
		{
			name:        "temperature out of range",
			mutate:      func(c *Config) { c.LLM.Temperature = 2.5 },
			errContains: "temperature",
		},
		{
			name:        "auth without key material",
			mutate:      func(c *Config) { c.Auth.Enabled = true },
			errContains: "auth requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
