package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHAREIT_DB_PATH", "/tmp/shareit.db")

	yamlContent := `
database:
  path: "${SHAREIT_DB_PATH}"
api:
  enabled: true
  grpc:
    enabled: true
booking:
  strict_transitions: true
  write_quota:
    enabled: true
    requests: 5
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shareit.db", cfg.Database.Path)
	assert.Equal(t, "shareit", cfg.App.Name)
	assert.True(t, cfg.API.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.True(t, cfg.Booking.StrictTransitions)
	assert.Equal(t, 5, cfg.Booking.WriteQuota.Requests)
	assert.Equal(t, time.Duration(models.DefaultQuotaWindow)*time.Second, cfg.Booking.WriteQuota.Window())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "in-memory store needs no path",
			cfg:     Config{Database: DatabaseConfig{InMemory: true}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "same http and grpc port",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{
					Enabled: true,
					HTTP:    APIHTTPConfig{Port: 9000},
					GRPC:    APIGRPCConfig{Enabled: true, Port: 9000},
				},
			},
			wantErr: true,
		},
		{
			name: "quota without window",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{WriteQuota: QuotaConfig{Enabled: true, Requests: 3}},
			},
			wantErr: true,
		},
		{
			name: "duplicate api key",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{Auth: APIAuthConfig{APIKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadShippedConfig(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "")

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.True(t, cfg.Booking.WriteQuota.Enabled)
	assert.Equal(t, time.Minute, cfg.Booking.WriteQuota.Window())
	assert.Equal(t, "configs/seed.yaml", cfg.SeedFile)
}
