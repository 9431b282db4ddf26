package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func clearConfigEnv(t *testing.T) {
	for _, k := range []string{"DUSTNBONES_API_URL", "VITE_API_URL", "DUSTNBONES_TIMEOUT", "DUSTNBONES_STATE_BACKEND", "DUSTNBONES_DATA_DIR", "DUSTNBONES_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func apiFlag(t *testing.T, value string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api-url", "", "")
	if value != "" {
		require.NoError(t, fs.Parse([]string{"--api-url", value}))
	}
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := loadConfig(t.TempDir(), apiFlag(t, ""))
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, types.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, types.StateBackendSQLite, cfg.StateBackend)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	yaml := "api_url: http://file.example/api\ntimeout: 3s\nstate_backend: file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Run("file over defaults", func(t *testing.T) {
		clearConfigEnv(t)
		cfg, err := loadConfig(dir, apiFlag(t, ""))
		require.NoError(t, err)
		assert.Equal(t, "http://file.example/api", cfg.APIURL)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, types.StateBackendFile, cfg.StateBackend)
	})

	t.Run("VITE_API_URL over file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("VITE_API_URL", "http://vite.example/api")
		cfg, err := loadConfig(dir, apiFlag(t, ""))
		require.NoError(t, err)
		assert.Equal(t, "http://vite.example/api", cfg.APIURL)
	})

	t.Run("DUSTNBONES env over file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("DUSTNBONES_API_URL", "http://env.example/api")
		t.Setenv("DUSTNBONES_TIMEOUT", "30s")
		cfg, err := loadConfig(dir, apiFlag(t, ""))
		require.NoError(t, err)
		assert.Equal(t, "http://env.example/api", cfg.APIURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("flag over env", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("DUSTNBONES_API_URL", "http://env.example/api")
		cfg, err := loadConfig(dir, apiFlag(t, "http://flag.example/api"))
		require.NoError(t, err)
		assert.Equal(t, "http://flag.example/api", cfg.APIURL)
	})
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"relative url", map[string]string{"DUSTNBONES_API_URL": "/api"}, types.ErrAPIURLInvalid},
		{"unknown backend", map[string]string{"DUSTNBONES_STATE_BACKEND": "redis"}, types.ErrStateBackendUnknown},
		{"negative timeout", map[string]string{"DUSTNBONES_TIMEOUT": "-1s"}, types.ErrTimeoutInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig(t.TempDir(), apiFlag(t, ""))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteConfigIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := types.Config{APIURL: "http://x/api", Timeout: 5 * time.Second, StateBackend: "file", LogLevel: "debug"}

	written, err := writeConfigIfMissing(path, cfg)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 5s")

	written, err = writeConfigIfMissing(path, types.Config{})
	require.NoError(t, err)
	assert.False(t, written)

	// The written file loads back to the same settings.
	clearConfigEnv(t)
	loaded, err := loadConfig(filepath.Dir(path), apiFlag(t, ""))
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURL, loaded.APIURL)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
	assert.Equal(t, cfg.StateBackend, loaded.StateBackend)
}
