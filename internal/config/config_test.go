package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", opts.APIURL)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, 30*time.Second, opts.RefreshInterval)
	assert.Equal(t, "localhost:5000", opts.Addr)
	assert.Equal(t, 24*time.Hour, opts.TokenTTL)
	assert.Equal(t, "info", opts.ServerLogLevel)
	assert.Equal(t, 20, opts.AuthRateLimit)
	assert.Equal(t, ".maileradmin", filepath.Base(opts.DataDir))
	assert.Empty(t, opts.ConfigFile)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "maileradmin.yaml")
	require.NoError(t, os.WriteFile(file, []byte("api_url: http://file.example/api\ntimeout: 3s\nlog_level: debug\n"), 0o600))

	t.Setenv("MAILERADMIN_API_URL", "http://env.example/api")

	opts, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example/api", opts.APIURL)
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, file, opts.ConfigFile)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		env     string
		value   string
		wantErr string
	}{
		{"MAILERADMIN_TIMEOUT", "0s", "timeout must be positive"},
		{"MAILERADMIN_REFRESH_INTERVAL", "-1s", "refresh_interval must be positive"},
		{"MAILERADMIN_TOKEN_TTL", "0s", "token_ttl must be positive"},
		{"MAILERADMIN_CLEANUP_INTERVAL", "0s", "cleanup_interval must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.env, tt.value)

			_, err := Load(viper.New(), "")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs", expandHome("/abs"))
}
