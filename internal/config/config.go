// Package config provides the configuration options shared by the console
// and the stub API server. Values come from defaults, an optional YAML
// file, MAILERADMIN_* environment variables and bound command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the module.
const EnvPrefix = "MAILERADMIN"

// Keys.
const (
	KeyAPIURL          = "api_url"
	KeyDataDir         = "data_dir"
	KeyLogLevel        = "log_level"
	KeyTimeout         = "timeout"
	KeyRefreshInterval = "refresh_interval"
	KeyAddr            = "addr"
	KeyJWTSecret       = "jwt_secret"
	KeyTokenTTL        = "token_ttl"
	KeyCleanupInterval = "cleanup_interval"
	KeyServerLogLevel  = "server_log_level"
	KeyAuthRateLimit   = "auth_rate_limit"
)

// Options holds the configuration values for the application.
type Options struct {
	// APIURL is the base URL of the admin API, including the /api prefix.
	APIURL string `mapstructure:"api_url"`

	// DataDir is where the console keeps its token file.
	DataDir string `mapstructure:"data_dir"`

	// LogLevel is a zap level name.
	LogLevel string `mapstructure:"log_level"`

	// Timeout bounds every API request.
	Timeout time.Duration `mapstructure:"timeout"`

	// RefreshInterval is the period of list auto-refresh.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// Addr is the stub server's listening address (ip:port).
	Addr string `mapstructure:"addr"`

	// JWTSecret signs the stub server's bearer tokens.
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTL is the lifetime of a stub server token.
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// CleanupInterval is how often the stub server sweeps expired
	// registrations.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	// ServerLogLevel is the stub server's zap level.
	ServerLogLevel string `mapstructure:"server_log_level"`

	// AuthRateLimit is the per-IP login and register budget per minute.
	AuthRateLimit int `mapstructure:"auth_rate_limit"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "http://localhost:5000/api")
	v.SetDefault(KeyDataDir, defaultDataDir())
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyRefreshInterval, 30*time.Second)
	v.SetDefault(KeyAddr, "localhost:5000")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyTokenTTL, 24*time.Hour)
	v.SetDefault(KeyCleanupInterval, time.Minute)
	v.SetDefault(KeyServerLogLevel, "info")
	v.SetDefault(KeyAuthRateLimit, 20)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maileradmin"
	}
	return filepath.Join(home, ".maileradmin")
}

// Load reads the configuration into v and decodes it. file is an explicit
// config path; when empty, maileradmin.yaml is looked up in the working
// directory and in ~/.maileradmin, and its absence is not an error.
func Load(v *viper.Viper, file string) (*Options, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("maileradmin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.maileradmin")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	opts.ConfigFile = v.ConfigFileUsed()
	opts.DataDir = expandHome(opts.DataDir)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks values that would only fail later and less clearly.
func (o *Options) Validate() error {
	if o.APIURL == "" {
		return errors.New("config: api_url must not be empty")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", o.Timeout)
	}
	if o.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh_interval must be positive, got %s", o.RefreshInterval)
	}
	if o.TokenTTL <= 0 {
		return fmt.Errorf("config: token_ttl must be positive, got %s", o.TokenTTL)
	}
	if o.CleanupInterval <= 0 {
		return fmt.Errorf("config: cleanup_interval must be positive, got %s", o.CleanupInterval)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
