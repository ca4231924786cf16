package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend"
	kvhttp "github.com/boldorider4/kvfront/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for kvfront.
type Config struct {
	Env      string            `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig      `mapstructure:"server"`
	Backend  backend.Config    `mapstructure:"backend"`
	Registry RegistryConfig    `mapstructure:"registry"`
	Token    TokenConfig       `mapstructure:"token"`
	CORS     kvhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig         `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Listing         string        `mapstructure:"listing" validate:"required,oneof=native indexed"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	MaxBodySize     int64         `mapstructure:"max_body_size" validate:"min=0"`
}

// RegistryConfig names the index entries and how they are updated.
type RegistryConfig struct {
	Strategy   string `mapstructure:"strategy" validate:"required,oneof=best_effort atomic"`
	KeysIndex  string `mapstructure:"keys_index" validate:"required,nefield=FilesIndex"`
	FilesIndex string `mapstructure:"files_index" validate:"required"`
}

// TokenConfig controls request token recording.
type TokenConfig struct {
	RecordRequests bool `mapstructure:"record_requests"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// ListSource returns the configured listing source.
func (c *Config) ListSource() kvfront.ListSource {
	return kvfront.ListSource(c.Server.Listing)
}

// Keys returns the registry configuration of the keys collection.
func (c *Config) Keys() kvfront.RegistryConfig {
	return kvfront.RegistryConfig{
		IndexKey: c.Registry.KeysIndex,
		Strategy: kvfront.IndexStrategy(c.Registry.Strategy),
		Reserved: []string{c.Registry.FilesIndex},
	}
}

// Files returns the registry configuration of the files collection.
func (c *Config) Files() kvfront.RegistryConfig {
	return kvfront.RegistryConfig{
		IndexKey: c.Registry.FilesIndex,
		Strategy: kvfront.IndexStrategy(c.Registry.Strategy),
		Reserved: []string{c.Registry.KeysIndex},
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"backend":    "backend.type",
	"dsn":        "backend.dsn",
	"seed-file":  "backend.seed_file",
	"port":       "server.port",
	"listing":    "server.listing",
	"strategy":   "registry.strategy",
	"record":     "token.record_requests",
	"log-level":  "log.level",
	"table-name": "backend.tables.entries",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 8787)
	v.SetDefault("server.listing", string(kvfront.SourceNative))
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", kvhttp.DefaultMaxBodySize)

	v.SetDefault("backend.type", "sqlite")
	v.SetDefault("backend.dsn", "kvfront.db")
	v.SetDefault("backend.tables.entries", "kv_entries")
	v.SetDefault("backend.seed_file", "")
	v.SetDefault("backend.auto_migrate", true)

	v.SetDefault("registry.strategy", string(kvfront.StrategyBestEffort))
	v.SetDefault("registry.keys_index", kvfront.DefaultKeysIndex)
	v.SetDefault("registry.files_index", kvfront.DefaultFilesIndex)

	v.SetDefault("token.record_requests", true)

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("KVFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Backend.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if !kvfront.IsValidName(cfg.Registry.KeysIndex) || !kvfront.IsValidName(cfg.Registry.FilesIndex) {
		return nil, errors.New("validate config: invalid index key")
	}

	return &cfg, nil
}
