// Package config loads the platform-version tool configuration from defaults,
// an optional YAML file, PLATFORM_VERSION_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "PLATFORM_VERSION"

// 槽位后端
const (
	BackendDefault  = "default"
	BackendFile     = "file"
	BackendRegistry = "registry"
	BackendMemory   = "memory"
)

// 输出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// 配置键
const (
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"
	KeyStoreBackend  = "store.backend"
	KeyStoreDir      = "store.dir"
	KeyOutputFormat  = "output.format"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Output OutputConfig `mapstructure:"output"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type StoreConfig struct {
	// Backend selects the identifier slot: default (registry on Windows, file elsewhere),
	// file, registry or memory.
	Backend string `mapstructure:"backend"`
	// Dir overrides the directory of the file slot.
	Dir string `mapstructure:"dir"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults 设置全部配置键的默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSize, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAge, 28)
	v.SetDefault(KeyLogCompress, false)
	v.SetDefault(KeyStoreBackend, BackendDefault)
	v.SetDefault(KeyStoreDir, "")
	v.SetDefault(KeyOutputFormat, FormatJSON)
}

// Load reads the optional config file at path and decodes the merged configuration.
// The decoded configuration is returned together with any validation error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "disable":
	default:
		errs = append(errs, fmt.Errorf("%s: unrecognized level %q", KeyLogLevel, c.Log.Level))
	}
	if c.Log.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyLogMaxSize))
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyLogMaxBackups))
	}
	if c.Log.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyLogMaxAge))
	}

	switch c.Store.Backend {
	case BackendDefault, BackendFile, BackendRegistry, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", KeyStoreBackend, c.Store.Backend))
	}
	if c.Store.Dir != "" && c.Store.Backend != BackendFile && c.Store.Backend != BackendDefault {
		errs = append(errs, fmt.Errorf("%s: only valid with the file backend", KeyStoreDir))
	}

	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown format %q", KeyOutputFormat, c.Output.Format))
	}

	return errors.Join(errs...)
}
