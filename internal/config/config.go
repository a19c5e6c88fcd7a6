package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file name inside the base directory.
const FileName = "config.json"

// DirName is the base directory name under the user's home.
const DirName = ".pocket"

// EnvPrefix prefixes environment overrides (POCKET_LOG_LEVEL, ...).
const EnvPrefix = "POCKET"

// Config holds application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `mapstructure:"db_max_open_conns" json:"db_max_open_conns,omitempty" validate:"gte=0"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `mapstructure:"db_max_idle_conns" json:"db_max_idle_conns,omitempty" validate:"gte=0"`

	// AllowedPaths is an allowlist of directories for import/export files.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Relative paths are ignored.
	AllowedPaths []string `mapstructure:"allowed_paths" json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `mapstructure:"allow_unsafe_paths" json:"allow_unsafe_paths,omitempty"`

	// MaxImportBytes caps the size of an imported document.
	MaxImportBytes int64 `mapstructure:"max_import_bytes" json:"max_import_bytes" validate:"gt=0"`

	// SeedSample stores the sample capsule on first run (empty library).
	SeedSample bool `mapstructure:"seed_sample" json:"seed_sample"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `mapstructure:"disabled_tools" json:"disabled_tools,omitempty"`

	// BaseDir is the directory the config was loaded from. Set by Load.
	BaseDir string `mapstructure:"-" json:"-"`
}

// DefaultBaseDir returns ~/.pocket.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		MaxImportBytes: 5 * 1024 * 1024,
		SeedSample:     true,
	}
}

// Load loads configuration from baseDir/config.json with POCKET_* environment
// overrides. Returns the default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pocket.
func Load(baseDir string) (*Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("db_max_open_conns", def.DBMaxOpenConns)
	v.SetDefault("db_max_idle_conns", def.DBMaxIdleConns)
	v.SetDefault("allowed_paths", []string{})
	v.SetDefault("allow_unsafe_paths", def.AllowUnsafePaths)
	v.SetDefault("max_import_bytes", def.MaxImportBytes)
	v.SetDefault("seed_sample", def.SeedSample)
	v.SetDefault("disabled_tools", []string{})

	configPath := filepath.Join(baseDir, FileName)
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.BaseDir = baseDir
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.AllowedPaths = mergeStringSlice(nil, cfg.AllowedPaths)
	cfg.DisabledTools = mergeStringSlice(nil, cfg.DisabledTools)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads baseDir/.env into the process environment if it exists.
// Variables already set in the environment win.
func LoadEnv(baseDir string) error {
	envPath := filepath.Join(baseDir, ".env")
	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.LogLevel = overlay.LogLevel
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.MaxImportBytes = overlay.MaxImportBytes
	if result.MaxImportBytes == 0 {
		result.MaxImportBytes = base.MaxImportBytes
	}

	result.BaseDir = overlay.BaseDir
	if result.BaseDir == "" {
		result.BaseDir = base.BaseDir
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.SeedSample = base.SeedSample || overlay.SeedSample

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
