// Package config loads tada's layered configuration: defaults, config.yaml,
// TADA_* environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/kv"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "TADA"
)

// Config keys.
const (
	KeyBackend    = "backend"
	KeyDataDir    = "data_dir"
	KeyStorageKey = "storage_key"
	KeyAutosave   = "autosave"
	KeyTheme      = "theme"
	KeyLogLevel   = "log.level"
	KeyLogFormat  = "log.format"
	KeyLogFile    = "log.file"
)

// Config is the resolved configuration.
type Config struct {
	ConfigDir  string
	ConfigFile string // empty when no config.yaml was read
	DataDir    string
	Backend    string
	StorageKey string
	Autosave   bool
	Theme      string
	Log        LogConfig
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Flags carries command-line overrides. Empty fields are ignored.
type Flags struct {
	ConfigDir string
	DataDir   string
	Backend   string
	Theme     string
	LogLevel  string
}

// fileConfig is the shape written to config.yaml by WriteDefault.
type fileConfig struct {
	Backend    string        `yaml:"backend"`
	DataDir    string        `yaml:"data_dir,omitempty"`
	StorageKey string        `yaml:"storage_key"`
	Autosave   bool          `yaml:"autosave"`
	Theme      string        `yaml:"theme"`
	Log        fileLogConfig `yaml:"log"`
}

type fileLogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

var ErrInvalid = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, kv.BackendFile)
	v.SetDefault(KeyStorageKey, jsonstore.StorageKey)
	v.SetDefault(KeyAutosave, true)
	v.SetDefault(KeyTheme, "classic")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyDataDir, "")
}

// Load resolves the configuration. A missing config.yaml is not an error.
func Load(f Flags) (*Config, error) {
	configDir, err := ResolveConfigDir(f.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, val := range map[string]string{
		KeyDataDir:  f.DataDir,
		KeyBackend:  f.Backend,
		KeyTheme:    f.Theme,
		KeyLogLevel: f.LogLevel,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}

	cfg := &Config{
		ConfigDir:  configDir,
		ConfigFile: v.ConfigFileUsed(),
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		StorageKey: v.GetString(KeyStorageKey),
		Autosave:   v.GetBool(KeyAutosave),
		Theme:      v.GetString(KeyTheme),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
	}

	cfg.DataDir, err = resolveDataDir(v.GetString(KeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDataDir applies the configured value (flag, env or file, already
// merged by viper) > DefaultDataDir.
func resolveDataDir(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	return DefaultDataDir()
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	known := false
	for _, b := range kv.Backends {
		if c.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: backend %q (want one of %s)", ErrInvalid, c.Backend, strings.Join(kv.Backends, ", "))
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("%w: storage_key is empty", ErrInvalid)
	}
	return nil
}

// WriteDefault creates configDir and a default config.yaml if missing. It
// returns the file path and whether it was created.
func WriteDefault(configDir string) (string, bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := fileConfig{
		Backend:    kv.BackendFile,
		StorageKey: jsonstore.StorageKey,
		Autosave:   true,
		Theme:      "classic",
		Log:        fileLogConfig{Level: "warn", Format: "text"},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# tada configuration. Flags and TADA_* variables override these values.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return "", false, fmt.Errorf("write config: %w", err)
	}
	return path, true, nil
}
