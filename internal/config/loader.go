// Package config provides configuration loading, defaults, and validation for
// molstore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all molstore settings.
const envPrefix = "MOLSTORE"

// envSelector names the variable that picks the configuration profile.
const envSelector = envPrefix + "_ENVIRONMENT"

// newViper builds a pre-configured Viper instance: YAML file type, MOLSTORE_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "database.host" resolve to
// "MOLSTORE_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges any MOLSTORE_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from MOLSTORE_* environment variables,
// with no config file required.
//
//	MOLSTORE_<SECTION>_<FIELD>   e.g.  MOLSTORE_DATABASE_HOST, MOLSTORE_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// ProfilePath returns dir/config.<env>.yaml where env is the lower-cased value
// of MOLSTORE_ENVIRONMENT (default "dev").
func ProfilePath(dir string) string {
	env := strings.ToLower(strings.TrimSpace(os.Getenv(envSelector)))
	if env == "" {
		env = strings.ToLower(string(DefaultEnvironment))
	}
	return filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
}

// Resolve loads configPath when given.  Otherwise it loads the profile file
// under dir if one exists, falling back to environment variables alone.
func Resolve(configPath, dir string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}
	profile := ProfilePath(dir)
	if _, err := os.Stat(profile); err == nil {
		return Load(profile)
	}
	return LoadFromEnv()
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	cfg.Environment = Environment(strings.ToUpper(string(cfg.Environment)))
	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file is modified.  Only the log level is applied at runtime by
// the binaries; other fields require a restart.
//
// An edit that fails to parse or validate is reported to onError (if non-nil)
// and onChange is not called.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on any error.  Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
