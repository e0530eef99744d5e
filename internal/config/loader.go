package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is shared by every setting: nested keys map onto environment
// variables as DRAGONSEYE_<SECTION>_<FIELD>, e.g. "database.host" becomes
// DRAGONSEYE_DATABASE_HOST.
const envPrefix = "DRAGONSEYE"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// finalize turns raw viper state into a validated *Config: unmarshal, fill
// defaults, validate.
func finalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Load reads the YAML file at configPath, merges DRAGONSEYE_* environment
// overrides on top, fills defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}
	return finalize(v)
}

// LoadFromEnv builds a Config from DRAGONSEYE_* environment variables alone.
// This is the 12-factor path for container deployments where no config file
// is mounted.
func LoadFromEnv() (*Config, error) {
	return finalize(newViper())
}

// MustLoad is Load for main(): a config failure at startup is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

// Watch invokes onChange with a freshly parsed Config each time configPath
// changes on disk.  A change that fails to parse or validate is dropped
// without invoking the callback, leaving the running settings untouched.
// Hot reload is meant for the safe subset of settings only (log level, rate
// limits); callers decide what to actually apply.
//
// Watch returns immediately; viper owns the watching goroutine.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Callers are expected to have run Load on the same path already, so a
	// read error here only delays the first change event.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := finalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
