// Package config loads dotkeep's user-facing configuration: where the store
// and backup trees live and how many snapshots to retain. Layering, lowest
// to highest precedence: embedded defaults, the user config file, then
// DOTKEEP_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotkeep/pkg/errors"
)

// ConfigFileName is the user configuration file looked up under the XDG
// config directory.
const ConfigFileName = "dotkeep.toml"

// Config is the explicit configuration struct handed to every component.
type Config struct {
	// StoreRoot is the managed store directory. Empty means the XDG default.
	StoreRoot string `koanf:"store_root"`

	// BackupRoot is the snapshot tree directory. Empty means the XDG default.
	BackupRoot string `koanf:"backup_root"`

	// RetentionLimit is the maximum number of snapshots kept per entry.
	RetentionLimit int `koanf:"retention_limit"`
}

// Load builds the effective configuration.
func Load() (*Config, error) {
	return load(filepath.Join(xdg.ConfigHome, "dotkeep", ConfigFileName))
}

// LoadFrom builds the configuration using an explicit config file path.
// An empty path skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	return load(configFile)
}

func load(configFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	// 2. User config file, if present
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", configFile)
			}
		}
	}

	// 3. Environment overrides: DOTKEEP_STORE_ROOT -> store_root
	if err := k.Load(env.Provider("DOTKEEP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DOTKEEP_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if cfg.RetentionLimit < 1 {
		return nil, errors.Newf(errors.ErrConfigLoad, "retention_limit must be at least 1, got %d", cfg.RetentionLimit)
	}

	return &cfg, nil
}
