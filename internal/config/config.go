// Package config resolves export options from an optional config file, the
// environment and command-line flags into a single option source.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the exporter reads, so
// "bundle-automatic-tags" is BIBTABLE_BUNDLE_AUTOMATIC_TAGS.
const EnvPrefix = "BIBTABLE"

// Load returns an option source reading the environment and, when path is
// not empty, the config file at path. No defaults are registered, so IsSet
// reports only options the user actually supplied.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Loaded config file", "path", v.ConfigFileUsed())

	return v, nil
}

// BindFlags binds each named flag to the option key of the same name.
// A bound flag overrides file and environment values only when it was set
// on the command line.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		flag := flags.Lookup(key)
		if flag == nil {
			return fmt.Errorf("failed to bind option %q: no such flag", key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind option %q: %w", key, err)
		}
	}
	return nil
}
