// Package config loads runtime settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g.
// CHANGEPROXY_DELAY_COLLECTION_LOADING.
const EnvPrefix = "CHANGEPROXY"

// DefaultSpannerDatabase targets the local emulator.
const DefaultSpannerDatabase = "projects/test-project/instances/dev-instance/databases/changeproxy-db"

// Config holds the proxy manager and store settings.
type Config struct {
	TrackChanges           bool
	AssertAllowedType      bool
	DelayCollectionLoading bool
	// Unproxyable lists container kinds that must not be proxied.
	Unproxyable     []string
	LoadTimeout     time.Duration
	LogLevel        string
	SpannerDatabase string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TrackChanges:    true,
		LoadTimeout:     30 * time.Second,
		LogLevel:        "info",
		SpannerDatabase: DefaultSpannerDatabase,
	}
}

// Load reads configuration from the environment, layered over path when it
// is not empty.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("track_changes", def.TrackChanges)
	v.SetDefault("assert_allowed_type", def.AssertAllowedType)
	v.SetDefault("delay_collection_loading", def.DelayCollectionLoading)
	v.SetDefault("unproxyable", []string{})
	v.SetDefault("load_timeout", def.LoadTimeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("spanner_database", def.SpannerDatabase)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Config, error) {
	cfg := Config{
		TrackChanges:           v.GetBool("track_changes"),
		AssertAllowedType:      v.GetBool("assert_allowed_type"),
		DelayCollectionLoading: v.GetBool("delay_collection_loading"),
		Unproxyable:            v.GetStringSlice("unproxyable"),
		LoadTimeout:            v.GetDuration("load_timeout"),
		LogLevel:               v.GetString("log_level"),
		SpannerDatabase:        v.GetString("spanner_database"),
	}
	if cfg.LoadTimeout < 0 {
		return Config{}, fmt.Errorf("load_timeout must not be negative, got %s", cfg.LoadTimeout)
	}
	return cfg, nil
}
