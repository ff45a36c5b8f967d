package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by every setting.
const envPrefix = "GAENGINE"

// envKeys lists the keys bound to environment variables when no file
// mentions them. Viper's AutomaticEnv only resolves keys it already knows.
var envKeys = []string{
	"server.port", "server.mode", "server.rate_limit_rps", "server.rate_limit_burst",
	"redis.addr", "redis.password", "redis.db", "redis.key_prefix", "redis.fee_ttl",
	"kafka.brokers", "kafka.group_id",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
	"fee_registry.base_url", "payments.base_url", "identity.base_url", "identity.client_id", "identity.client_secret",
	"identity.system_username", "identity.system_password",
	"notify.base_url", "notify.api_key", "notify.case_details_base_url",
	"calendar.holidays_file", "calendar.bank_holidays_url", "calendar.location",
	"features.cosc_enabled",
	"worker.concurrency",
	"log.level", "log.format",
}

// newViper maps nested keys like "fee_registry.base_url" to
// GAENGINE_FEE_REGISTRY_BASE_URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges GAENGINE_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from GAENGINE_* variables only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-parses configPath whenever it changes on disk and hands the new
// Config to onChange. Invalid revisions go to onError and are otherwise
// skipped; only the log level and feature toggles are safe to apply live.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("config: reload of %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad panics on any error. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
