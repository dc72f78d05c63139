// Package config loads the service configuration from a TOML file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port int    `mapstructure:"port"`
		Host string `mapstructure:"host"`
	} `mapstructure:"server"`
	Log struct {
		Level  string    `mapstructure:"level"`
		Levels LogLevels `mapstructure:"levels"`
	} `mapstructure:"log"`
	App struct {
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`
	Upstream     Upstream `mapstructure:"upstream"`
	Cache        Cache    `mapstructure:"cache"`
	Introspection struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"introspection"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
	Admin struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"admin"`
}

// Upstream describes how to reach the GraphQL content API.
type Upstream struct {
	// Endpoint is the generic GraphQL endpoint used when no gateway is set.
	Endpoint string `mapstructure:"endpoint"`
	// APIKey is sent as a bearer token to the generic endpoint.
	APIKey string `mapstructure:"api_key"`
	// Gateway is the Optimizely Graph gateway base URL.
	Gateway                string        `mapstructure:"gateway"`
	SingleKey              string        `mapstructure:"single_key"`
	AppKey                 string        `mapstructure:"app_key"`
	Secret                 string        `mapstructure:"secret"`
	ExternalPreviewEnabled bool          `mapstructure:"external_preview_enabled"`
	Timeout                time.Duration `mapstructure:"timeout"`
}

// Cache configures the response cache.
type Cache struct {
	Enabled       bool          `mapstructure:"enabled"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ResolvedEndpoint returns the endpoint used for public requests: the
// single-key gateway URL when both are configured, else the generic endpoint.
func (u Upstream) ResolvedEndpoint() string {
	if u.Gateway != "" && u.SingleKey != "" {
		return fmt.Sprintf("%s/content/v2?auth=%s", strings.TrimSuffix(u.Gateway, "/"), u.SingleKey)
	}
	return u.Endpoint
}

// ExternalPreviewReady reports whether basic-auth external preview can be served.
func (u Upstream) ExternalPreviewReady() bool {
	return u.ExternalPreviewEnabled && u.AppKey != "" && u.Secret != ""
}

// PublishedReady reports whether published (single-key) content can be served.
func (u Upstream) PublishedReady() bool {
	return u.Gateway != "" && u.SingleKey != ""
}

// legacyEnv binds the deployment variables the service has always honoured.
var legacyEnv = map[string]string{
	"upstream.endpoint":                 "GRAPHQL_ENDPOINT",
	"upstream.api_key":                  "GRAPHQL_API_KEY",
	"upstream.gateway":                  "OPTIMIZELY_GRAPH_GATEWAY",
	"upstream.single_key":               "OPTIMIZELY_GRAPH_SINGLE_KEY",
	"upstream.app_key":                  "OPTIMIZELY_GRAPH_APP_KEY",
	"upstream.secret":                   "OPTIMIZELY_GRAPH_SECRET",
	"upstream.external_preview_enabled": "EXTERNAL_PREVIEW_ENABLED",
	"server.port":                       "PORT",
}

// Load reads the configuration. An empty cfgFile searches ./config.toml and
// tolerates its absence; an explicit path must exist.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("CONTENTREST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := viper.BindEnv(key, "CONTENTREST_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return decode()
}

func decode() (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		LogLevelsDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Levels = flattenLevels(viper.Get("log.levels"))
	return &cfg, nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes. Reload failures are passed to onError.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := decode()
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("app.environment", "production")
	viper.SetDefault("upstream.endpoint", "http://localhost:4000/graphql")
	viper.SetDefault("upstream.timeout", 30*time.Second)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", 120*time.Second)
	viper.SetDefault("cache.sweep_interval", 60*time.Second)
	viper.SetDefault("introspection.ttl", 24*time.Hour)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("admin.enabled", false)
}

// BindFlags registers the persistent flags shared by every command.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Int("port", 3000, "Port to run the server on")
	_ = viper.BindPFlag("server.port", cmd.PersistentFlags().Lookup("port"))
}
