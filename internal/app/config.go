package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the facilitator server.
type Config struct {
	Server      ServerConfig           `mapstructure:"server"`
	Database    DatabaseConfig         `mapstructure:"database"`
	Access      AccessConfig           `mapstructure:"access"`
	Facilitator FacilitatorConfig      `mapstructure:"facilitator"`
	Chains      map[string]ChainConfig `mapstructure:"chains"`
	Proxy       ProxyConfig            `mapstructure:"proxy"`
	Webhooks    WebhookConfig          `mapstructure:"webhooks"`
	Monitoring  MonitoringConfig       `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	// Production toggles secure cookies and stricter defaults.
	Production bool `mapstructure:"production"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// AccessConfig configures entitlement grant signing.
type AccessConfig struct {
	// SigningSecret has no default. The server refuses to start without it.
	SigningSecret string `mapstructure:"signing_secret"`
}

// FacilitatorConfig points the engine at its verify/settle facilitator.
type FacilitatorConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// DefaultTenant is the facilitator slug used when no hostname matches.
	DefaultTenant string `mapstructure:"default_tenant"`
}

// ChainConfig holds per-network client construction parameters.
type ChainConfig struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
}

// ProxyConfig bounds origin forwarding.
type ProxyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebhookConfig bounds webhook delivery.
type WebhookConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// MonitoringConfig enables metrics endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("OPENFACILITATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate fails closed on misconfiguration that must stop startup. In
// particular an unset signing secret is an error, never a silent default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Access.SigningSecret) == "" {
		return errors.New("config: access.signing_secret must be set")
	}
	if c.Facilitator.URL == "" {
		return errors.New("config: facilitator.url must be set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8402)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.production", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/openfacilitator.sqlite")

	v.SetDefault("facilitator.timeout", "30s")
	v.SetDefault("facilitator.default_tenant", "")

	v.SetDefault("chains.base.rpc_endpoint", "https://mainnet.base.org")
	v.SetDefault("chains.base-sepolia.rpc_endpoint", "https://sepolia.base.org")
	v.SetDefault("chains.solana.rpc_endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("chains.solana-devnet.rpc_endpoint", "https://api.devnet.solana.com")

	v.SetDefault("proxy.timeout", "30s")

	v.SetDefault("webhooks.timeout", "10s")
	v.SetDefault("webhooks.max_attempts", 3)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
