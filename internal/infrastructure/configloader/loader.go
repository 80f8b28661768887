package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wallet_dashboard/internal/domain/entity"
)

// Connector backends.
const (
	ConnectorInjected = "injected"
	ConnectorCoinbase = "coinbase"
	ConnectorMock     = "mock"
)

// Dashboard data sources.
const (
	SourceMock = "mock"
	SourceLive = "live"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	ReadTimeout    int      `yaml:"readTimeout"`
	WriteTimeout   int      `yaml:"writeTimeout"`
	IdleTimeout    int      `yaml:"idleTimeout"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	Development bool   `yaml:"development"`
}

// InjectedConnectorConfig is one EIP-1193 style JSON-RPC wallet endpoint.
type InjectedConnectorConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

// ConnectorConfig selects and configures the wallet backend.
type ConnectorConfig struct {
	Kind                 string                    `yaml:"kind"`
	RequestTimeoutMillis int64                     `yaml:"requestTimeoutMillis"`
	Injected             []InjectedConnectorConfig `yaml:"injected"`
	Coinbase             CoinbaseConnectorConfig   `yaml:"coinbase"`
	Mock                 MockConnectorConfig       `yaml:"mock"`
}

// CoinbaseConnectorConfig configures the SDK-specific relay backend.
type CoinbaseConnectorConfig struct {
	RelayURL   string `yaml:"relayURL"`
	AppName    string `yaml:"appName"`
	Preference string `yaml:"preference"`
}

// MockConnectorConfig configures the in-process connector.
type MockConnectorConfig struct {
	Address string `yaml:"address"`
	Fail    string `yaml:"fail"`
}

// DashboardConfig selects where dashboard data comes from.
type DashboardConfig struct {
	Source string `yaml:"source"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// RpcClientConfig holds configuration for RPC clients.
type RpcClientConfig struct {
	DialTimeoutMs int64   `yaml:"dialTimeoutMs"`
	CallTimeoutMs int64   `yaml:"callTimeoutMs"`
	RateLimit     float64 `yaml:"rateLimit"`
	BurstLimit    int     `yaml:"burstLimit"`
}

// CacheConfig holds configuration for caching.
type CacheConfig struct {
	DashboardTTLSeconds    int `yaml:"dashboardTTLSeconds"`
	SessionIdleMinutes     int `yaml:"sessionIdleMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecFile string `yaml:"specFile"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	Networks    []entity.NetworkDescriptor `yaml:"networks"`
	Connector   ConnectorConfig            `yaml:"connector"`
	Dashboard   DashboardConfig            `yaml:"dashboard"`
	DEXScreener DEXScreenerConfig          `yaml:"dexScreener"`
	RpcClient   RpcClientConfig            `yaml:"rpcClient"`
	Cache       CacheConfig                `yaml:"cache"`
	Swagger     SwaggerConfig              `yaml:"swagger"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// Environment variables in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes a YAML document, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	cfg.Server.Port = strings.TrimPrefix(cfg.Server.Port, ":")
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 90 // must outlast connector.requestTimeoutMillis
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Connector.Kind == "" {
		cfg.Connector.Kind = ConnectorMock
		logrus.Infof("connector.kind not set, defaulting to %s", cfg.Connector.Kind)
	}
	if cfg.Connector.RequestTimeoutMillis <= 0 {
		cfg.Connector.RequestTimeoutMillis = 60000 // user approval in the wallet can take a while
	}
	if cfg.Connector.Coinbase.AppName == "" {
		cfg.Connector.Coinbase.AppName = "Wallet Dashboard"
	}
	if cfg.Connector.Coinbase.Preference == "" {
		cfg.Connector.Coinbase.Preference = "smartWalletOnly"
	}
	if cfg.Connector.Mock.Address == "" {
		cfg.Connector.Mock.Address = "0x1234567890AbcdEF1234567890aBcdef12345678"
	}

	if cfg.Dashboard.Source == "" {
		cfg.Dashboard.Source = SourceMock
		logrus.Infof("dashboard.source not set, defaulting to %s", cfg.Dashboard.Source)
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.RpcClient.DialTimeoutMs <= 0 {
		cfg.RpcClient.DialTimeoutMs = 10000
	}
	if cfg.RpcClient.CallTimeoutMs <= 0 {
		cfg.RpcClient.CallTimeoutMs = 10000
	}
	if cfg.RpcClient.RateLimit <= 0 {
		cfg.RpcClient.RateLimit = 10
	}
	if cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = 5
	}

	if cfg.Cache.DashboardTTLSeconds <= 0 {
		cfg.Cache.DashboardTTLSeconds = 30
	}
	if cfg.Cache.SessionIdleMinutes <= 0 {
		cfg.Cache.SessionIdleMinutes = 30
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 5
	}

	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate checks the values that have no sensible default.
func (cfg *Config) Validate() error {
	switch cfg.Connector.Kind {
	case ConnectorMock, ConnectorCoinbase:
	case ConnectorInjected:
		if len(cfg.Connector.Injected) == 0 {
			return fmt.Errorf("connector.kind %q requires at least one connector.injected entry", ConnectorInjected)
		}
		seen := make(map[string]struct{}, len(cfg.Connector.Injected))
		for _, c := range cfg.Connector.Injected {
			if c.ID == "" || c.Endpoint == "" {
				return fmt.Errorf("connector.injected entries need id and endpoint (got id=%q)", c.ID)
			}
			if _, dup := seen[c.ID]; dup {
				return fmt.Errorf("duplicate injected connector id %q", c.ID)
			}
			seen[c.ID] = struct{}{}
		}
	default:
		return fmt.Errorf("unknown connector.kind %q", cfg.Connector.Kind)
	}

	if cfg.Connector.Kind == ConnectorCoinbase && cfg.Connector.Coinbase.RelayURL == "" {
		return fmt.Errorf("connector.kind %q requires connector.coinbase.relayURL", ConnectorCoinbase)
	}
	switch cfg.Connector.Coinbase.Preference {
	case "smartWalletOnly", "eoaOnly", "all":
	default:
		return fmt.Errorf("unknown connector.coinbase.preference %q", cfg.Connector.Coinbase.Preference)
	}

	switch cfg.Dashboard.Source {
	case SourceMock, SourceLive:
	default:
		return fmt.Errorf("unknown dashboard.source %q", cfg.Dashboard.Source)
	}
	return nil
}
