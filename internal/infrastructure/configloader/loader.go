package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	CoinGecko CoinGeckoConfig `yaml:"coinGecko"`
	Quote     QuoteConfig     `yaml:"quote"`
	Fees      FeeConfig       `yaml:"fees"`
	Requote   RequoteConfig   `yaml:"requote"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
	Tokens    TokensConfig    `yaml:"tokens"`
	// RPCOverrides replaces the registry's default RPC URL per chain
	// identifier (e.g. "ethereum": "https://...").
	RPCOverrides map[string]string `yaml:"rpcOverrides"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// CoinGeckoConfig holds the configuration for the price source client.
type CoinGeckoConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RetryCount           int     `yaml:"retryCount"`
	RetryDelayMillis     int64   `yaml:"retryDelayMillis"`
	RateLimitPerSecond   float64 `yaml:"rateLimitPerSecond"`
	RateBurst            int     `yaml:"rateBurst"`
	PriceTTLSeconds      int     `yaml:"priceTTLSeconds"`
}

// QuoteConfig holds the quote pipeline settings.
type QuoteConfig struct {
	CacheDurationMillis  int64   `yaml:"cacheDurationMillis"`
	SlippageTolerance    float64 `yaml:"slippageTolerance"`
	PriceImpactThreshold float64 `yaml:"priceImpactThreshold"`
	ImpactCoefficient    float64 `yaml:"impactCoefficient"`
	ImpactCap            float64 `yaml:"impactCap"`
	// DisableInFlightDedupe turns off single-flight de-duplication of
	// concurrent identical quote requests. Dedupe is on by default.
	DisableInFlightDedupe bool `yaml:"disableInFlightDedupe"`
}

// FeeConfig holds the network fee estimation settings.
type FeeConfig struct {
	// Mode selects the estimator: "static" or "live".
	Mode    string  `yaml:"mode"`
	BaseFee float64 `yaml:"baseFee"`
	// FallbackToStatic opts live mode into the marked static fallback when
	// the RPC endpoint is unreachable. Off by default: failures propagate.
	FallbackToStatic bool  `yaml:"fallbackToStatic"`
	RPCTimeoutMillis int64 `yaml:"rpcTimeoutMillis"`
}

// RequoteConfig holds the debounced re-quote controller settings.
type RequoteConfig struct {
	SettleMillis int64 `yaml:"settleMillis"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TokensConfig holds the token catalog settings.
type TokensConfig struct {
	DirectoryPath string `yaml:"directoryPath"`
}

// Load reads the YAML configuration file from the given path, unmarshals
// it and applies defaults for everything left unset.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 30000
	}
	if cfg.CoinGecko.RetryCount <= 0 {
		cfg.CoinGecko.RetryCount = 3
	}
	if cfg.CoinGecko.RetryDelayMillis <= 0 {
		cfg.CoinGecko.RetryDelayMillis = 1000
	}
	if cfg.CoinGecko.RateLimitPerSecond <= 0 {
		cfg.CoinGecko.RateLimitPerSecond = 5
	}
	if cfg.CoinGecko.RateBurst <= 0 {
		cfg.CoinGecko.RateBurst = 10
	}
	if cfg.CoinGecko.PriceTTLSeconds <= 0 {
		cfg.CoinGecko.PriceTTLSeconds = 15
	}

	if cfg.Quote.CacheDurationMillis <= 0 {
		cfg.Quote.CacheDurationMillis = 30000
		logrus.Infof("Quote.CacheDurationMillis not set, defaulting to %d ms", cfg.Quote.CacheDurationMillis)
	}
	if cfg.Quote.SlippageTolerance <= 0 {
		cfg.Quote.SlippageTolerance = 0.005
	}
	if cfg.Quote.PriceImpactThreshold <= 0 {
		cfg.Quote.PriceImpactThreshold = 0.05
	}
	if cfg.Quote.ImpactCoefficient <= 0 {
		cfg.Quote.ImpactCoefficient = 0.000001
	}
	if cfg.Quote.ImpactCap <= 0 || cfg.Quote.ImpactCap >= 1 {
		cfg.Quote.ImpactCap = 0.99
	}

	if cfg.Fees.Mode == "" {
		cfg.Fees.Mode = "static"
	}
	if cfg.Fees.BaseFee <= 0 {
		cfg.Fees.BaseFee = 0.001
	}
	if cfg.Fees.RPCTimeoutMillis <= 0 {
		cfg.Fees.RPCTimeoutMillis = 10000
	}

	if cfg.Requote.SettleMillis <= 0 {
		cfg.Requote.SettleMillis = 500
	}

	if cfg.Tokens.DirectoryPath == "" {
		cfg.Tokens.DirectoryPath = "data/tokens"
	}
	if cfg.Swagger.Enabled && cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
}
