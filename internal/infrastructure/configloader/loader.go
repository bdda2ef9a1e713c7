package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"portfolio_valuator/internal/domain/entity"
	networkdefinition "portfolio_valuator/internal/infrastructure/network/definition"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_PATH is not set.
const DefaultConfigPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port            string   `yaml:"port" env:"HTTP_PORT"`
	ReadTimeoutSec  int      `yaml:"readTimeoutSec" env:"HTTP_READ_TIMEOUT_SEC"`
	WriteTimeoutSec int      `yaml:"writeTimeoutSec" env:"HTTP_WRITE_TIMEOUT_SEC"`
	IdleTimeoutSec  int      `yaml:"idleTimeoutSec" env:"HTTP_IDLE_TIMEOUT_SEC"`
	AllowedOrigins  []string `yaml:"allowedOrigins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL"` // e.g., "debug", "info", "warn", "error"
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT"`
}

// NetworkConfig holds configuration for the valued EVM chain and its RPC node.
type NetworkConfig struct {
	Name                      string  `yaml:"name" env:"NETWORK_NAME"`
	ChainID                   uint64  `yaml:"chainID" env:"CHAIN_ID"`
	NativeSymbol              string  `yaml:"nativeSymbol" env:"NATIVE_SYMBOL"`
	RPCURL                    string  `yaml:"rpcURL" env:"RPC_URL"`
	WrappedNativeTokenAddress string  `yaml:"wrappedNativeTokenAddress" env:"WRAPPED_NATIVE_ADDRESS"`
	RPCTimeoutMs              int64   `yaml:"rpcTimeoutMs" env:"RPC_TIMEOUT_MS"`
	RateLimit                 float64 `yaml:"rateLimit" env:"RPC_RATE_LIMIT"`
	BurstLimit                int     `yaml:"burstLimit" env:"RPC_BURST_LIMIT"`
}

// IndexerConfig holds the token indexer REST configuration.
type IndexerConfig struct {
	BaseURL                 string `yaml:"baseURL" env:"INDEXER_BASE_URL"`
	RequestTimeoutMillis    int64  `yaml:"requestTimeoutMillis" env:"INDEXER_TIMEOUT_MS"`
	MetadataCacheTTLMinutes int    `yaml:"metadataCacheTTLMinutes" env:"INDEXER_METADATA_TTL_MIN"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL" env:"DEXSCREENER_BASE_URL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis" env:"DEXSCREENER_TIMEOUT_MS"`
}

// MarginConfig holds configuration of the margin-protocol equity lookup.
type MarginConfig struct {
	Enabled              bool   `yaml:"enabled" env:"MARGIN_ENABLED"`
	ProtocolName         string `yaml:"protocolName" env:"MARGIN_PROTOCOL_NAME"`
	BaseURL              string `yaml:"baseURL" env:"MARGIN_BASE_URL"`
	SubaccountName       string `yaml:"subaccountName" env:"MARGIN_SUBACCOUNT_NAME"`
	CreatorAddress       string `yaml:"creatorAddress" env:"MARGIN_CREATOR_ADDRESS"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis" env:"MARGIN_TIMEOUT_MS"`
}

// ValuationConfig holds the heuristic constants of the valuation engine.
type ValuationConfig struct {
	MaxPricedTokens         int      `yaml:"maxPricedTokens" env:"VALUATION_MAX_PRICED_TOKENS"`
	MaxConcurrentCalls      int      `yaml:"maxConcurrentCalls" env:"VALUATION_MAX_CONCURRENT_CALLS"`
	StablecoinSymbols       []string `yaml:"stablecoinSymbols" env:"VALUATION_STABLECOINS" env-separator:","`
	StablecoinFallbackPrice float64  `yaml:"stablecoinFallbackPrice" env:"VALUATION_STABLE_FALLBACK_PRICE"`
	DefaultDecimals         uint8    `yaml:"defaultDecimals" env:"VALUATION_DEFAULT_DECIMALS"`
	MinDecimals             uint8    `yaml:"minDecimals" env:"VALUATION_MIN_DECIMALS"`
	MaxDecimals             uint8    `yaml:"maxDecimals" env:"VALUATION_MAX_DECIMALS"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Network     NetworkConfig     `yaml:"network"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	Margin      MarginConfig      `yaml:"margin"`
	Valuation   ValuationConfig   `yaml:"valuation"`
}

// NetworkDefinition converts the network section to the domain definition, filling
// unset fields from the known-network presets.
func (c *Config) NetworkDefinition() entity.NetworkDefinition {
	def := networkdefinition.WithPreset(entity.NetworkDefinition{
		ChainID:                   c.Network.ChainID,
		Name:                      c.Network.Name,
		Identifier:                strings.ToLower(c.Network.Name),
		NativeSymbol:              c.Network.NativeSymbol,
		RPCURL:                    c.Network.RPCURL,
		WrappedNativeTokenAddress: c.Network.WrappedNativeTokenAddress,
	})
	def.WrappedNativeTokenAddress = strings.ToLower(def.WrappedNativeTokenAddress)
	return def
}

// Load reads the YAML configuration file from path, applies environment overrides
// (a local .env file is honored) and fills in defaults. A missing file is not an error:
// the service can run from environment variables alone.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, reading from environment variables")
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, relying on environment and defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// Validate checks the settings without which no valuation can run.
func (c *Config) Validate() error {
	if c.Network.RPCURL == "" {
		return errors.New("network.rpcURL (RPC_URL) must be set")
	}
	if c.Indexer.BaseURL == "" {
		return errors.New("indexer.baseURL (INDEXER_BASE_URL) must be set")
	}
	if c.Valuation.MinDecimals >= c.Valuation.MaxDecimals {
		return fmt.Errorf("valuation.minDecimals (%d) must be below maxDecimals (%d)", c.Valuation.MinDecimals, c.Valuation.MaxDecimals)
	}
	if c.Margin.Enabled && c.Margin.BaseURL == "" {
		return errors.New("margin.baseURL must be set when margin lookups are enabled")
	}
	if c.Margin.Enabled && !common.IsHexAddress(c.Margin.CreatorAddress) {
		return fmt.Errorf("margin.creatorAddress (%q) must be a hex address when margin lookups are enabled", c.Margin.CreatorAddress)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if !strings.HasPrefix(cfg.Server.Port, ":") && !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		cfg.Server.ReadTimeoutSec = 15
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		cfg.Server.WriteTimeoutSec = 60
	}
	if cfg.Server.IdleTimeoutSec <= 0 {
		cfg.Server.IdleTimeoutSec = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Network.RPCTimeoutMs <= 0 {
		cfg.Network.RPCTimeoutMs = 8000
		logrus.Infof("network.rpcTimeoutMs not set, defaulting to %d ms", cfg.Network.RPCTimeoutMs)
	}
	if cfg.Network.RateLimit <= 0 {
		cfg.Network.RateLimit = 25
	}
	if cfg.Network.BurstLimit <= 0 {
		cfg.Network.BurstLimit = 10
	}
	if cfg.Network.Name == "" {
		cfg.Network.Name = "ethereum"
		logrus.Infof("network.name not set, defaulting to %s", cfg.Network.Name)
	}

	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
	}
	if cfg.Indexer.MetadataCacheTTLMinutes <= 0 {
		cfg.Indexer.MetadataCacheTTLMinutes = 60
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com/latest/dex"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000 // 10 seconds
	}

	if cfg.Margin.ProtocolName == "" {
		cfg.Margin.ProtocolName = "Margin account"
	}
	if cfg.Margin.SubaccountName == "" {
		cfg.Margin.SubaccountName = "default"
	}
	if cfg.Margin.RequestTimeoutMillis <= 0 {
		cfg.Margin.RequestTimeoutMillis = 8000
	}

	if cfg.Valuation.MaxPricedTokens <= 0 {
		cfg.Valuation.MaxPricedTokens = 20
	}
	if cfg.Valuation.MaxConcurrentCalls <= 0 {
		cfg.Valuation.MaxConcurrentCalls = 8
	}
	if len(cfg.Valuation.StablecoinSymbols) == 0 {
		cfg.Valuation.StablecoinSymbols = []string{"USDC", "USDT", "DAI", "GHO", "FRAX", "SUSD"}
	}
	if cfg.Valuation.StablecoinFallbackPrice <= 0 {
		cfg.Valuation.StablecoinFallbackPrice = 1
	}
	if cfg.Valuation.DefaultDecimals == 0 {
		cfg.Valuation.DefaultDecimals = 18
	}
	if cfg.Valuation.MaxDecimals == 0 {
		cfg.Valuation.MaxDecimals = 36
	}
}
