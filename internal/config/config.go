package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Log        LogConfig
	Signer     SignerConfig
	Collection CollectionConfig
	Chain      ChainConfig
	Price      PriceConfig
	Payment    PaymentConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3001"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"lazymint_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// SignerConfig holds the voucher signing key.
// The key is never logged; String redacts it.
type SignerConfig struct {
	PrivateKey string `envconfig:"SIGNER_PRIVATE_KEY"`
}

// String implements fmt.Stringer without exposing the key.
func (c SignerConfig) String() string {
	if c.PrivateKey == "" {
		return "SignerConfig{PrivateKey: <unset>}"
	}
	return "SignerConfig{PrivateKey: <redacted>}"
}

// CollectionConfig describes the deployed collection.
type CollectionConfig struct {
	Name            string `envconfig:"COLLECTION_NAME" default:"My Awesome NFT Collection"`
	Symbol          string `envconfig:"COLLECTION_SYMBOL" default:"MANFT"`
	MintPriceWei    string `envconfig:"COLLECTION_MINT_PRICE_WEI" default:"50000000000000000"` // 0.05 ETH
	MaxSupply       uint64 `envconfig:"COLLECTION_MAX_SUPPLY" default:"10000"`
	ContractAddress string `envconfig:"COLLECTION_CONTRACT_ADDRESS"`
}

// ChainConfig points at an RPC node used for advisory mint-status reads.
// An empty RPCURL disables on-chain reads.
type ChainConfig struct {
	RPCURL      string        `envconfig:"CHAIN_RPC_URL"`
	Network     string        `envconfig:"CHAIN_NETWORK" default:"sepolia"`
	CallTimeout time.Duration `envconfig:"CHAIN_CALL_TIMEOUT" default:"5s"`
}

// PriceConfig holds the currency quote source and cache settings.
type PriceConfig struct {
	APIURL    string        `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey    string        `envconfig:"PRICE_API_KEY"`
	CacheTTL  time.Duration `envconfig:"PRICE_CACHE_TTL" default:"1m"`
	CacheSize int           `envconfig:"PRICE_CACHE_SIZE" default:"64"`
	Timeout   time.Duration `envconfig:"PRICE_TIMEOUT" default:"10s"`
	QuoteTTL  time.Duration `envconfig:"PRICE_QUOTE_TTL" default:"15m"`
}

// PaymentConfig holds payment intent settings.
// An empty WebhookSecret leaves the webhook unauthenticated.
type PaymentConfig struct {
	IntentTTL     time.Duration `envconfig:"PAYMENT_INTENT_TTL" default:"30m"`
	WebhookSecret string        `envconfig:"PAYMENT_WEBHOOK_SECRET"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
