package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// RPC settings
	RPCUrl         string
	Commitment     string
	ConfirmTimeout time.Duration

	// Wallet settings
	WalletPrivateKey string
	SkipPreflight    bool

	// Pool registry settings. A local JSON file is the default; a remote
	// registry service is used when POOL_REGISTRY_URL is set.
	PoolConfigPath  string
	PoolRegistryURL string
	PoolRegistryKey string

	// Swap defaults
	DefaultSlippageBps uint16

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// AI settings
	OpenRouterAPIKey string
	AIModel          string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:         getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		Commitment:     getEnv("COMMITMENT", "confirmed"),
		ConfirmTimeout: getDurationEnv("CONFIRM_TIMEOUT", 60*time.Second),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		SkipPreflight:    getBoolEnv("SKIP_PREFLIGHT", false),

		// Pools
		PoolConfigPath:  getEnv("POOL_CONFIG_PATH", "pools.json"),
		PoolRegistryURL: getEnv("POOL_REGISTRY_URL", ""),
		PoolRegistryKey: getEnv("POOL_REGISTRY_KEY", ""),

		// Swap defaults
		DefaultSlippageBps: uint16(getIntEnv("DEFAULT_SLIPPAGE_BPS", 100)),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "launchpad"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// API
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", ""),
	}
}

// Validate checks the settings a workflow engine cannot run without.
func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.WalletPrivateKey == "" {
		return fmt.Errorf("WALLET_PRIVATE_KEY is required")
	}
	if c.DefaultSlippageBps > 10000 {
		return fmt.Errorf("DEFAULT_SLIPPAGE_BPS must be <= 10000")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
