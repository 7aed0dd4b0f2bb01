package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://api.devnet.solana.com", cfg.RPCUrl)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, 60*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, uint16(100), cfg.DefaultSlippageBps)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "launchpad", cfg.ClickHouseDatabase)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.False(t, cfg.DevMode)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "http://localhost:8899")
	t.Setenv("CONFIRM_TIMEOUT", "90s")
	t.Setenv("DEFAULT_SLIPPAGE_BPS", "250")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SKIP_PREFLIGHT", "1")

	cfg := Load()
	assert.Equal(t, "http://localhost:8899", cfg.RPCUrl)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, uint16(250), cfg.DefaultSlippageBps)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.SkipPreflight)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CONFIRM_TIMEOUT", "soon")
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("DEV_MODE", "maybe")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	assert.Error(t, cfg.Validate(), "wallet key is required")

	cfg.WalletPrivateKey = "somekey"
	assert.NoError(t, cfg.Validate())

	cfg.DefaultSlippageBps = 10_001
	assert.Error(t, cfg.Validate())

	cfg.DefaultSlippageBps = 100
	cfg.RPCUrl = ""
	assert.Error(t, cfg.Validate())
}
