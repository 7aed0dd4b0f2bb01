package amm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
)

// ErrPoolNotFound means no registered pool trades the requested pair.
var ErrPoolNotFound = errors.New("amm: no pool found for token pair")

// Registry resolves the pool descriptor for a token pair. Implemented by the
// static file registry and the remote HTTP registry.
type Registry interface {
	FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, error)
}

// ReserveFetcher reads current vault balances; satisfied by ledger.Client.
type ReserveFetcher interface {
	TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// RefreshPoolState takes a fresh reserve snapshot for a pool.
func RefreshPoolState(ctx context.Context, fetcher ReserveFetcher, pool *Pool) (*PoolState, error) {
	reserveA, err := fetcher.TokenAccountBalance(ctx, pool.VaultA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault A balance: %w", err)
	}
	reserveB, err := fetcher.TokenAccountBalance(ctx, pool.VaultB)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault B balance: %w", err)
	}

	return &PoolState{
		Pool:      pool,
		ReserveA:  reserveA,
		ReserveB:  reserveB,
		Timestamp: time.Now().Unix(),
	}, nil
}

// poolConfig is one pool entry in the JSON registry file.
type poolConfig struct {
	Name        string `json:"name"`
	ProgramID   string `json:"program_id"`
	SwapAccount string `json:"swap_account"`
	Authority   string `json:"authority"`
	TokenMintA  string `json:"token_mint_a"`
	TokenMintB  string `json:"token_mint_b"`
	VaultA      string `json:"vault_a"`
	VaultB      string `json:"vault_b"`
	PoolMint    string `json:"pool_mint"`
	FeeAccount  string `json:"fee_account"`
	FeeBps      uint16 `json:"fee_bps"`
}

// FileRegistry serves pool descriptors from a static JSON config file.
type FileRegistry struct {
	pools []Pool
}

// NewFileRegistry loads pools from a JSON file.
func NewFileRegistry(configPath string) (*FileRegistry, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool config: %w", err)
	}
	return ParseFileRegistry(data)
}

// ParseFileRegistry builds a registry from raw JSON config bytes.
func ParseFileRegistry(data []byte) (*FileRegistry, error) {
	var configs []poolConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	pools := make([]Pool, 0, len(configs))
	for i, cfg := range configs {
		pool, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): %w", i, cfg.Name, err)
		}
		pools = append(pools, pool)
	}

	return &FileRegistry{pools: pools}, nil
}

func parsePoolConfig(cfg poolConfig) (Pool, error) {
	if cfg.FeeBps >= bpsDenominator {
		return Pool{}, fmt.Errorf("fee_bps must be < %d", bpsDenominator)
	}

	fields := map[string]string{
		"program_id":   cfg.ProgramID,
		"swap_account": cfg.SwapAccount,
		"authority":    cfg.Authority,
		"token_mint_a": cfg.TokenMintA,
		"token_mint_b": cfg.TokenMintB,
		"vault_a":      cfg.VaultA,
		"vault_b":      cfg.VaultB,
		"pool_mint":    cfg.PoolMint,
		"fee_account":  cfg.FeeAccount,
	}
	keys := make(map[string]solana.PublicKey, len(fields))
	for name, raw := range fields {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return Pool{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		keys[name] = pk
	}

	return Pool{
		Name:        cfg.Name,
		ProgramID:   keys["program_id"],
		SwapAccount: keys["swap_account"],
		Authority:   keys["authority"],
		TokenMintA:  keys["token_mint_a"],
		TokenMintB:  keys["token_mint_b"],
		VaultA:      keys["vault_a"],
		VaultB:      keys["vault_b"],
		PoolMint:    keys["pool_mint"],
		FeeAccount:  keys["fee_account"],
		FeeBps:      cfg.FeeBps,
	}, nil
}

// FindPool searches for a pool matching the token pair in either direction.
func (r *FileRegistry) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, error) {
	for i := range r.pools {
		pool := &r.pools[i]
		if (pool.TokenMintA.Equals(mintA) && pool.TokenMintB.Equals(mintB)) ||
			(pool.TokenMintA.Equals(mintB) && pool.TokenMintB.Equals(mintA)) {
			return pool, nil
		}
	}
	return nil, fmt.Errorf("%w: %s / %s", ErrPoolNotFound, mintA, mintB)
}

// PoolCount returns the number of registered pools.
func (r *FileRegistry) PoolCount() int {
	return len(r.pools)
}
