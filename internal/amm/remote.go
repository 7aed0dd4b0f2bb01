package amm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// RemoteRegistry resolves pool descriptors from an external pool-registry
// service over HTTP. The service owns pool indexing; we only read.
type RemoteRegistry struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteRegistry creates a remote registry client. An empty API key
// disables the auth header.
func NewRemoteRegistry(baseURL, apiKey string) *RemoteRegistry {
	return &RemoteRegistry{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type remotePoolResponse struct {
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

// FindPool queries the registry service for the pair. A 404 maps to
// ErrPoolNotFound.
func (r *RemoteRegistry) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, error) {
	q := url.Values{}
	q.Set("mintA", mintA.String())
	q.Set("mintB", mintB.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/pools?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pool registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s / %s", ErrPoolNotFound, mintA, mintB)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pool registry returned %d: %s", resp.StatusCode, string(body))
	}

	var remote remotePoolResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("failed to decode pool response: %w", err)
	}

	pool, err := parsePoolConfig(poolConfig(remote))
	if err != nil {
		return nil, fmt.Errorf("pool registry returned invalid pool: %w", err)
	}
	return &pool, nil
}
