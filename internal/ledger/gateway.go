package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/kiralabs/launchpad/internal/rpc"
)

// ErrConfirmTimeout is returned when a transaction has not reached the
// requested commitment before the confirmation deadline. The transaction may
// still land on-chain afterwards; the outcome is unknown, not failed.
var ErrConfirmTimeout = errors.New("ledger: transaction confirmation timeout")

// RevertedError means the ledger executed the transaction and rejected it
// (e.g. a slippage guard fired). Safe to retry with fresh inputs.
type RevertedError struct {
	Signature string
	Reason    string
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("ledger: transaction %s reverted: %s", e.Signature, e.Reason)
}

// ClientConfig holds configuration for the ledger gateway
type ClientConfig struct {
	RPCURL       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Commitment   string // e.g. "confirmed"
	Logger       *logrus.Logger
}

// Client talks to a Solana RPC node for everything except signing:
// rent parameters, blockhashes, account state, and transaction finality.
type Client struct {
	rpc        *rpc.Client
	commitment string
	logger     *logrus.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ledger: RPCURL is required")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCURL,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       cfg.Logger,
	})

	return &Client{
		rpc:        rpcClient,
		commitment: cfg.Commitment,
		logger:     cfg.Logger,
	}, nil
}

// RentExemptBalance returns the lamports needed to make an account of the
// given size rent exempt.
func (c *Client) RentExemptBalance(ctx context.Context, sizeBytes uint64) (uint64, error) {
	var resp struct {
		Result uint64        `json:"result"`
		Error  *rpc.RPCError `json:"error"`
	}

	params := []any{sizeBytes}
	if err := c.rpc.Call(ctx, "getMinimumBalanceForRentExemption", params, &resp); err != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption error: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

// LatestBlockhash fetches the most recent blockhash
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": "processed"},
	}

	if err := c.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// Confirm polls until the signature reaches the gateway's commitment level.
// Returns ErrConfirmTimeout after the timeout, a *RevertedError if the ledger
// executed and rejected the transaction, and the context error if the caller
// cancels mid-wait.
func (c *Client) Confirm(ctx context.Context, signature string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 500 * time.Millisecond
	maxBackoff := 4 * time.Second

	for time.Now().Before(deadline) {
		status, err := c.signatureStatus(ctx, signature)
		if err != nil {
			return fmt.Errorf("failed to check signature: %w", err)
		}

		if status != nil {
			if status.Err != nil {
				return &RevertedError{Signature: signature, Reason: fmt.Sprintf("%v", status.Err)}
			}
			if commitmentReached(status.ConfirmationStatus, c.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return ErrConfirmTimeout
}

func (c *Client) signatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
	var resp struct {
		Result struct {
			Value []*rpc.SignatureStatus `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}

	if err := c.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getSignatureStatuses error: %s", resp.Error.Message)
	}
	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return nil, nil // not yet processed
	}
	return resp.Result.Value[0], nil
}

func commitmentReached(status, want string) bool {
	if status == "" {
		return false
	}
	switch want {
	case "processed":
		return true
	case "confirmed":
		return status == "confirmed" || status == "finalized"
	case "finalized":
		return status == "finalized"
	default:
		return true
	}
}

// AccountExists checks if an account exists on-chain (getAccountInfo != nil).
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	var resp struct {
		Result struct {
			Value any `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	if err := c.rpc.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return false, fmt.Errorf("getAccountInfo failed: %w", err)
	}
	if resp.Error != nil {
		return false, fmt.Errorf("getAccountInfo error: %s", resp.Error.Message)
	}
	return resp.Result.Value != nil, nil
}

// TokenAccountBalance returns the raw amount held by a token account.
// Used to snapshot pool vault reserves.
func (c *Client) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value rpc.TokenAmount `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{account.String()}
	if err := c.rpc.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getTokenAccountBalance failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getTokenAccountBalance error: %s", resp.Error.Message)
	}

	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %w", err)
	}
	return amount, nil
}

// SendTransaction submits a base64-encoded signed transaction.
func (c *Client) SendTransaction(ctx context.Context, encodedTx string, skipPreflight bool, preflightCommitment string) (string, error) {
	var resp struct {
		Result string        `json:"result"`
		Error  *rpc.RPCError `json:"error"`
	}

	params := []any{
		encodedTx,
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       skipPreflight,
			"preflightCommitment": preflightCommitment,
		},
	}

	if err := c.rpc.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d, message=%s",
			resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}
