package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/kiralabs/launchpad/internal/ledger"
	"github.com/kiralabs/launchpad/internal/workflow"
)

// Config holds wallet settings.
type Config struct {
	PrivateKey string // base58-encoded 64-byte key OR solana-keygen JSON array

	SkipPreflight       bool
	PreflightCommitment string // e.g. "processed"
}

// Wallet is a local keypair signer implementing the workflow wallet gateway:
// it builds a transaction from the payload, signs as fee payer together with
// any payload signers, and submits it through the ledger client.
type Wallet struct {
	cfg    Config
	ledger *ledger.Client
	priv   solana.PrivateKey
	pub    solana.PublicKey
}

func New(cfg Config, ledgerClient *ledger.Client) (*Wallet, error) {
	if ledgerClient == nil {
		return nil, fmt.Errorf("wallet: ledger client is required")
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("wallet: PrivateKey is required")
	}
	if cfg.PreflightCommitment == "" {
		cfg.PreflightCommitment = "processed"
	}

	priv, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		cfg:    cfg,
		ledger: ledgerClient,
		priv:   priv,
		pub:    priv.PublicKey(),
	}, nil
}

func (w *Wallet) Address() string             { return w.pub.String() }
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// SignAndSend builds, signs, and submits one transaction, returning its
// signature. The wallet always pays the fee; extra payload signers (e.g. a
// new mint keypair) co-sign.
func (w *Wallet) SignAndSend(ctx context.Context, payload *workflow.TxPayload) (string, error) {
	if payload == nil || len(payload.Instructions) == 0 {
		return "", fmt.Errorf("wallet: empty transaction payload")
	}

	blockhash, err := w.ledger.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		payload.Instructions,
		blockhash,
		solana.TransactionPayer(w.pub),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	signers := make(map[solana.PublicKey]*solana.PrivateKey, 1+len(payload.Signers))
	signers[w.pub] = &w.priv
	for i := range payload.Signers {
		key := payload.Signers[i]
		signers[key.PublicKey()] = &key
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return signers[key]
	}); err != nil {
		// A required signature could not be produced, e.g. an instruction
		// names a signer whose key is not in the payload.
		return "", fmt.Errorf("%w: %v", workflow.ErrUserRejected, err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	encodedTx := base64.StdEncoding.EncodeToString(txBytes)

	sig, err := w.ledger.SendTransaction(ctx, encodedTx, w.cfg.SkipPreflight, w.cfg.PreflightCommitment)
	if err != nil {
		return "", err
	}
	return sig, nil
}

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
		}
		return solana.PrivateKey(ed25519.PrivateKey(b)), nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(ed25519.PrivateKey(raw)), nil
}
