package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/kiralabs/launchpad/internal/token"
)

// ErrInvalidInput marks caller-fixable parameter errors. Nothing is
// submitted to the ledger when validation fails.
var ErrInvalidInput = errors.New("workflow: invalid input")

// RentEstimator provides rent-exemption pricing; satisfied by ledger.Client.
type RentEstimator interface {
	RentExemptBalance(ctx context.Context, sizeBytes uint64) (uint64, error)
}

// IssuanceParams describes the token to launch. Supply is in raw units
// (already scaled by decimals).
type IssuanceParams struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	URI      string `json:"uri"`
	Decimals uint8  `json:"decimals"`
	Supply   uint64 `json:"supply"`
}

func (p IssuanceParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if p.URI == "" {
		return fmt.Errorf("%w: uri is required", ErrInvalidInput)
	}
	if p.Supply == 0 {
		return fmt.Errorf("%w: supply must be > 0", ErrInvalidInput)
	}
	return nil
}

// Context keys produced by the issuance steps.
const (
	CtxMint         = "mint"
	CtxTokenAccount = "token_account"
)

// NewIssuanceSteps builds the fixed issuance sequence:
//  1. create the mint account (sized for mint + packed metadata so the
//     rent-exempt balance covers both), initialize the mint, and
//     initialize the metadata in one transaction, because the allocation
//     must already include the metadata length;
//  2. create the creator's associated token account for the new mint;
//  3. mint the initial supply to that account.
//
// A fresh mint keypair is generated here; steps 2-3 consume the mint
// address from the run context once step 1 confirms.
func NewIssuanceSteps(rent RentEstimator, owner solana.PublicKey, params IssuanceParams) ([]Step, *token.Descriptor, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate mint keypair: %w", err)
	}
	mint := mintKey.PublicKey()

	meta := token.Metadata{Name: params.Name, Symbol: params.Symbol, URI: params.URI}
	desc := &token.Descriptor{
		Mint:     mint,
		Decimals: params.Decimals,
		Name:     params.Name,
		Symbol:   params.Symbol,
		URI:      params.URI,
	}

	steps := []Step{
		{
			Name: "create-mint",
			Build: func(ctx context.Context, _ Context) (*TxPayload, map[string]string, error) {
				size := token.MintAccountSize(meta)
				lamports, err := rent.RentExemptBalance(ctx, size)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to price rent exemption: %w", err)
				}

				ixs := []solana.Instruction{
					token.NewCreateAccountIx(owner, mint, lamports, size, token.Token2022ProgramID),
					token.NewInitializeMintIx(mint, params.Decimals, owner, nil, token.Token2022ProgramID),
					token.NewInitializeMetadataIx(token.Token2022ProgramID, mint, owner, mint, owner, meta),
				}
				payload := &TxPayload{
					Instructions: ixs,
					Signers:      []solana.PrivateKey{mintKey},
				}
				return payload, map[string]string{CtxMint: mint.String()}, nil
			},
		},
		{
			Name: "create-token-account",
			Build: func(ctx context.Context, values Context) (*TxPayload, map[string]string, error) {
				mintAddr, ok := values[CtxMint]
				if !ok {
					return nil, nil, fmt.Errorf("missing %q in run context", CtxMint)
				}
				mintPk, err := solana.PublicKeyFromBase58(mintAddr)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid mint in run context: %w", err)
				}

				ata, _, err := token.FindAssociatedTokenAddress(owner, mintPk, token.Token2022ProgramID)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to derive token account: %w", err)
				}

				payload := &TxPayload{
					Instructions: []solana.Instruction{
						token.NewCreateAssociatedTokenAccountIx(owner, ata, owner, mintPk, token.Token2022ProgramID),
					},
				}
				return payload, map[string]string{CtxTokenAccount: ata.String()}, nil
			},
		},
		{
			Name: "mint-supply",
			Build: func(ctx context.Context, values Context) (*TxPayload, map[string]string, error) {
				mintAddr, ok := values[CtxMint]
				if !ok {
					return nil, nil, fmt.Errorf("missing %q in run context", CtxMint)
				}
				accountAddr, ok := values[CtxTokenAccount]
				if !ok {
					return nil, nil, fmt.Errorf("missing %q in run context", CtxTokenAccount)
				}
				mintPk, err := solana.PublicKeyFromBase58(mintAddr)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid mint in run context: %w", err)
				}
				accountPk, err := solana.PublicKeyFromBase58(accountAddr)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid token account in run context: %w", err)
				}

				payload := &TxPayload{
					Instructions: []solana.Instruction{
						token.NewMintToIx(mintPk, accountPk, owner, params.Supply, token.Token2022ProgramID),
					},
				}
				return payload, nil, nil
			},
		},
	}

	return steps, desc, nil
}
