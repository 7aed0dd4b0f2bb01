package workflow

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/kiralabs/launchpad/internal/amm"
	"github.com/kiralabs/launchpad/internal/token"
)

// AccountChecker reports whether an account exists on-chain; satisfied by
// ledger.Client.
type AccountChecker interface {
	AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error)
}

// SwapParams describes one swap request.
type SwapParams struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	AmountIn    uint64
	SlippageBps uint16

	// TokenProgramID selects the token program the user's accounts live
	// under; defaults to the classic SPL token program.
	TokenProgramID solana.PublicKey
}

func (p SwapParams) Validate() error {
	if p.InputMint.IsZero() || p.OutputMint.IsZero() {
		return fmt.Errorf("%w: input and output mints are required", ErrInvalidInput)
	}
	if p.InputMint.Equals(p.OutputMint) {
		return fmt.Errorf("%w: input and output mints must differ", ErrInvalidInput)
	}
	if p.AmountIn == 0 {
		return fmt.Errorf("%w: amount must be > 0", ErrInvalidInput)
	}
	return nil
}

func (p SwapParams) tokenProgram() solana.PublicKey {
	if p.TokenProgramID.IsZero() {
		return solana.TokenProgramID
	}
	return p.TokenProgramID
}

// NewSwapSteps builds the single swap step. The quote must come from the
// same freshly resolved pool snapshot; its MinimumOut rides in the
// instruction so a reserve shift between quote and execution is rejected by
// the ledger rather than filled at a worse price.
//
// The user's input token account must already exist (there is nothing to
// swap otherwise); a missing output account is created in the same
// transaction.
func NewSwapSteps(checker AccountChecker, owner solana.PublicKey, pool *amm.Pool, quote *amm.Quote, params SwapParams) []Step {
	return []Step{
		{
			Name: "swap",
			Build: func(ctx context.Context, _ Context) (*TxPayload, map[string]string, error) {
				aToB, err := amm.SwapDirection(pool, params.InputMint)
				if err != nil {
					return nil, nil, err
				}

				program := params.tokenProgram()
				inAccount, _, err := token.FindAssociatedTokenAddress(owner, params.InputMint, program)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to derive input token account: %w", err)
				}
				outAccount, _, err := token.FindAssociatedTokenAddress(owner, params.OutputMint, program)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to derive output token account: %w", err)
				}

				inExists, err := checker.AccountExists(ctx, inAccount)
				if err != nil {
					return nil, nil, err
				}
				if !inExists {
					return nil, nil, fmt.Errorf("input token account %s does not exist", inAccount)
				}

				var ixs []solana.Instruction
				outExists, err := checker.AccountExists(ctx, outAccount)
				if err != nil {
					return nil, nil, err
				}
				if !outExists {
					ixs = append(ixs, token.NewCreateAssociatedTokenAccountIx(owner, outAccount, owner, params.OutputMint, program))
				}

				swapIx, err := amm.BuildSwapInstruction(pool, quote.AmountIn, quote.MinimumOut, owner, inAccount, outAccount, aToB)
				if err != nil {
					return nil, nil, err
				}
				ixs = append(ixs, swapIx)

				outputs := map[string]string{
					"pool":        pool.Name,
					"minimum_out": fmt.Sprintf("%d", quote.MinimumOut),
				}
				return &TxPayload{Instructions: ixs}, outputs, nil
			},
		},
	}
}
