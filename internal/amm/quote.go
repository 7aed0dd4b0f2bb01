package amm

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
)

const bpsDenominator = 10000

var (
	// ErrInvalidPool means a reserve is empty; no price exists.
	ErrInvalidPool = errors.New("amm: pool has an empty reserve")
	// ErrInvalidAmount means the trade input amount is zero.
	ErrInvalidAmount = errors.New("amm: input amount must be > 0")
	// ErrInvalidSlippage means the slippage tolerance is out of [0, 10000].
	ErrInvalidSlippage = errors.New("amm: slippage tolerance out of range")
)

// ComputeQuote prices a trade against a reserve snapshot using the constant
// product invariant, fee applied to the input first. Pure and deterministic:
// identical inputs always produce identical quotes. All amount math is
// integer (big.Int) to match ledger-native fixed-point token amounts.
func ComputeQuote(state *PoolState, intent TradeIntent, slippageBps uint16) (*Quote, error) {
	if state == nil || state.Pool == nil {
		return nil, fmt.Errorf("amm: pool state is nil")
	}
	if intent.AmountIn == 0 {
		return nil, ErrInvalidAmount
	}
	if slippageBps > bpsDenominator {
		return nil, ErrInvalidSlippage
	}

	aToB, err := SwapDirection(state.Pool, intent.InputMint)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut := state.Reserves(aToB)
	if reserveIn == 0 || reserveOut == 0 {
		return nil, ErrInvalidPool
	}

	amountOut, err := constantProductOut(intent.AmountIn, reserveIn, reserveOut, state.Pool.FeeBps)
	if err != nil {
		return nil, err
	}
	minimumOut := applySlippage(amountOut, slippageBps)

	// Display-only rates; all guarded amounts above stay integer.
	executionRate := float64(amountOut) / float64(intent.AmountIn)
	idealRate := float64(reserveOut) / float64(reserveIn)
	priceImpact := 0.0
	if idealRate > 0 {
		priceImpact = math.Max(0, 1-(executionRate/idealRate))
	}

	return &Quote{
		PoolName:       state.Pool.Name,
		AmountIn:       intent.AmountIn,
		AmountOut:      amountOut,
		MinimumOut:     minimumOut,
		FeeBps:         state.Pool.FeeBps,
		SlippageBps:    slippageBps,
		ReserveIn:      reserveIn,
		ReserveOut:     reserveOut,
		EffectivePrice: executionRate,
		PriceImpact:    priceImpact,
		QuotedAt:       time.Now(),
	}, nil
}

// constantProductOut computes reserveOut - (reserveIn*reserveOut)/(reserveIn+amountInAfterFee)
// with amountInAfterFee = amountIn * (10000 - feeBps) / 10000.
// Uses big.Int to prevent overflow on the reserve product.
func constantProductOut(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if feeBps >= bpsDenominator {
		return 0, fmt.Errorf("amm: fee %d bps leaves no input", feeBps)
	}

	afterFee := new(big.Int).SetUint64(amountIn)
	afterFee.Mul(afterFee, big.NewInt(bpsDenominator-int64(feeBps)))
	afterFee.Div(afterFee, big.NewInt(bpsDenominator))

	rIn := new(big.Int).SetUint64(reserveIn)
	rOut := new(big.Int).SetUint64(reserveOut)

	k := new(big.Int).Mul(rIn, rOut)
	denom := new(big.Int).Add(rIn, afterFee)

	newReserveOut := new(big.Int).Div(k, denom)
	out := new(big.Int).Sub(rOut, newReserveOut)

	if out.Sign() < 0 {
		return 0, nil
	}
	if !out.IsUint64() {
		return 0, fmt.Errorf("amm: output amount overflow")
	}
	return out.Uint64(), nil
}

// applySlippage converts an expected output into the minimum acceptable
// output: amountOut * (10000 - slippageBps) / 10000.
func applySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}

	min := new(big.Int).SetUint64(amountOut)
	min.Mul(min, big.NewInt(bpsDenominator-int64(slippageBps)))
	min.Div(min, big.NewInt(bpsDenominator))
	return min.Uint64()
}

// SwapDirection reports whether the trade goes A->B based on the input mint.
func SwapDirection(pool *Pool, inputMint solana.PublicKey) (bool, error) {
	if pool.TokenMintA.Equals(inputMint) {
		return true, nil
	}
	if pool.TokenMintB.Equals(inputMint) {
		return false, nil
	}
	return false, fmt.Errorf("amm: input mint %s does not match pool mints", inputMint)
}
