package amm

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Pool is a constant-product pool for one token pair. Identity and fee come
// from the registry; reserves are fetched fresh per quote.
type Pool struct {
	Name        string
	ProgramID   solana.PublicKey
	SwapAccount solana.PublicKey
	Authority   solana.PublicKey
	TokenMintA  solana.PublicKey
	TokenMintB  solana.PublicKey
	VaultA      solana.PublicKey
	VaultB      solana.PublicKey
	PoolMint    solana.PublicKey
	FeeAccount  solana.PublicKey
	FeeBps      uint16
}

// PoolState is a point-in-time snapshot of a pool's reserves. Valid only at
// the instant it was taken: reserves may shift before a swap lands, which is
// why the swap instruction carries the minimum-out guard.
type PoolState struct {
	Pool      *Pool
	ReserveA  uint64
	ReserveB  uint64
	Timestamp int64
}

// Reserves returns reserves ordered for the swap direction.
func (ps *PoolState) Reserves(aToB bool) (reserveIn, reserveOut uint64) {
	if aToB {
		return ps.ReserveA, ps.ReserveB
	}
	return ps.ReserveB, ps.ReserveA
}

// TradeIntent is one trade request: swap AmountIn of the input mint for the
// output mint. Consumed once by the quote engine.
type TradeIntent struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64
}

// Quote is a derived, immutable pricing of a trade against one reserve
// snapshot. MinimumOut is the on-chain guard: if reserves shift past the
// slippage tolerance before execution, the ledger rejects the swap.
type Quote struct {
	PoolName       string    `json:"pool"`
	AmountIn       uint64    `json:"amount_in"`
	AmountOut      uint64    `json:"amount_out"`
	MinimumOut     uint64    `json:"minimum_out"`
	FeeBps         uint16    `json:"fee_bps"`
	SlippageBps    uint16    `json:"slippage_bps"`
	ReserveIn      uint64    `json:"reserve_in"`
	ReserveOut     uint64    `json:"reserve_out"`
	EffectivePrice float64   `json:"effective_price"` // output per input unit
	PriceImpact    float64   `json:"price_impact"`    // 0.01 = 1%
	QuotedAt       time.Time `json:"quoted_at"`
}
