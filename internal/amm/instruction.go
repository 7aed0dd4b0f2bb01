package amm

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BuildSwapInstruction constructs an SPL Token Swap style instruction for a
// constant-product pool. minAmountOut is enforced on-chain: if reserves have
// shifted past the quoted tolerance, the program rejects the swap instead of
// filling at a worse price.
func BuildSwapInstruction(
	pool *Pool,
	amountIn uint64,
	minAmountOut uint64,
	userAuthority solana.PublicKey,
	userTokenAccountIn solana.PublicKey,
	userTokenAccountOut solana.PublicKey,
	aToB bool,
) (solana.Instruction, error) {
	if pool == nil {
		return nil, fmt.Errorf("amm: pool cannot be nil")
	}

	poolSource := pool.VaultA
	poolDest := pool.VaultB
	if !aToB {
		poolSource = pool.VaultB
		poolDest = pool.VaultA
	}

	// SPL Token Swap instruction account order:
	// 0. swap_state (the pool/swap account)
	// 1. authority (PDA that controls vaults)
	// 2. user_transfer_authority (signer)
	// 3. user_source (user's input token account)
	// 4. pool_source (vault being swapped from)
	// 5. pool_destination (vault being swapped to)
	// 6. user_destination (user's output token account)
	// 7. pool_mint (LP token mint)
	// 8. fee_account (where fees go)
	// 9. token_program
	accounts := []*solana.AccountMeta{
		{PublicKey: pool.SwapAccount, IsWritable: true, IsSigner: false},
		{PublicKey: pool.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: userAuthority, IsWritable: false, IsSigner: true},
		{PublicKey: userTokenAccountIn, IsWritable: true, IsSigner: false},
		{PublicKey: poolSource, IsWritable: true, IsSigner: false},
		{PublicKey: poolDest, IsWritable: true, IsSigner: false},
		{PublicKey: userTokenAccountOut, IsWritable: true, IsSigner: false},
		{PublicKey: pool.PoolMint, IsWritable: true, IsSigner: false},
		{PublicKey: pool.FeeAccount, IsWritable: true, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
	}

	// Instruction data layout for SPL Token Swap:
	// [0] = instruction discriminator (1 = Swap)
	// [1:9] = amount_in (u64, little-endian)
	// [9:17] = minimum_amount_out (u64, little-endian)
	data := make([]byte, 17)
	data[0] = 1
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	return solana.NewInstruction(pool.ProgramID, accounts, data), nil
}
