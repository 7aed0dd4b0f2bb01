package amm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instructionPool(t *testing.T) *Pool {
	t.Helper()
	return &Pool{
		Name:        "A/B",
		ProgramID:   randomKey(t),
		SwapAccount: randomKey(t),
		Authority:   randomKey(t),
		TokenMintA:  randomKey(t),
		TokenMintB:  randomKey(t),
		VaultA:      randomKey(t),
		VaultB:      randomKey(t),
		PoolMint:    randomKey(t),
		FeeAccount:  randomKey(t),
		FeeBps:      30,
	}
}

func TestBuildSwapInstruction(t *testing.T) {
	pool := instructionPool(t)
	user := randomKey(t)
	userIn := randomKey(t)
	userOut := randomKey(t)

	ix, err := BuildSwapInstruction(pool, 10_000, 19_546, user, userIn, userOut, true)
	require.NoError(t, err)
	assert.Equal(t, pool.ProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 10)
	assert.Equal(t, pool.SwapAccount, accounts[0].PublicKey)
	assert.Equal(t, user, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsSigner)
	assert.Equal(t, userIn, accounts[3].PublicKey)
	assert.Equal(t, pool.VaultA, accounts[4].PublicKey, "A->B swaps out of vault A")
	assert.Equal(t, pool.VaultB, accounts[5].PublicKey)
	assert.Equal(t, userOut, accounts[6].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[9].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, byte(1), data[0], "Swap discriminator")
	assert.Equal(t, uint64(10_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(19_546), binary.LittleEndian.Uint64(data[9:17]))
}

func TestBuildSwapInstruction_Direction(t *testing.T) {
	pool := instructionPool(t)

	ix, err := BuildSwapInstruction(pool, 1, 1, randomKey(t), randomKey(t), randomKey(t), false)
	require.NoError(t, err)

	accounts := ix.Accounts()
	assert.Equal(t, pool.VaultB, accounts[4].PublicKey, "B->A swaps out of vault B")
	assert.Equal(t, pool.VaultA, accounts[5].PublicKey)
}

func TestBuildSwapInstruction_NilPool(t *testing.T) {
	_, err := BuildSwapInstruction(nil, 1, 1, randomKey(t), randomKey(t), randomKey(t), true)
	assert.Error(t, err)
}
