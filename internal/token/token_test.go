package token

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) solana.PublicKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k.PublicKey()
}

func TestProgramIDs(t *testing.T) {
	// Decoded keys, not literals: a bad address fails here, not at init.
	assert.Equal(t, "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb", Token2022ProgramID.String())
	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", AssociatedTokenProgramID.String())
	assert.False(t, Token2022ProgramID.IsZero())
	assert.False(t, AssociatedTokenProgramID.IsZero())
}

func TestMetadataPackedLen(t *testing.T) {
	m := Metadata{Name: "Kira Coin", Symbol: "KIRA", URI: "https://example.com/k.json"}

	// 32 (update authority) + 32 (mint) + 4+9 + 4+4 + 4+26 + 4
	want := uint64(32 + 32 + 4 + 9 + 4 + 4 + 4 + 26 + 4)
	assert.Equal(t, want, m.PackedLen())

	empty := Metadata{}
	assert.Equal(t, uint64(32+32+4+4+4+4), empty.PackedLen())
}

func TestMintAccountSize(t *testing.T) {
	m := Metadata{Name: "N", Symbol: "S", URI: "U"}
	assert.Equal(t, uint64(BaseMintSize)+m.PackedLen(), MintAccountSize(m))
	assert.Greater(t, MintAccountSize(m), uint64(BaseMintSize))
}

func TestNewCreateAccountIx(t *testing.T) {
	from := randomKey(t)
	newAccount := randomKey(t)

	ix := NewCreateAccountIx(from, newAccount, 2_000_000, 234, Token2022ProgramID)
	assert.Equal(t, solana.SystemProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[1].IsSigner, "new account must co-sign its own creation")

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 52)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(data[4:12]))
	assert.Equal(t, uint64(234), binary.LittleEndian.Uint64(data[12:20]))
	assert.Equal(t, Token2022ProgramID.Bytes(), data[20:52])
}

func TestNewInitializeMintIx(t *testing.T) {
	mint := randomKey(t)
	authority := randomKey(t)

	ix := NewInitializeMintIx(mint, 9, authority, nil, Token2022ProgramID)
	assert.Equal(t, Token2022ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(20), data[0], "InitializeMint2")
	assert.Equal(t, byte(9), data[1])
	assert.Equal(t, authority.Bytes(), []byte(data[2:34]))
	assert.Equal(t, byte(0), data[34], "no freeze authority")
	assert.Len(t, data, 35)

	freeze := randomKey(t)
	ix = NewInitializeMintIx(mint, 6, authority, &freeze, Token2022ProgramID)
	data, err = ix.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(1), data[34])
	assert.Equal(t, freeze.Bytes(), []byte(data[35:67]))
}

func TestNewInitializeMetadataIx(t *testing.T) {
	mint := randomKey(t)
	authority := randomKey(t)
	m := Metadata{Name: "Kira", Symbol: "KIRA", URI: "https://example.com"}

	ix := NewInitializeMetadataIx(Token2022ProgramID, mint, authority, mint, authority, m)

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	assert.True(t, accounts[0].IsWritable, "metadata account")
	assert.True(t, accounts[3].IsSigner, "mint authority signs")

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, metadataInitializeDiscriminator, []byte(data[:8]))

	// Borsh strings: u32 length then bytes, name first.
	nameLen := binary.LittleEndian.Uint32(data[8:12])
	assert.Equal(t, uint32(4), nameLen)
	assert.Equal(t, "Kira", string(data[12:16]))
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	owner := randomKey(t)
	mint := randomKey(t)

	ata, _, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(t, err)
	assert.False(t, ata.IsZero())

	// Deterministic derivation.
	again, _, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(t, err)
	assert.Equal(t, ata, again)

	// A different token program yields a different address.
	other, _, err := FindAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, ata, other)
}

func TestNewCreateAssociatedTokenAccountIx(t *testing.T) {
	payer := randomKey(t)
	owner := randomKey(t)
	mint := randomKey(t)
	ata, _, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(t, err)

	ix := NewCreateAssociatedTokenAccountIx(payer, ata, owner, mint, Token2022ProgramID)
	assert.Equal(t, AssociatedTokenProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	assert.Equal(t, Token2022ProgramID, accounts[5].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewMintToIx(t *testing.T) {
	mint := randomKey(t)
	dest := randomKey(t)
	authority := randomKey(t)

	ix := NewMintToIx(mint, dest, authority, 1_000_000_000, Token2022ProgramID)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, byte(7), data[0], "MintTo")
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[1:9]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[1].IsWritable)
	assert.True(t, accounts[2].IsSigner)
}
