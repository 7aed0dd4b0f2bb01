package token

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// Token-2022 program (token extensions), used for all launchpad mints so
	// metadata can live on the mint account itself.
	Token2022ProgramID = solana.Token2022ProgramID

	// SPL Associated Token Account program
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
)

// BaseMintSize is the size of a mint account without extensions.
const BaseMintSize = 82

// Descriptor identifies a fungible token. Created once by the issuance
// workflow and immutable afterwards; mints are never deleted on-ledger.
type Descriptor struct {
	Mint     solana.PublicKey `json:"mint"`
	Decimals uint8            `json:"decimals"`
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	URI      string           `json:"uri"`
}

// Metadata is the on-mint token metadata payload.
type Metadata struct {
	Name   string
	Symbol string
	URI    string
}

// PackedLen returns the serialized size of the metadata: update authority
// (32) + mint (32) + three length-prefixed strings + empty additional
// metadata vec (4). The mint account must be allocated with this much extra
// space so the rent-exempt balance covers the metadata.
func (m Metadata) PackedLen() uint64 {
	return 32 + 32 +
		4 + uint64(len(m.Name)) +
		4 + uint64(len(m.Symbol)) +
		4 + uint64(len(m.URI)) +
		4
}

// MintAccountSize is the allocation for a mint carrying the given metadata.
func MintAccountSize(m Metadata) uint64 {
	return BaseMintSize + m.PackedLen()
}
