package token

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// metadataInitializeDiscriminator is the 8-byte instruction discriminator
// for "spl_token_metadata_interface:initialize_account".
var metadataInitializeDiscriminator = []byte{210, 225, 30, 162, 88, 184, 77, 141}

// NewCreateAccountIx builds a SystemProgram CreateAccount instruction
// allocating `space` bytes owned by `owner`, funded with `lamports`.
func NewCreateAccountIx(from, newAccount solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	// SystemProgram instruction layout:
	// u32: instruction index (0 = CreateAccount)
	// u64: lamports
	// u64: space
	// [32]: owner program id
	data := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(data[0:4], 0)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner.Bytes())

	accounts := []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: newAccount, IsSigner: true, IsWritable: true},
	}
	return solana.NewInstruction(solana.SystemProgramID, accounts, data)
}

// NewInitializeMintIx builds an InitializeMint2 instruction (no rent sysvar).
func NewInitializeMintIx(mint solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, programID solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 20 = InitializeMint2:
	// u8 index, u8 decimals, [32] mint_authority,
	// u8 freeze option, [32] freeze_authority (when present)
	data := make([]byte, 0, 2+32+1+32)
	data = append(data, 20, decimals)
	data = append(data, mintAuthority.Bytes()...)
	if freezeAuthority != nil {
		data = append(data, 1)
		data = append(data, freezeAuthority.Bytes()...)
	} else {
		data = append(data, 0)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: mint, IsSigner: false, IsWritable: true},
	}
	return solana.NewInstruction(programID, accounts, data)
}

// NewInitializeMetadataIx builds the token-metadata interface Initialize
// instruction. For Token-2022 the metadata account is the mint itself.
// Account order:
// 0. metadata (writable)
// 1. update_authority
// 2. mint
// 3. mint_authority (signer)
func NewInitializeMetadataIx(programID, metadata, updateAuthority, mint, mintAuthority solana.PublicKey, m Metadata) solana.Instruction {
	data := make([]byte, 0, 8+12+len(m.Name)+len(m.Symbol)+len(m.URI))
	data = append(data, metadataInitializeDiscriminator...)
	data = appendBorshString(data, m.Name)
	data = appendBorshString(data, m.Symbol)
	data = appendBorshString(data, m.URI)

	accounts := []*solana.AccountMeta{
		{PublicKey: metadata, IsSigner: false, IsWritable: true},
		{PublicKey: updateAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: mintAuthority, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(programID, accounts, data)
}

// FindAssociatedTokenAddress derives the ATA PDA for (owner, mint) under the
// given token program.
func FindAssociatedTokenAddress(owner, mint, tokenProgramID solana.PublicKey) (ata solana.PublicKey, bump uint8, err error) {
	// Seeds: [owner, token_program, mint]
	return solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			tokenProgramID.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgramID,
	)
}

// NewCreateAssociatedTokenAccountIx builds an instruction to create an ATA.
// Account order (ATA program):
// 0. payer (signer, writable)
// 1. ata (writable)
// 2. owner (read-only)
// 3. mint (read-only)
// 4. system_program
// 5. token_program
func NewCreateAssociatedTokenAccountIx(payer, ata, owner, mint, tokenProgramID solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgramID, IsSigner: false, IsWritable: false},
	}

	// ATA create instruction data is empty.
	return solana.NewInstruction(AssociatedTokenProgramID, accounts, nil)
}

// NewMintToIx builds a MintTo instruction minting `amount` raw units to a
// token account.
func NewMintToIx(mint, dest, authority solana.PublicKey, amount uint64, programID solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 7 = MintTo: u8 index, u64 amount
	data := make([]byte, 9)
	data[0] = 7
	binary.LittleEndian.PutUint64(data[1:9], amount)

	accounts := []*solana.AccountMeta{
		{PublicKey: mint, IsSigner: false, IsWritable: true},
		{PublicKey: dest, IsSigner: false, IsWritable: true},
		{PublicKey: authority, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(programID, accounts, data)
}

func appendBorshString(data []byte, s string) []byte {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(s)))
	data = append(data, l[:]...)
	return append(data, s...)
}
