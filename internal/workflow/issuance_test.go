package workflow

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiralabs/launchpad/internal/token"
)

type fakeRent struct {
	lamports uint64
	size     uint64
}

func (f *fakeRent) RentExemptBalance(_ context.Context, sizeBytes uint64) (uint64, error) {
	f.size = sizeBytes
	return f.lamports, nil
}

func validIssuanceParams() IssuanceParams {
	return IssuanceParams{
		Name:     "Kira Coin",
		Symbol:   "KIRA",
		URI:      "https://example.com/kira.json",
		Decimals: 9,
		Supply:   1_000_000_000,
	}
}

func testOwner(t *testing.T) solana.PublicKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k.PublicKey()
}

func TestIssuanceParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*IssuanceParams)
	}{
		{"missing name", func(p *IssuanceParams) { p.Name = "" }},
		{"missing symbol", func(p *IssuanceParams) { p.Symbol = "" }},
		{"missing uri", func(p *IssuanceParams) { p.URI = "" }},
		{"zero supply", func(p *IssuanceParams) { p.Supply = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validIssuanceParams()
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}

	assert.NoError(t, validIssuanceParams().Validate())
}

func TestNewIssuanceSteps_RejectsInvalidParams(t *testing.T) {
	p := validIssuanceParams()
	p.Supply = 0

	_, _, err := NewIssuanceSteps(&fakeRent{}, testOwner(t), p)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewIssuanceSteps_CreateMint(t *testing.T) {
	rent := &fakeRent{lamports: 2_000_000}
	params := validIssuanceParams()
	owner := testOwner(t)

	steps, desc, err := NewIssuanceSteps(rent, owner, params)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "create-mint", steps[0].Name)
	assert.False(t, desc.Mint.IsZero())

	payload, outputs, err := steps[0].Build(context.Background(), Context{})
	require.NoError(t, err)

	// One transaction: allocate, initialize mint, initialize metadata.
	require.Len(t, payload.Instructions, 3)
	require.Len(t, payload.Signers, 1)
	assert.Equal(t, desc.Mint, payload.Signers[0].PublicKey())
	assert.Equal(t, desc.Mint.String(), outputs[CtxMint])

	// Allocation is sized for the mint plus the packed metadata.
	meta := token.Metadata{Name: params.Name, Symbol: params.Symbol, URI: params.URI}
	assert.Equal(t, token.MintAccountSize(meta), rent.size)
}

func TestNewIssuanceSteps_TokenAccountNeedsMint(t *testing.T) {
	steps, desc, err := NewIssuanceSteps(&fakeRent{}, testOwner(t), validIssuanceParams())
	require.NoError(t, err)
	assert.Equal(t, "create-token-account", steps[1].Name)

	// Without the confirmed mint in the run context the step cannot build.
	_, _, err = steps[1].Build(context.Background(), Context{})
	assert.Error(t, err)

	payload, outputs, err := steps[1].Build(context.Background(), Context{CtxMint: desc.Mint.String()})
	require.NoError(t, err)
	require.Len(t, payload.Instructions, 1)
	assert.Empty(t, payload.Signers)
	assert.NotEmpty(t, outputs[CtxTokenAccount])
}

func TestNewIssuanceSteps_MintSupplyNeedsBothOutputs(t *testing.T) {
	owner := testOwner(t)
	steps, desc, err := NewIssuanceSteps(&fakeRent{}, owner, validIssuanceParams())
	require.NoError(t, err)
	assert.Equal(t, "mint-supply", steps[2].Name)

	_, _, err = steps[2].Build(context.Background(), Context{})
	assert.Error(t, err)

	_, _, err = steps[2].Build(context.Background(), Context{CtxMint: desc.Mint.String()})
	assert.Error(t, err)

	ata, _, err := token.FindAssociatedTokenAddress(owner, desc.Mint, token.Token2022ProgramID)
	require.NoError(t, err)

	payload, _, err := steps[2].Build(context.Background(), Context{
		CtxMint:         desc.Mint.String(),
		CtxTokenAccount: ata.String(),
	})
	require.NoError(t, err)
	require.Len(t, payload.Instructions, 1)
}
