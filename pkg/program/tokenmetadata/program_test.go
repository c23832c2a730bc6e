package tokenmetadata

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/runtime/runtimetest"
	"github.com/code-payments/metadata-vault/pkg/solana"
	token_metadata "github.com/code-payments/metadata-vault/pkg/solana/tokenmetadata"
	"github.com/code-payments/metadata-vault/pkg/testutil"
)

type testEnv struct {
	*runtimetest.Env

	authority ed25519.PrivateKey
	mint      ed25519.PublicKey
	metadata  ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		Env:       runtimetest.NewEnv(t),
		authority: testutil.GenerateSolanaKeypair(t),
		mint:      testutil.GenerateSolanaKeys(t, 1)[0],
	}
	Register(env.Runtime)

	env.metadata = env.SetMetadata(t, env.mint, runtimetest.Public(env.authority), token_metadata.Data{
		Name:                 "Flower #12",
		Symbol:               "FLWR",
		Uri:                  "https://arweave.net/original",
		SellerFeeBasisPoints: 500,
		Creators: []token_metadata.Creator{
			{Address: runtimetest.Public(env.authority), Verified: true, Share: 100},
		},
	})
	return env
}

func (e *testEnv) update(t *testing.T, args *token_metadata.UpdateMetadataAccountsV2InstructionArgs) solana.Instruction {
	ix, err := token_metadata.NewUpdateMetadataAccountsV2Instruction(
		&token_metadata.UpdateMetadataAccountsV2InstructionAccounts{
			Metadata:        e.metadata,
			UpdateAuthority: runtimetest.Public(e.authority),
		},
		args,
	)
	require.NoError(t, err)
	return ix
}

func (e *testEnv) dataWithUri(t *testing.T, uri string) *token_metadata.DataV2 {
	data := e.GetMetadata(t, e.metadata).ToDataV2()
	data.Uri = uri
	return &data
}

func TestUpdateMetadataAccountsV2(t *testing.T) {
	env := setup(t)

	before := env.GetAccount(t, env.metadata)

	ix := env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{
		Data: env.dataWithUri(t, "ipfs://a"),
	})
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{env.authority}, ix))

	after := env.GetAccount(t, env.metadata)
	assert.Len(t, after.Data, len(before.Data))
	assert.Equal(t, before.Lamports, after.Lamports)

	metadata := env.GetMetadata(t, env.metadata)
	assert.Equal(t, "ipfs://a", metadata.Data.Uri)
	assert.Equal(t, "Flower #12", metadata.Data.Name)
	assert.Equal(t, "FLWR", metadata.Data.Symbol)
	assert.EqualValues(t, 500, metadata.Data.SellerFeeBasisPoints)
	require.Len(t, metadata.Data.Creators, 1)
	assert.True(t, metadata.Data.Creators[0].Verified)
	assert.EqualValues(t, runtimetest.Public(env.authority), metadata.UpdateAuthority)
	assert.True(t, metadata.IsMutable)
	assert.False(t, metadata.PrimarySaleHappened)

	// The uri is stored padded, so everything past the name, symbol and uri
	// stays at the same offset.
	assert.Equal(t, before.Data[:1+32+32], after.Data[:1+32+32])
	uriOffset := 1 + 32 + 32 + 4 + token_metadata.MaxNameLength + 4 + token_metadata.MaxSymbolLength
	assert.EqualValues(t, token_metadata.MaxUriLength, after.Data[uriOffset])
	tail := uriOffset + 4 + token_metadata.MaxUriLength
	assert.Equal(t, before.Data[tail:], after.Data[tail:])
}

func TestUpdateMetadataAccountsV2_Flags(t *testing.T) {
	env := setup(t)

	newAuthority := testutil.GenerateSolanaKeypair(t)
	yes, no := true, false

	ix := env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{
		NewUpdateAuthority:  runtimetest.Public(newAuthority),
		PrimarySaleHappened: &yes,
		IsMutable:           &no,
	})
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{env.authority}, ix))

	metadata := env.GetMetadata(t, env.metadata)
	assert.EqualValues(t, runtimetest.Public(newAuthority), metadata.UpdateAuthority)
	assert.True(t, metadata.PrimarySaleHappened)
	assert.False(t, metadata.IsMutable)
	assert.Equal(t, "https://arweave.net/original", metadata.Data.Uri)

	env.authority = newAuthority
	for _, tc := range []struct {
		args     *token_metadata.UpdateMetadataAccountsV2InstructionArgs
		expected error
	}{
		{
			args:     &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: env.dataWithUri(t, "ipfs://b")},
			expected: token_metadata.ErrorDataIsImmutable,
		},
		{
			args:     &token_metadata.UpdateMetadataAccountsV2InstructionArgs{PrimarySaleHappened: &no},
			expected: token_metadata.ErrorPrimarySaleCanOnlyBeFlipped,
		},
		{
			args:     &token_metadata.UpdateMetadataAccountsV2InstructionArgs{IsMutable: &yes},
			expected: token_metadata.ErrorIsMutableCanOnlyBeFlipped,
		},
	} {
		err := env.Execute(t, []ed25519.PrivateKey{env.authority}, env.update(t, tc.args))
		runtimetest.AssertInstructionError(t, 0, tc.expected, err)
	}
}

func TestUpdateMetadataAccountsV2_Failures(t *testing.T) {
	for _, tc := range []struct {
		name     string
		prepare  func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey)
		expected error
	}{
		{
			name: "wrong update authority",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				data := env.dataWithUri(t, "ipfs://a")
				env.authority = testutil.GenerateSolanaKeypair(t)
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: data}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorUpdateAuthorityIncorrect,
		},
		{
			name: "update authority did not sign",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				ix := env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: env.dataWithUri(t, "ipfs://a")})
				ix.Accounts[1].IsSigner = false
				return ix, nil
			},
			expected: token_metadata.ErrorUpdateAuthorityIsNotSigner,
		},
		{
			name: "uri too long",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				data := env.dataWithUri(t, "ipfs://"+strings.Repeat("a", token_metadata.MaxUriLength))
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: data}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorUriTooLong,
		},
		{
			name: "name too long",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				data := env.dataWithUri(t, "ipfs://a")
				data.Name = strings.Repeat("n", token_metadata.MaxNameLength+1)
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: data}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorNameTooLong,
		},
		{
			name: "invalid basis points",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				data := env.dataWithUri(t, "ipfs://a")
				data.SellerFeeBasisPoints = token_metadata.MaxSellerFeeBasisPoint + 1
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{Data: data}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorInvalidBasisPoints,
		},
		{
			name: "metadata not owned by program",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				account := env.GetAccount(t, env.metadata)
				env.SetAccount(t, env.metadata, testutil.GenerateSolanaKeys(t, 1)[0], account.Data)
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorIncorrectOwner,
		},
		{
			name: "uninitialized metadata",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				env.SetAccount(t, env.metadata, token_metadata.PROGRAM_ID, make([]byte, token_metadata.MetadataAccountSize))
				return env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{}), []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorUninitialized,
		},
		{
			name: "unsupported instruction",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				ix := env.update(t, &token_metadata.UpdateMetadataAccountsV2InstructionArgs{})
				ix.Data[0] = 1
				return ix, []ed25519.PrivateKey{env.authority}
			},
			expected: token_metadata.ErrorInstructionUnpackError,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := setup(t)

			ix, signers := tc.prepare(t, env)
			before := env.Snapshot(t, env.metadata)

			err := env.Execute(t, signers, ix)
			runtimetest.AssertInstructionError(t, 0, tc.expected, err)
			assert.Equal(t, before, env.Snapshot(t, env.metadata))
		})
	}
}
