// Package runtimetest runs programs against an in-memory runtime in tests.
package runtimetest

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
	"github.com/code-payments/metadata-vault/pkg/runtime/accounts/memory"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
	"github.com/code-payments/metadata-vault/pkg/solana/tokenmetadata"
	"github.com/code-payments/metadata-vault/pkg/testutil"
)

// DefaultTimestamp is the unix time the environment's clock starts at.
const DefaultTimestamp = 1_700_000_000

// DefaultPayerLamports is the balance of the fee payer.
const DefaultPayerLamports = 10_000_000_000

type Env struct {
	Ctx     context.Context
	Runtime *runtime.Runtime
	Clock   *runtime.ManualClock
	Payer   ed25519.PrivateKey
}

// NewEnv returns a runtime backed by an in-memory store with a funded payer.
// Programs are registered by the caller.
func NewEnv(t *testing.T) *Env {
	t.Cleanup(testutil.DisableLogging())

	env := &Env{
		Ctx:   context.Background(),
		Clock: runtime.NewManualClock(DefaultTimestamp),
		Payer: testutil.GenerateSolanaKeypair(t),
	}
	env.Runtime = runtime.New(memory.New(), env.Clock, runtime.WithEnvConfigs())
	env.Fund(t, Public(env.Payer), DefaultPayerLamports)
	return env
}

// PayerKey is the public key of the fee payer.
func (e *Env) PayerKey() ed25519.PublicKey {
	return Public(e.Payer)
}

// Execute signs instructions with the payer and signers, then executes them
// as a single transaction.
func (e *Env) Execute(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) error {
	txn := solana.NewTransaction(e.PayerKey(), instructions...)
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.Payer}, signers...)...))
	return e.Runtime.ExecuteTransaction(e.Ctx, &txn)
}

// Fund creates a system account holding lamports at key.
func (e *Env) Fund(t *testing.T, key ed25519.PublicKey, lamports uint64) {
	require.NoError(t, e.Runtime.SetAccount(e.Ctx, key, runtime.NewSystemAccount(lamports)))
}

// SetAccount writes a rent exempt account with data owned by owner.
func (e *Env) SetAccount(t *testing.T, key, owner ed25519.PublicKey, data []byte) {
	require.NoError(t, e.Runtime.SetAccount(e.Ctx, key, &runtime.Account{
		Lamports: e.Runtime.Rent().MinimumBalance(uint64(len(data))),
		Data:     data,
		Owner:    owner,
	}))
}

func (e *Env) GetAccount(t *testing.T, key ed25519.PublicKey) *runtime.Account {
	account, err := e.Runtime.GetAccount(e.Ctx, key)
	require.NoError(t, err)
	return account
}

// RequireNoAccount fails the test if an account exists at key.
func (e *Env) RequireNoAccount(t *testing.T, key ed25519.PublicKey) {
	_, err := e.Runtime.GetAccount(e.Ctx, key)
	require.Equal(t, accounts.ErrAccountNotFound, err)
}

// SetMint writes an initialized mint with the given decimals.
func (e *Env) SetMint(t *testing.T, key ed25519.PublicKey, decimals uint8) {
	mint := &token.Mint{
		Decimals:      decimals,
		IsInitialized: true,
	}
	e.SetAccount(t, key, token.ProgramKey, mint.Marshal())
}

// SetTokenAccount writes an initialized token account for mint held by owner.
func (e *Env) SetTokenAccount(t *testing.T, key, mint, owner ed25519.PublicKey, amount uint64) {
	account := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	e.SetAccount(t, key, token.ProgramKey, account.Marshal())
}

func (e *Env) GetTokenAccount(t *testing.T, key ed25519.PublicKey) *token.Account {
	account := e.GetAccount(t, key)
	require.True(t, account.IsOwnedBy(token.ProgramKey))

	var state token.Account
	require.True(t, state.Unmarshal(account.Data))
	return &state
}

// SetMetadata writes a mutable MetadataV1 account for mint at its derived
// address, padding strings the way the metadata program stores them.
func (e *Env) SetMetadata(t *testing.T, mint, updateAuthority ed25519.PublicKey, data tokenmetadata.Data) ed25519.PublicKey {
	address, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: mint,
	})
	require.NoError(t, err)

	data.Name = tokenmetadata.PadString(data.Name, tokenmetadata.MaxNameLength)
	data.Symbol = tokenmetadata.PadString(data.Symbol, tokenmetadata.MaxSymbolLength)
	data.Uri = tokenmetadata.PadString(data.Uri, tokenmetadata.MaxUriLength)

	metadata := &tokenmetadata.MetadataAccount{
		Key:             tokenmetadata.KeyMetadataV1,
		UpdateAuthority: updateAuthority,
		Mint:            mint,
		Data:            data,
		IsMutable:       true,
	}
	encoded, err := metadata.Marshal()
	require.NoError(t, err)

	e.SetAccount(t, address, tokenmetadata.PROGRAM_ID, encoded)
	return address
}

func (e *Env) GetMetadata(t *testing.T, address ed25519.PublicKey) *tokenmetadata.MetadataAccount {
	account := e.GetAccount(t, address)
	require.True(t, account.IsOwnedBy(tokenmetadata.PROGRAM_ID))

	var metadata tokenmetadata.MetadataAccount
	require.NoError(t, metadata.Unmarshal(account.Data))
	return &metadata
}

// Snapshot captures the committed state of keys, for comparing after a failed
// transaction.
func (e *Env) Snapshot(t *testing.T, keys ...ed25519.PublicKey) []*runtime.Account {
	snapshot := make([]*runtime.Account, len(keys))
	for i, key := range keys {
		account, err := e.Runtime.GetAccount(e.Ctx, key)
		if err == accounts.ErrAccountNotFound {
			continue
		}
		require.NoError(t, err)
		snapshot[i] = account
	}
	return snapshot
}

// AssertInstructionError asserts err is a transaction error raised by the
// instruction at index.
func AssertInstructionError(t *testing.T, index int, expected error, err error) {
	require.Error(t, err)

	txErr, ok := err.(*solana.TransactionError)
	require.True(t, ok, err)
	require.NotNil(t, txErr.InstructionError(), err)
	assert.Equal(t, index, txErr.InstructionError().Index)
	assert.Equal(t, expected, txErr.InstructionError().Err)
}

func Public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}
