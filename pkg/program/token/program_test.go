package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/program/system"
	"github.com/code-payments/metadata-vault/pkg/runtime/runtimetest"
	"github.com/code-payments/metadata-vault/pkg/solana"
	system_binding "github.com/code-payments/metadata-vault/pkg/solana/system"
	token_binding "github.com/code-payments/metadata-vault/pkg/solana/token"
	"github.com/code-payments/metadata-vault/pkg/testutil"
)

type testEnv struct {
	*runtimetest.Env

	mint   ed25519.PublicKey
	owner  ed25519.PrivateKey
	source ed25519.PublicKey
	dest   ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		Env:   runtimetest.NewEnv(t),
		mint:  testutil.GenerateSolanaKeys(t, 1)[0],
		owner: testutil.GenerateSolanaKeypair(t),
	}
	system.Register(env.Runtime)
	Register(env.Runtime)

	keys := testutil.GenerateSolanaKeys(t, 2)
	env.source, env.dest = keys[0], keys[1]

	env.SetMint(t, env.mint, 5)
	env.SetTokenAccount(t, env.source, env.mint, runtimetest.Public(env.owner), 1_000)
	env.SetTokenAccount(t, env.dest, env.mint, testutil.GenerateSolanaKeys(t, 1)[0], 0)
	return env
}

func TestTransfer(t *testing.T) {
	env := setup(t)

	ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 400)
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{env.owner}, ix))

	assert.EqualValues(t, 600, env.GetTokenAccount(t, env.source).Amount)
	assert.EqualValues(t, 400, env.GetTokenAccount(t, env.dest).Amount)

	// Self transfers leave the balance alone.
	ix = token_binding.Transfer(env.source, env.source, runtimetest.Public(env.owner), 600)
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{env.owner}, ix))
	assert.EqualValues(t, 600, env.GetTokenAccount(t, env.source).Amount)
}

func TestTransfer_Delegate(t *testing.T) {
	env := setup(t)

	delegate := testutil.GenerateSolanaKeypair(t)
	account := env.GetTokenAccount(t, env.source)
	account.Delegate = runtimetest.Public(delegate)
	account.DelegatedAmount = 100
	env.SetAccount(t, env.source, token_binding.ProgramKey, account.Marshal())

	ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(delegate), 101)
	err := env.Execute(t, []ed25519.PrivateKey{delegate}, ix)
	runtimetest.AssertInstructionError(t, 0, token_binding.ErrorInsufficientFunds, err)

	ix = token_binding.Transfer(env.source, env.dest, runtimetest.Public(delegate), 100)
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{delegate}, ix))

	account = env.GetTokenAccount(t, env.source)
	assert.EqualValues(t, 900, account.Amount)
	assert.EqualValues(t, 0, account.DelegatedAmount)
	assert.Empty(t, account.Delegate)
}

func TestTransfer_Failures(t *testing.T) {
	for _, tc := range []struct {
		name     string
		prepare  func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey)
		expected error
	}{
		{
			name: "insufficient funds",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1_001)
				return ix, []ed25519.PrivateKey{env.owner}
			},
			expected: token_binding.ErrorInsufficientFunds,
		},
		{
			name: "wrong owner",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				other := testutil.GenerateSolanaKeypair(t)
				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(other), 1)
				return ix, []ed25519.PrivateKey{other}
			},
			expected: token_binding.ErrorOwnerMismatch,
		},
		{
			name: "owner did not sign",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1)
				ix.Accounts[2].IsSigner = false
				return ix, nil
			},
			expected: solana.InstructionErrorMissingRequiredSignature,
		},
		{
			name: "mint mismatch",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				otherMint := testutil.GenerateSolanaKeys(t, 1)[0]
				env.SetMint(t, otherMint, 5)
				env.SetTokenAccount(t, env.dest, otherMint, runtimetest.Public(env.owner), 0)

				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1)
				return ix, []ed25519.PrivateKey{env.owner}
			},
			expected: token_binding.ErrorMintMismatch,
		},
		{
			name: "frozen",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				account := env.GetTokenAccount(t, env.source)
				account.State = token_binding.AccountStateFrozen
				env.SetAccount(t, env.source, token_binding.ProgramKey, account.Marshal())

				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1)
				return ix, []ed25519.PrivateKey{env.owner}
			},
			expected: token_binding.ErrorAccountFrozen,
		},
		{
			name: "uninitialized destination",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				env.SetAccount(t, env.dest, token_binding.ProgramKey, make([]byte, token_binding.AccountSize))

				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1)
				return ix, []ed25519.PrivateKey{env.owner}
			},
			expected: token_binding.ErrorUninitializedState,
		},
		{
			name: "not a token account",
			prepare: func(t *testing.T, env *testEnv) (solana.Instruction, []ed25519.PrivateKey) {
				env.Fund(t, env.dest, 1)

				ix := token_binding.Transfer(env.source, env.dest, runtimetest.Public(env.owner), 1)
				return ix, []ed25519.PrivateKey{env.owner}
			},
			expected: solana.InstructionErrorIncorrectProgramID,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := setup(t)

			ix, signers := tc.prepare(t, env)
			before := env.Snapshot(t, env.source, env.dest)

			err := env.Execute(t, signers, ix)
			runtimetest.AssertInstructionError(t, 0, tc.expected, err)
			assert.Equal(t, before, env.Snapshot(t, env.source, env.dest))
		})
	}
}

func TestInitializeAccount(t *testing.T) {
	env := setup(t)

	account := testutil.GenerateSolanaKeypair(t)
	owner := testutil.GenerateSolanaKeys(t, 1)[0]
	lamports := env.Runtime.Rent().MinimumBalance(token_binding.AccountSize)

	create := system_binding.CreateAccount(env.PayerKey(), runtimetest.Public(account), token_binding.ProgramKey, lamports, token_binding.AccountSize)
	initialize := token_binding.InitializeAccount(runtimetest.Public(account), env.mint, owner)
	require.NoError(t, env.Execute(t, []ed25519.PrivateKey{account}, create, initialize))

	state := env.GetTokenAccount(t, runtimetest.Public(account))
	assert.EqualValues(t, env.mint, state.Mint)
	assert.EqualValues(t, owner, state.Owner)
	assert.Zero(t, state.Amount)
	assert.True(t, state.IsInitialized())

	err := env.Execute(t, nil, initialize)
	runtimetest.AssertInstructionError(t, 0, token_binding.ErrorAlreadyInUse, err)
}

func TestInitializeAccount_Failures(t *testing.T) {
	for _, tc := range []struct {
		name     string
		lamports func(env *testEnv) uint64
		mint     func(t *testing.T, env *testEnv) ed25519.PublicKey
		expected error
	}{
		{
			name: "not rent exempt",
			lamports: func(env *testEnv) uint64 {
				return env.Runtime.Rent().MinimumBalance(token_binding.AccountSize) - 1
			},
			expected: token_binding.ErrorNotRentExempt,
		},
		{
			name: "uninitialized mint",
			mint: func(t *testing.T, env *testEnv) ed25519.PublicKey {
				mint := testutil.GenerateSolanaKeys(t, 1)[0]
				env.SetAccount(t, mint, token_binding.ProgramKey, make([]byte, token_binding.MintSize))
				return mint
			},
			expected: token_binding.ErrorInvalidMint,
		},
		{
			name: "mint not owned by token program",
			mint: func(t *testing.T, env *testEnv) ed25519.PublicKey {
				mint := testutil.GenerateSolanaKeys(t, 1)[0]
				env.Fund(t, mint, 1)
				return mint
			},
			expected: solana.InstructionErrorIncorrectProgramID,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := setup(t)

			lamports := env.Runtime.Rent().MinimumBalance(token_binding.AccountSize)
			if tc.lamports != nil {
				lamports = tc.lamports(env)
			}
			mint := env.mint
			if tc.mint != nil {
				mint = tc.mint(t, env)
			}

			account := testutil.GenerateSolanaKeypair(t)
			create := system_binding.CreateAccount(env.PayerKey(), runtimetest.Public(account), token_binding.ProgramKey, lamports, token_binding.AccountSize)
			initialize := token_binding.InitializeAccount(runtimetest.Public(account), mint, env.PayerKey())

			err := env.Execute(t, []ed25519.PrivateKey{account}, create, initialize)
			runtimetest.AssertInstructionError(t, 1, tc.expected, err)
			env.RequireNoAccount(t, runtimetest.Public(account))
		})
	}
}
