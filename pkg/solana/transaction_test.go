package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generated with the keypair seed below by the Rust SDK: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const rustGenerated = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, rustGenerated, base64.StdEncoding.EncodeToString(tx.Marshal()))
	assert.NoError(t, tx.VerifySignatures())

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx.Message.Marshal(), decoded.Message.Marshal())
	assert.NoError(t, decoded.VerifySignatures())
}

func TestTransaction_EmptyAccount(t *testing.T) {
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tx := NewTransaction(
		pub,
		NewInstruction(
			program,
			[]byte{1, 2, 3},
			NewAccountMeta(nil, false),
		),
	)
	assert.NoError(t, tx.Sign(priv))

	var rtt Transaction
	assert.NoError(t, rtt.Unmarshal(tx.Marshal()))
	assert.Equal(t, make([]byte, ed25519.PublicKeySize), []byte(rtt.Message.Accounts[1]))
}

func TestTransaction_InvalidAccounts(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			nil,
			NewAccountMeta(public(keys[0]), true),
		),
	)
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	_, err := tx.Message.DecompileInstructions()
	assert.Error(t, err)

	// A failed decode leaves the receiver untouched.
	valid := NewTransaction(
		public(keys[1]),
		NewInstruction(public(keys[0]), []byte{1}),
	)
	before := valid
	assert.Error(t, valid.Unmarshal(tx.Marshal()))
	assert.Equal(t, before, valid)

	var msg Message
	require.NoError(t, msg.Unmarshal(valid.Message.Marshal()))
	decoded := msg
	assert.Error(t, msg.Unmarshal(tx.Message.Marshal()))
	assert.Equal(t, decoded, msg)

	tx = NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			nil,
			NewAccountMeta(public(keys[0]), true),
		),
	)
	tx.Message.Instructions[0].Accounts = []byte{2}
	assert.Error(t, tx.Unmarshal(tx.Marshal()))
}

func TestTransaction_SingleInstruction(t *testing.T) {
	keys := generateKeys(t, 2)
	payer := keys[0]
	program := keys[1]

	keys = generateKeys(t, 4)
	data := []byte{1, 2, 3}

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewReadonlyAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[1]), false),
			NewAccountMeta(public(keys[2]), false),
			NewAccountMeta(public(keys[3]), true),
		),
	)

	// Signing order does not matter.
	assert.NoError(t, tx.Sign(keys[0], keys[3], payer))

	require.Len(t, tx.Signatures, 3)
	require.Len(t, tx.Message.Accounts, 6)
	assert.EqualValues(t, 3, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 2, tx.Message.Header.NumReadOnly)

	message := tx.Message.Marshal()

	assert.True(t, ed25519.Verify(public(payer), message, tx.Signatures[0][:]))
	assert.True(t, ed25519.Verify(public(keys[3]), message, tx.Signatures[1][:]))
	assert.True(t, ed25519.Verify(public(keys[0]), message, tx.Signatures[2][:]))
	assert.NoError(t, tx.VerifySignatures())

	assert.Equal(t, public(payer), tx.Message.Accounts[0])
	assert.Equal(t, public(keys[3]), tx.Message.Accounts[1])
	assert.Equal(t, public(keys[0]), tx.Message.Accounts[2])
	assert.Equal(t, public(keys[2]), tx.Message.Accounts[3])
	assert.Equal(t, public(keys[1]), tx.Message.Accounts[4])
	assert.Equal(t, public(program), tx.Message.Accounts[5])

	assert.Equal(t, byte(5), tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, data, tx.Message.Instructions[0].Data)
	assert.Equal(t, []byte{2, 4, 3, 1}, tx.Message.Instructions[0].Accounts)

	for i, expected := range []struct {
		signer   bool
		writable bool
	}{
		{true, true},
		{true, true},
		{true, false},
		{false, true},
		{false, false},
		{false, false},
	} {
		assert.Equal(t, expected.signer, tx.Message.IsSigner(i), i)
		assert.Equal(t, expected.writable, tx.Message.IsWritable(i), i)
	}

	decompiled, err := tx.Message.DecompileInstructions()
	require.NoError(t, err)
	require.Len(t, decompiled, 1)
	assert.Equal(t, public(program), decompiled[0].Program)
	assert.Equal(t, data, decompiled[0].Data)
	assert.Equal(t, []AccountMeta{
		NewReadonlyAccountMeta(public(keys[0]), true),
		NewReadonlyAccountMeta(public(keys[1]), false),
		NewAccountMeta(public(keys[2]), false),
		NewAccountMeta(public(keys[3]), true),
	}, decompiled[0].Accounts)
}

func TestTransaction_DuplicateKeys(t *testing.T) {
	keys := generateKeys(t, 2)
	payer := keys[0]
	program := keys[1]

	keys = generateKeys(t, 4)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(public(keys[i]), public(keys[j])) < 0
	})

	// Key[0]: ReadOnlySigner -> WritableSigner
	// Key[1]: ReadOnly       -> ReadOnlySigner
	// Key[2]: Writable       -> Writable
	// Key[3]: WritableSigner -> WritableSigner
	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			nil,
			NewReadonlyAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[1]), false),
			NewAccountMeta(public(keys[2]), false),
			NewAccountMeta(public(keys[3]), true),
			NewAccountMeta(public(keys[0]), false),
			NewReadonlyAccountMeta(public(keys[1]), true),
			NewReadonlyAccountMeta(public(keys[2]), false),
			NewReadonlyAccountMeta(public(keys[3]), false),
		),
	)
	assert.NoError(t, tx.Sign(keys[0], keys[1], keys[3], payer))

	require.Len(t, tx.Signatures, 4)
	require.Len(t, tx.Message.Accounts, 6)
	assert.EqualValues(t, 4, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadOnly)

	assert.Equal(t, public(payer), tx.Message.Accounts[0])
	assert.Equal(t, public(keys[0]), tx.Message.Accounts[1])
	assert.Equal(t, public(keys[3]), tx.Message.Accounts[2])
	assert.Equal(t, public(keys[1]), tx.Message.Accounts[3])
	assert.Equal(t, public(keys[2]), tx.Message.Accounts[4])
	assert.Equal(t, public(program), tx.Message.Accounts[5])
	assert.Equal(t, []byte{1, 3, 4, 2, 1, 3, 4, 2}, tx.Message.Instructions[0].Accounts)
}

func TestTransaction_VerifySignatures(t *testing.T) {
	keys := generateKeys(t, 3)
	payer := keys[0]
	signer := keys[1]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(keys[2]),
			[]byte{1},
			NewAccountMeta(public(signer), true),
		),
	)

	assert.Equal(t, ErrMissingSignature, tx.VerifySignatures())

	require.NoError(t, tx.Sign(payer))
	assert.Equal(t, ErrMissingSignature, tx.VerifySignatures())

	require.NoError(t, tx.Sign(signer))
	assert.NoError(t, tx.VerifySignatures())

	// Signed by the wrong key.
	copy(tx.Signatures[1][:], ed25519.Sign(keys[2], tx.Message.Marshal()))
	assert.Equal(t, ErrInvalidSignature, tx.VerifySignatures())

	// Message tampered after signing.
	require.NoError(t, tx.Sign(signer))
	tx.Message.Instructions[0].Data = []byte{2}
	assert.Equal(t, ErrInvalidSignature, tx.VerifySignatures())

	assert.Error(t, tx.Sign(keys[2]))
	assert.Equal(t, tx.Signatures[0][:], tx.Signature())
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
