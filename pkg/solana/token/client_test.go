package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

type fakeClient struct {
	accounts map[string]solana.AccountInfo
}

func (c *fakeClient) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := c.accounts[base58.Encode(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *fakeClient) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return 0, nil
}

func (c *fakeClient) GetFilteredProgramAccounts(ed25519.PublicKey, uint, []byte) ([]string, uint64, error) {
	return nil, 0, nil
}

func TestClient(t *testing.T) {
	keys := generateKeys(t, 5)
	mint, otherMint, wallet, uninitialized, notToken := keys[0], keys[1], keys[2], keys[3], keys[4]

	ata, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	otherAta, err := GetAssociatedAccount(wallet, otherMint)
	require.NoError(t, err)

	account := &Account{
		Mint:   mint,
		Owner:  wallet,
		Amount: 33_333_000_000_000,
		State:  AccountStateInitialized,
	}
	other := &Account{
		Mint:  otherMint,
		Owner: wallet,
		State: AccountStateInitialized,
	}

	sc := &fakeClient{
		accounts: map[string]solana.AccountInfo{
			base58.Encode(ata):           {Owner: ProgramKey, Data: account.Marshal()},
			base58.Encode(otherAta):      {Owner: ProgramKey, Data: other.Marshal()},
			base58.Encode(uninitialized): {Owner: ProgramKey, Data: make([]byte, AccountSize)},
			base58.Encode(notToken):      {Owner: wallet, Data: account.Marshal()},
		},
	}
	client := NewClient(sc, mint)
	assert.Equal(t, mint, client.Mint())

	actual, err := client.GetAccount(ata, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, account.Amount, actual.Amount)
	assert.EqualValues(t, wallet, actual.Owner)

	balance, err := client.GetAssociatedBalance(wallet, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 33_333_000_000_000, balance)

	for _, address := range []ed25519.PublicKey{otherAta, uninitialized, notToken} {
		_, err = client.GetAccount(address, solana.CommitmentFinalized)
		assert.Equal(t, ErrInvalidTokenAccount, err)
	}

	_, err = client.GetAssociatedBalance(otherMint, solana.CommitmentFinalized)
	assert.Equal(t, ErrAccountNotFound, err)
}
