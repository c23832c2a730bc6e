package updatemetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
)

// Client reads vault state from a cluster.
type Client struct {
	sc solana.Client
}

func NewClient(sc solana.Client) *Client {
	return &Client{
		sc: sc,
	}
}

// GetVaultAccount fetches and decodes the vault at address.
func (c *Client) GetVaultAccount(address ed25519.PublicKey, commitment solana.Commitment) (*VaultAccount, error) {
	info, err := c.sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(info.Owner, PROGRAM_ID) {
		return nil, ErrInvalidAccountData
	}

	var vault VaultAccount
	if err := vault.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &vault, nil
}

// GetVaultAddresses lists every vault owned by the program.
func (c *Client) GetVaultAddresses() ([]ed25519.PublicKey, error) {
	encoded, _, err := c.sc.GetFilteredProgramAccounts(PROGRAM_ID, 0, VaultAccountDiscriminator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get program accounts")
	}

	addresses := make([]ed25519.PublicKey, len(encoded))
	for i, value := range encoded {
		decoded, err := base58.Decode(value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid address %q", value)
		}
		addresses[i] = decoded
	}
	return addresses, nil
}

// GetUpdatedTime returns the last update timestamp recorded for mint in the
// vault, and whether the mint is tracked at all.
func (c *Client) GetUpdatedTime(vault, mint ed25519.PublicKey, commitment solana.Commitment) (uint64, bool, error) {
	account, err := c.GetVaultAccount(vault, commitment)
	if err != nil {
		return 0, false, err
	}
	if err := account.Validate(); err != nil {
		return 0, false, err
	}

	i := account.IndexOf(mint)
	if i < 0 {
		return 0, false, nil
	}
	return account.UpdatedTimes[i], true, nil
}

// GetPoolBalance returns the fees collected by vault, held by the pool's
// associated token account for flwrMint.
func (c *Client) GetPoolBalance(vault, flwrMint ed25519.PublicKey, commitment solana.Commitment) (uint64, error) {
	pool, _, err := GetVaultPoolAddress(&GetVaultPoolAddressArgs{
		Vault: vault,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to derive vault pool")
	}

	balance, err := token.NewClient(c.sc, flwrMint).GetAssociatedBalance(pool, commitment)
	if err == token.ErrAccountNotFound {
		return 0, ErrAccountNotFound
	}
	return balance, err
}
