package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is not an initialized token account of the
	// client's mint.
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// Client reads token accounts of a single mint, such as the fee token held by
// a vault pool.
type Client struct {
	sc   solana.Client
	mint ed25519.PublicKey
}

// NewClient creates a Client for token accounts of mint.
func NewClient(sc solana.Client, mint ed25519.PublicKey) *Client {
	return &Client{
		sc:   sc,
		mint: mint,
	}
}

func (c *Client) Mint() ed25519.PublicKey {
	return c.mint
}

// GetAccount returns the token account at address.
//
// ErrInvalidTokenAccount is returned for accounts not owned by the token
// program, not initialized, or holding a different mint.
func (c *Client) GetAccount(address ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	info, err := c.sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(info.Owner, ProgramKey) {
		return nil, ErrInvalidTokenAccount
	}

	var account Account
	if !account.Unmarshal(info.Data) || !account.IsInitialized() {
		return nil, ErrInvalidTokenAccount
	}
	if !bytes.Equal(c.mint, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

// GetAssociatedBalance returns the balance of wallet's associated token
// account.
func (c *Client) GetAssociatedBalance(wallet ed25519.PublicKey, commitment solana.Commitment) (uint64, error) {
	address, err := GetAssociatedAccount(wallet, c.mint)
	if err != nil {
		return 0, errors.Wrap(err, "failed to derive associated account")
	}

	account, err := c.GetAccount(address, commitment)
	if err != nil {
		return 0, err
	}
	return account.Amount, nil
}
