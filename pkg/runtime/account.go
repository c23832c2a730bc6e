package runtime

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/solana/system"
)

// Account is the state of an account while a transaction executes.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      ed25519.PublicKey
	Executable bool
}

// NewSystemAccount returns an empty account owned by the system program.
func NewSystemAccount(lamports uint64) *Account {
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(owner, system.ProgramKey[:])

	return &Account{
		Lamports: lamports,
		Owner:    owner,
	}
}

func (a *Account) Clone() *Account {
	cloned := &Account{
		Lamports:   a.Lamports,
		Owner:      append(ed25519.PublicKey(nil), a.Owner...),
		Executable: a.Executable,
	}
	if a.Data != nil {
		cloned.Data = make([]byte, len(a.Data))
		copy(cloned.Data, a.Data)
	}
	return cloned
}

// IsOwnedBy reports whether program owns the account.
func (a *Account) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

func (a *Account) String() string {
	return fmt.Sprintf(
		"Account{lamports=%d,owner=%s,executable=%v,data_len=%d}",
		a.Lamports,
		base58.Encode(a.Owner),
		a.Executable,
		len(a.Data),
	)
}

func isZeroInitialized(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// AccountInfo is an account as passed to a program, along with the privileges
// the instruction grants on it. Infos for the same key share one Account, so
// changes are visible across the invoke stack.
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	*Account
}

func (i *AccountInfo) String() string {
	var flags string
	if i.IsSigner {
		flags += "s"
	}
	if i.IsWritable {
		flags += "w"
	}
	return fmt.Sprintf("%s[%s] %s", base58.Encode(i.Key), flags, i.Account.String())
}
