package updatemetadata

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

const (
	MaxVaultEntries = 333

	VaultAccountSize = (8 + // discriminator
		1 + // bump
		32*MaxVaultEntries + 8 + // mint_accounts
		8*MaxVaultEntries + 8) // updated_times
)

var VaultAccountDiscriminator = anchorDiscriminator("account", "Vault")

// VaultAccount tracks which mints had their metadata uri updated, and when.
// MintAccounts and UpdatedTimes are index aligned.
type VaultAccount struct {
	Bump         uint8
	MintAccounts []ed25519.PublicKey
	UpdatedTimes []uint64
}

// Size is the number of bytes the account occupies when serialized.
func (obj *VaultAccount) Size() int {
	return discriminatorSize +
		1 +
		4 + len(obj.MintAccounts)*ed25519.PublicKeySize +
		4 + len(obj.UpdatedTimes)*8
}

// Marshal serializes the account into a buffer of VaultAccountSize bytes.
func (obj *VaultAccount) Marshal() ([]byte, error) {
	b := make([]byte, VaultAccountSize)
	if err := obj.MarshalInto(b); err != nil {
		return nil, err
	}
	return b, nil
}

// MarshalInto serializes the account at the start of dst. Bytes past Size()
// are left untouched.
func (obj *VaultAccount) MarshalInto(dst []byte) error {
	if obj.Size() > len(dst) {
		return ErrVaultFull
	}

	var offset int
	putDiscriminator(dst, VaultAccountDiscriminator, &offset)
	binary.PutUint8(dst[offset:], obj.Bump, &offset)

	binary.PutUint32(dst[offset:], uint32(len(obj.MintAccounts)), &offset)
	for _, mint := range obj.MintAccounts {
		putKey(dst, mint, &offset)
	}

	binary.PutUint32(dst[offset:], uint32(len(obj.UpdatedTimes)), &offset)
	for _, ts := range obj.UpdatedTimes {
		binary.PutUint64(dst[offset:], ts, &offset)
	}

	return nil
}

func (obj *VaultAccount) Unmarshal(data []byte) error {
	if len(data) < discriminatorSize {
		return ErrDiscriminatorNotFound
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, VaultAccountDiscriminator) {
		return ErrDiscriminatorMismatch
	}

	if len(data) < offset+1 {
		return ErrInvalidAccountData
	}
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	var count uint32
	if err := binary.GetVecLength(data[offset:], &count, ed25519.PublicKeySize, &offset); err != nil {
		return ErrInvalidAccountData
	}
	obj.MintAccounts = make([]ed25519.PublicKey, count)
	for i := range obj.MintAccounts {
		getKey(data, &obj.MintAccounts[i], &offset)
	}

	if err := binary.GetVecLength(data[offset:], &count, 8, &offset); err != nil {
		return ErrInvalidAccountData
	}
	obj.UpdatedTimes = make([]uint64, count)
	for i := range obj.UpdatedTimes {
		binary.GetUint64(data[offset:], &obj.UpdatedTimes[i], &offset)
	}

	return nil
}

// Validate checks that the two lists are index aligned.
func (obj *VaultAccount) Validate() error {
	if len(obj.MintAccounts) != len(obj.UpdatedTimes) {
		return ErrVaultLengthMismatch
	}
	return nil
}

// IndexOf returns the position of mint in the vault, or -1.
func (obj *VaultAccount) IndexOf(mint ed25519.PublicKey) int {
	for i, existing := range obj.MintAccounts {
		if bytes.Equal(existing, mint) {
			return i
		}
	}
	return -1
}

// Upsert records timestamp for mint, appending it if it isn't tracked yet.
// Appending to a full vault fails with ErrVaultFull and leaves it unchanged.
func (obj *VaultAccount) Upsert(mint ed25519.PublicKey, timestamp uint64) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	if i := obj.IndexOf(mint); i >= 0 {
		obj.UpdatedTimes[i] = timestamp
		return nil
	}

	if len(obj.MintAccounts) >= MaxVaultEntries {
		return ErrVaultFull
	}

	obj.MintAccounts = append(obj.MintAccounts, append(ed25519.PublicKey(nil), mint...))
	obj.UpdatedTimes = append(obj.UpdatedTimes, timestamp)
	return nil
}

// Remove drops mint from the vault, keeping the order of the remaining
// entries. It reports whether the mint was present.
func (obj *VaultAccount) Remove(mint ed25519.PublicKey) (bool, error) {
	if err := obj.Validate(); err != nil {
		return false, err
	}

	i := obj.IndexOf(mint)
	if i < 0 {
		return false, nil
	}

	obj.MintAccounts = append(obj.MintAccounts[:i], obj.MintAccounts[i+1:]...)
	obj.UpdatedTimes = append(obj.UpdatedTimes[:i], obj.UpdatedTimes[i+1:]...)
	return true, nil
}

func (obj *VaultAccount) String() string {
	entries := make([]string, len(obj.MintAccounts))
	for i, mint := range obj.MintAccounts {
		var ts uint64
		if i < len(obj.UpdatedTimes) {
			ts = obj.UpdatedTimes[i]
		}
		entries[i] = fmt.Sprintf("%s:%d", base58.Encode(mint), ts)
	}

	return fmt.Sprintf(
		"VaultAccount{bump=%d,entries=[%s]}",
		obj.Bump,
		strings.Join(entries, ","),
	)
}
