package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrNoViableBumpSeed      = errors.New("unable to find a viable program address bump seed")
	ErrAddressMismatch       = errors.New("derived address does not match")
)

var (
	programHashCtor = sha256.New
)

// CreateProgramAddress derives a program address from a set of seeds. The
// result must not be a point on the ed25519 curve, otherwise someone could
// hold a private key for it. ErrInvalidPublicKey is returned in that case.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	for _, v := range [][]byte{program, []byte(pdaMarker)} {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	if IsOnCurve(pub[:]) {
		return nil, ErrInvalidPublicKey
	}

	return pub[:], nil
}

// CreateProgramAddressWithBump derives a program address using an already known
// bump seed, which is appended as the final seed.
func CreateProgramAddressWithBump(program ed25519.PublicKey, bump uint8, seeds ...[]byte) (ed25519.PublicKey, error) {
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, []byte{bump})
	return CreateProgramAddress(program, withBump...)
}

// VerifyProgramAddress checks that address is the program address derived from
// the seeds and bump.
func VerifyProgramAddress(address, program ed25519.PublicKey, bump uint8, seeds ...[]byte) error {
	expected, err := CreateProgramAddressWithBump(program, bump, seeds...)
	if err != nil {
		return err
	}

	if !bytes.Equal(expected, address) {
		return ErrAddressMismatch
	}
	return nil
}

// IsOnCurve reports whether the key decodes to a valid compressed edwards point.
//
// The edwards point type used by crypto/ed25519 is internal to the standard
// library, so the check relies on the same decoding routine exposed by
// github.com/jdgcs/ed25519.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L182-L187
func IsOnCurve(key ed25519.PublicKey) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var raw [32]byte
	copy(raw[:], key)

	var A edwards25519.ExtendedGroupElement
	return A.FromBytes(&raw)
}

// FindProgramAddressAndBump searches bump seeds downward from 255 and returns
// the first one that yields a valid program address.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	for bump := math.MaxUint8; bump > 0; bump-- {
		pub, err := CreateProgramAddressWithBump(program, uint8(bump), seeds...)
		if err == nil {
			return pub, uint8(bump), nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}
