package updatemetadata

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrDiscriminatorNotFound  = errors.New("account discriminator not found")
	ErrDiscriminatorMismatch  = errors.New("account discriminator mismatch")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrVaultFull              = errors.New("vault is at capacity")
	ErrVaultLengthMismatch    = errors.New("vault mint and timestamp lists differ in length")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("A2StQ8kXhQfa4EsEZxh6zwNftQ1wXxPj17JNJzpCeUMQ")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID               = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID            = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
	SPL_ASSOCIATED_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"))
	TOKEN_METADATA_PROGRAM_ID       = ed25519.PublicKey(mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

// Update fees, in the fee mint's smallest unit.
const (
	SpecUpdateFee     uint64 = 33_333_000_000_000
	StandardUpdateFee uint64 = 38_333_000_000_000
)

// GetUpdateFee returns the fee charged when registering or refreshing a mint.
func GetUpdateFee(spec bool) uint64 {
	if spec {
		return SpecUpdateFee
	}
	return StandardUpdateFee
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
