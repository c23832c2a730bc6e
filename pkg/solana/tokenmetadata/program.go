package tokenmetadata

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrAccountDataTooLarge    = errors.New("account data exceeds allocation")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/master/token-metadata/program/src/state/mod.rs
const (
	MaxNameLength          = 32
	MaxSymbolLength        = 10
	MaxUriLength           = 200
	MaxCreatorLimit        = 5
	MaxSellerFeeBasisPoint = 10000

	MaxCreatorLength = 32 + 1 + 1

	MaxDataSize = (4 + MaxNameLength + // name
		4 + MaxSymbolLength + // symbol
		4 + MaxUriLength + // uri
		2 + // seller_fee_basis_points
		1 + 4 + MaxCreatorLimit*MaxCreatorLength) // creators

	MetadataAccountSize = (1 + // key
		32 + // update_authority
		32 + // mint
		MaxDataSize + // data
		1 + // primary_sale_happened
		1 + // is_mutable
		9 + // edition_nonce
		172) // token_standard, collection, uses and reserved space
)

// Key identifies the type of a token metadata account.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
)

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
