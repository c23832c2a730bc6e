package tokenmetadata

import "github.com/code-payments/metadata-vault/pkg/solana"

// Subset of the token metadata program's error codes.
//
// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/master/token-metadata/program/src/error.rs
const (
	ErrorInstructionUnpackError      solana.CustomError = 0
	ErrorUninitialized               solana.CustomError = 4
	ErrorInvalidMetadataKey          solana.CustomError = 5
	ErrorUpdateAuthorityIncorrect    solana.CustomError = 7
	ErrorUpdateAuthorityIsNotSigner  solana.CustomError = 8
	ErrorNameTooLong                 solana.CustomError = 11
	ErrorSymbolTooLong               solana.CustomError = 12
	ErrorUriTooLong                  solana.CustomError = 13
	ErrorCreatorsTooLong             solana.CustomError = 36
	ErrorCreatorsMustBeAtleastOne    solana.CustomError = 37
	ErrorInvalidBasisPoints          solana.CustomError = 41
	ErrorPrimarySaleCanOnlyBeFlipped solana.CustomError = 42
	ErrorIsMutableCanOnlyBeFlipped   solana.CustomError = 43
	ErrorIncorrectOwner              solana.CustomError = 57
	ErrorDataIsImmutable             solana.CustomError = 59
)
