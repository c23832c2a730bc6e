package updatemetadata

import "github.com/code-payments/metadata-vault/pkg/solana"

// Framework errors raised while validating accounts and instruction data.
//
// Reference: https://github.com/coral-xyz/anchor/blob/v0.24.2/lang/src/error.rs
const (
	// 8 byte instruction identifier not provided
	ErrorInstructionMissing solana.CustomError = 100

	// Fallback functions are not supported
	ErrorInstructionFallbackNotFound solana.CustomError = 101

	// The program could not deserialize the given instruction
	ErrorInstructionDidNotDeserialize solana.CustomError = 102

	// A mut constraint was violated
	ErrorConstraintMut solana.CustomError = 2000

	// A signer constraint was violated
	ErrorConstraintSigner solana.CustomError = 2002

	// A rent exemption constraint was violated
	ErrorConstraintRentExempt solana.CustomError = 2005

	// A seeds constraint was violated
	ErrorConstraintSeeds solana.CustomError = 2006

	// An address constraint was violated
	ErrorConstraintAddress solana.CustomError = 2012

	// Expected zero account discriminant
	ErrorConstraintZero solana.CustomError = 2013

	// No 8 byte discriminator was found on the account
	ErrorAccountDiscriminatorNotFound solana.CustomError = 3001

	// 8 byte discriminator did not match what was expected
	ErrorAccountDiscriminatorMismatch solana.CustomError = 3002

	// Failed to deserialize the account
	ErrorAccountDidNotDeserialize solana.CustomError = 3003

	// Failed to serialize the account
	ErrorAccountDidNotSerialize solana.CustomError = 3004

	// Not enough account keys given to the instruction
	ErrorAccountNotEnoughKeys solana.CustomError = 3005

	// The given account is owned by a different program than expected
	ErrorAccountOwnedByWrongProgram solana.CustomError = 3007

	// Program ID was not as expected
	ErrorInvalidProgramId solana.CustomError = 3008

	// Program account is not executable
	ErrorInvalidProgramExecutable solana.CustomError = 3009

	// The given account did not sign
	ErrorAccountNotSigner solana.CustomError = 3010

	// The given account is not owned by the system program
	ErrorAccountNotSystemOwned solana.CustomError = 3011

	// The account was not initialized
	ErrorAccountNotInitialized solana.CustomError = 3012

	// The given public key does not match the required sysvar
	ErrorAccountSysvarMismatch solana.CustomError = 3015
)

// Program errors, numbered from 0x1770.
const (
	// Vault mint and timestamp lists are not index aligned
	ErrorVaultLengthMismatch solana.CustomError = 6000

	// The clock sysvar reported a negative timestamp
	ErrorInvalidClock solana.CustomError = 6001
)
