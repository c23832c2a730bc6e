package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

// ProgramKey is the address of the system program.
var ProgramKey [32]byte

type Command uint32

const (
	CommandCreateAccount Command = iota
	// nolint:varcheck,deadcode,unused
	CommandAssign
	CommandTransfer
	// nolint:varcheck,deadcode,unused
	CommandCreateAccountWithSeed
	// nolint:varcheck,deadcode,unused
	CommandAdvanceNonceAccount
	// nolint:varcheck,deadcode,unused
	CommandWithdrawNonceAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeNonceAccount
	// nolint:varcheck,deadcode,unused
	CommandAuthorizeNonceAccount
	// nolint:varcheck,deadcode,unused
	CommandAllocate
)

// MaxPermittedDataLength is the largest allocation CreateAccount accepts.
const MaxPermittedDataLength = 10 * 1024 * 1024

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L14
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	// nolint:varcheck,deadcode,unused
	ErrorInvalidProgramId
	ErrorInvalidAccountDataLength
	// nolint:varcheck,deadcode,unused
	ErrorMaxSeedLengthExceeded
	// nolint:varcheck,deadcode,unused
	ErrorAddressWithSeedMismatch
)

// GetCommand returns the command encoded in a system instruction.
func GetCommand(i solana.Instruction) (Command, error) {
	if !i.IsProgram(ProgramKey[:]) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(i.Data) < 4 {
		return 0, solana.ErrIncorrectInstruction
	}

	return Command(binary.LittleEndian.Uint32(i.Data)), nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	//
	// CreateAccount {
	//   lamports: u64,
	//   space: u64,
	//   owner: Pubkey,
	// }
	data := make([]byte, 4+2*8+32)
	binary.LittleEndian.PutUint32(data, uint32(CommandCreateAccount))
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[4+8:], size)
	copy(data[4+2*8:], owner)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccount(i solana.Instruction) (*DecompiledCreateAccount, error) {
	command, err := GetCommand(i)
	if err != nil {
		return nil, err
	}
	if command != CommandCreateAccount {
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 52 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	v := &DecompiledCreateAccount{
		Funder:  i.Accounts[0].PublicKey,
		Address: i.Accounts[1].PublicKey,
	}
	v.Lamports = binary.LittleEndian.Uint64(i.Data[4:])
	v.Size = binary.LittleEndian.Uint64(i.Data[4+8:])
	v.Owner = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(v.Owner, i.Data[4+2*8:])

	return v, nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L86-L92
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, uint32(CommandTransfer))
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

func DecompileTransfer(i solana.Instruction) (*DecompiledTransfer, error) {
	command, err := GetCommand(i)
	if err != nil {
		return nil, err
	}
	if command != CommandTransfer {
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 12 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return &DecompiledTransfer{
		From:     i.Accounts[0].PublicKey,
		To:       i.Accounts[1].PublicKey,
		Lamports: binary.LittleEndian.Uint64(i.Data[4:]),
	}, nil
}

// IsSystemOwned reports whether owner is the system program.
func IsSystemOwned(owner ed25519.PublicKey) bool {
	return bytes.Equal(owner, ProgramKey[:])
}
