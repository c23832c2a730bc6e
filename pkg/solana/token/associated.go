package token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
)

// AssociatedTokenAccountProgramKey  is the address of the associated token account program that should be used.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedTokenAccountProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

// AssociatedCommand is the optional single byte payload of an associated token
// account instruction. Empty data is treated as AssociatedCommandCreate.
type AssociatedCommand byte

const (
	AssociatedCommandCreate AssociatedCommand = iota
	AssociatedCommandCreateIdempotent
)

// GetAssociatedAccount returns the associated account address for an SPL token.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	addr, _, err := GetAssociatedAccountAndBump(wallet, mint)
	return addr, err
}

// GetAssociatedAccountAndBump is GetAssociatedAccount, also returning the bump
// seed the address was derived with.
func GetAssociatedAccountAndBump(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		AssociatedTokenAccountProgramKey,
		wallet,
		ProgramKey,
		mint,
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/0639953c7dd0f5228c3ceda3ba68fece3b46ff1d/associated-token-account/program/src/lib.rs#L54
func CreateAssociatedTokenAccount(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	addr, err := GetAssociatedAccount(wallet, mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return solana.NewInstruction(
		AssociatedTokenAccountProgramKey,
		[]byte{},
		solana.NewAccountMeta(subsidizer, true),
		solana.NewAccountMeta(addr, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), addr, nil
}

type DecompiledCreateAssociatedAccount struct {
	Subsidizer ed25519.PublicKey
	Address    ed25519.PublicKey
	Owner      ed25519.PublicKey
	Mint       ed25519.PublicKey
	Idempotent bool
}

func DecompileCreateAssociatedAccount(i solana.Instruction) (*DecompiledCreateAssociatedAccount, error) {
	if !i.IsProgram(AssociatedTokenAccountProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	var idempotent bool
	switch {
	case len(i.Data) == 0:
	case len(i.Data) == 1 && AssociatedCommand(i.Data[0]) == AssociatedCommandCreate:
	case len(i.Data) == 1 && AssociatedCommand(i.Data[0]) == AssociatedCommandCreateIdempotent:
		idempotent = true
	default:
		return nil, solana.ErrIncorrectInstruction
	}

	// The rent sysvar is optional on newer versions of the program.
	if len(i.Accounts) != 6 && len(i.Accounts) != 7 {
		return nil, errors.Errorf("invalid number of accounts: %d (expected %d)", len(i.Accounts), 7)
	}

	if !i.Accounts[4].PublicKey.Equal(ed25519.PublicKey(system.ProgramKey[:])) {
		return nil, errors.Errorf("system program key mismatch")
	}
	if !i.Accounts[5].PublicKey.Equal(ProgramKey) {
		return nil, errors.Errorf("token program key mismatch")
	}
	if len(i.Accounts) == 7 && !i.Accounts[6].PublicKey.Equal(system.RentSysVar) {
		return nil, errors.Errorf("rent sysvar mismatch")
	}

	return &DecompiledCreateAssociatedAccount{
		Subsidizer: i.Accounts[0].PublicKey,
		Address:    i.Accounts[1].PublicKey,
		Owner:      i.Accounts[2].PublicKey,
		Mint:       i.Accounts[3].PublicKey,
		Idempotent: idempotent,
	}, nil
}
