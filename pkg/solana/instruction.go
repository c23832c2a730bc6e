package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta represents the account information required
// for building transactions.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

func (m AccountMeta) String() string {
	var flags string
	if m.IsSigner {
		flags += "s"
	}
	if m.IsWritable {
		flags += "w"
	}
	return fmt.Sprintf("%s[%s]", base58.Encode(m.PublicKey), flags)
}

// Instruction represents a transaction instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// IsProgram reports whether the instruction targets program.
func (i Instruction) IsProgram(program ed25519.PublicKey) bool {
	return bytes.Equal(i.Program, program)
}

// Clone returns a deep copy of the instruction.
func (i Instruction) Clone() Instruction {
	accounts := make([]AccountMeta, len(i.Accounts))
	for j, meta := range i.Accounts {
		accounts[j] = AccountMeta{
			PublicKey:  append(ed25519.PublicKey(nil), meta.PublicKey...),
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
	}

	return Instruction{
		Program:  append(ed25519.PublicKey(nil), i.Program...),
		Accounts: accounts,
		Data:     append([]byte(nil), i.Data...),
	}
}
