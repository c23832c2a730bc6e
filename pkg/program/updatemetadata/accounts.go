package updatemetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
	update_metadata "github.com/code-payments/metadata-vault/pkg/solana/updatemetadata"
)

// Account checks follow Anchor's account types and constraints. Type checks
// run for every account first, constraints afterwards.
//
// Reference: https://github.com/coral-xyz/anchor/tree/v0.24.2/lang/src

func accountError(ictx *runtime.InvokeContext, name string, info *runtime.AccountInfo, err error) error {
	ictx.Log().WithError(err).Debugf("%s (%s) failed validation", name, base58.Encode(info.Key))
	return err
}

func requireSigner(info *runtime.AccountInfo) error {
	if !info.IsSigner {
		return update_metadata.ErrorAccountNotSigner
	}
	return nil
}

func requireMut(info *runtime.AccountInfo) error {
	if !info.IsWritable {
		return update_metadata.ErrorConstraintMut
	}
	return nil
}

func requireSystemAccount(info *runtime.AccountInfo) error {
	if !system.IsSystemOwned(info.Owner) {
		return update_metadata.ErrorAccountNotSystemOwned
	}
	return nil
}

func requireProgram(info *runtime.AccountInfo, id ed25519.PublicKey) error {
	if !bytes.Equal(info.Key, id) {
		return update_metadata.ErrorInvalidProgramId
	}
	if !info.Executable {
		return update_metadata.ErrorInvalidProgramExecutable
	}
	return nil
}

func requireSysvar(info *runtime.AccountInfo, id ed25519.PublicKey) error {
	if !bytes.Equal(info.Key, id) {
		return update_metadata.ErrorAccountSysvarMismatch
	}
	return nil
}

// requireVaultPool checks the pool authority is derived from vault with bump.
func requireVaultPool(info *runtime.AccountInfo, vault ed25519.PublicKey, bump uint8) error {
	expected, err := update_metadata.CreateVaultPoolAddress(vault, bump)
	if err != nil || !bytes.Equal(expected, info.Key) {
		return update_metadata.ErrorConstraintSeeds
	}
	return nil
}

// requireOwner is the ownership check shared by every typed account.
func requireOwner(info *runtime.AccountInfo, owner ed25519.PublicKey) error {
	if system.IsSystemOwned(info.Owner) && info.Lamports == 0 {
		return update_metadata.ErrorAccountNotInitialized
	}
	if !info.IsOwnedBy(owner) {
		return update_metadata.ErrorAccountOwnedByWrongProgram
	}
	return nil
}

func loadMint(info *runtime.AccountInfo) (*token.Mint, error) {
	if err := requireOwner(info, token.ProgramKey); err != nil {
		return nil, err
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return nil, update_metadata.ErrorAccountDidNotDeserialize
	}
	return &mint, nil
}

func loadTokenAccount(info *runtime.AccountInfo) (*token.Account, error) {
	if err := requireOwner(info, token.ProgramKey); err != nil {
		return nil, err
	}

	var account token.Account
	if !account.Unmarshal(info.Data) || !account.IsInitialized() {
		return nil, update_metadata.ErrorAccountDidNotDeserialize
	}
	return &account, nil
}

func loadVault(program ed25519.PublicKey, info *runtime.AccountInfo) (*update_metadata.VaultAccount, error) {
	if err := requireOwner(info, program); err != nil {
		return nil, err
	}

	var vault update_metadata.VaultAccount
	switch err := vault.Unmarshal(info.Data); err {
	case nil:
		return &vault, nil
	case update_metadata.ErrDiscriminatorNotFound:
		return nil, update_metadata.ErrorAccountDiscriminatorNotFound
	case update_metadata.ErrDiscriminatorMismatch:
		return nil, update_metadata.ErrorAccountDiscriminatorMismatch
	default:
		return nil, update_metadata.ErrorAccountDidNotDeserialize
	}
}

// requireZero checks an account was allocated for program but never written.
func requireZero(program ed25519.PublicKey, info *runtime.AccountInfo) error {
	if len(info.Data) < 8 {
		return update_metadata.ErrorAccountDiscriminatorNotFound
	}
	for _, b := range info.Data[:8] {
		if b != 0 {
			return update_metadata.ErrorConstraintZero
		}
	}
	if !info.IsOwnedBy(program) {
		return update_metadata.ErrorAccountOwnedByWrongProgram
	}
	return nil
}

func requireRentExempt(rent system.Rent, info *runtime.AccountInfo) error {
	if !rent.IsExempt(info.Lamports, uint64(len(info.Data))) {
		return update_metadata.ErrorConstraintRentExempt
	}
	return nil
}
