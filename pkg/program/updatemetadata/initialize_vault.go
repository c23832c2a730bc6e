package updatemetadata

import (
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
	update_metadata "github.com/code-payments/metadata-vault/pkg/solana/updatemetadata"
)

// initializeVault populates a freshly allocated vault and creates the pool's
// token account when it doesn't exist yet.
func (p *program) initializeVault(ictx *runtime.InvokeContext) error {
	if len(ictx.Accounts) < update_metadata.InitializeVaultInstructionAccountsCount {
		return update_metadata.ErrorAccountNotEnoughKeys
	}

	args, accounts, err := update_metadata.InitializeVaultInstructionFromInstruction(ictx.Instruction())
	if err != nil {
		return update_metadata.ErrorInstructionDidNotDeserialize
	}

	var (
		payer           = ictx.Accounts[0]
		vault           = ictx.Accounts[1]
		vaultPool       = ictx.Accounts[2]
		flwrMint        = ictx.Accounts[3]
		vaultPoolAta    = ictx.Accounts[4]
		rent            = ictx.Accounts[5]
		associatedToken = ictx.Accounts[6]
		tokenProgram    = ictx.Accounts[7]
		systemProgram   = ictx.Accounts[8]
	)

	log := ictx.Log().WithFields(logrus.Fields{
		"method": "initializeVault",
		"vault":  base58.Encode(accounts.Vault),
		"bump":   args.VaultBump,
	})

	// Account types
	if err := requireSigner(payer); err != nil {
		return accountError(ictx, "payer", payer, err)
	}
	if err := requireSystemAccount(vaultPool); err != nil {
		return accountError(ictx, "vault_pool", vaultPool, err)
	}
	if err := requireSysvar(rent, system.RentSysVar); err != nil {
		return accountError(ictx, "rent", rent, err)
	}
	if err := requireProgram(associatedToken, token.AssociatedTokenAccountProgramKey); err != nil {
		return accountError(ictx, "associated_token", associatedToken, err)
	}
	if err := requireProgram(tokenProgram, token.ProgramKey); err != nil {
		return accountError(ictx, "token_program", tokenProgram, err)
	}
	if err := requireProgram(systemProgram, system.ProgramKey[:]); err != nil {
		return accountError(ictx, "system_program", systemProgram, err)
	}

	// Constraints
	if err := requireMut(payer); err != nil {
		return accountError(ictx, "payer", payer, err)
	}
	if err := requireZero(ictx.ProgramID, vault); err != nil {
		return accountError(ictx, "vault", vault, err)
	}
	if err := requireMut(vault); err != nil {
		return accountError(ictx, "vault", vault, err)
	}
	if err := requireRentExempt(ictx.Rent(), vault); err != nil {
		return accountError(ictx, "vault", vault, err)
	}
	if err := requireVaultPool(vaultPool, accounts.Vault, args.VaultBump); err != nil {
		return accountError(ictx, "vault_pool", vaultPool, err)
	}
	if err := requireMut(flwrMint); err != nil {
		return accountError(ictx, "flwr_mint", flwrMint, err)
	}
	if err := requireMut(vaultPoolAta); err != nil {
		return accountError(ictx, "vault_pool_ata", vaultPoolAta, err)
	}

	// An account the system program still owns has not been created yet.
	if system.IsSystemOwned(vaultPoolAta.Owner) {
		log.Debugf("creating pool token account %s", base58.Encode(accounts.VaultPoolAta))

		create := solana.NewInstruction(
			token.AssociatedTokenAccountProgramKey,
			[]byte{},
			solana.NewAccountMeta(accounts.Payer, true),
			solana.NewAccountMeta(accounts.VaultPoolAta, false),
			solana.NewReadonlyAccountMeta(accounts.VaultPool, false),
			solana.NewReadonlyAccountMeta(accounts.FlwrMint, false),
			solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
			solana.NewReadonlyAccountMeta(token.ProgramKey, false),
			solana.NewReadonlyAccountMeta(system.RentSysVar, false),
		)
		if err := ictx.Invoke(create); err != nil {
			return err
		}
	} else {
		log.Debug("pool token account already exists")
	}

	state := &update_metadata.VaultAccount{
		Bump: args.VaultBump,
	}
	if err := state.MarshalInto(vault.Data); err != nil {
		return update_metadata.ErrorAccountDidNotSerialize
	}

	log.Debug("vault initialized")
	return nil
}
