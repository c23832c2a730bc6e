package updatemetadata

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
	"github.com/code-payments/metadata-vault/pkg/solana/tokenmetadata"
	update_metadata "github.com/code-payments/metadata-vault/pkg/solana/updatemetadata"
)

// update charges the update fee when registering, rewrites the mint's
// metadata uri, then records or removes the mint in the vault.
func (p *program) update(ictx *runtime.InvokeContext) error {
	if len(ictx.Accounts) < update_metadata.UpdateInstructionAccountsCount {
		return update_metadata.ErrorAccountNotEnoughKeys
	}

	args, accounts, err := update_metadata.UpdateInstructionFromInstruction(ictx.Instruction())
	if err != nil {
		return update_metadata.ErrorInstructionDidNotDeserialize
	}

	var (
		claimer         = ictx.Accounts[0]
		nftMint         = ictx.Accounts[1]
		metadata        = ictx.Accounts[2]
		updateAuthority = ictx.Accounts[3]
		vault           = ictx.Accounts[4]
		vaultPool       = ictx.Accounts[5]
		flwrMint        = ictx.Accounts[6]
		claimerAta      = ictx.Accounts[7]
		vaultPoolAta    = ictx.Accounts[8]
		tokenProgram    = ictx.Accounts[9]
		rent            = ictx.Accounts[11]
		systemProgram   = ictx.Accounts[12]
	)

	log := ictx.Log().WithFields(logrus.Fields{
		"method":    "update",
		"vault":     base58.Encode(accounts.Vault),
		"mint":      base58.Encode(accounts.NftMint),
		"is_update": args.IsUpdate,
		"spec":      args.Spec,
	})

	// Account types
	if err := requireSigner(claimer); err != nil {
		return accountError(ictx, "claimer", claimer, err)
	}
	if _, err := loadMint(nftMint); err != nil {
		return accountError(ictx, "nft_mint", nftMint, err)
	}
	if err := requireSigner(updateAuthority); err != nil {
		return accountError(ictx, "update_authority", updateAuthority, err)
	}
	state, err := loadVault(ictx.ProgramID, vault)
	if err != nil {
		return accountError(ictx, "vault", vault, err)
	}
	if _, err := loadMint(flwrMint); err != nil {
		return accountError(ictx, "flwr_mint", flwrMint, err)
	}
	if _, err := loadTokenAccount(claimerAta); err != nil {
		return accountError(ictx, "claimer_ata", claimerAta, err)
	}
	if _, err := loadTokenAccount(vaultPoolAta); err != nil {
		return accountError(ictx, "vault_pool_ata", vaultPoolAta, err)
	}
	if err := requireProgram(tokenProgram, token.ProgramKey); err != nil {
		return accountError(ictx, "token_program", tokenProgram, err)
	}
	if err := requireSysvar(rent, system.RentSysVar); err != nil {
		return accountError(ictx, "rent", rent, err)
	}
	if err := requireProgram(systemProgram, system.ProgramKey[:]); err != nil {
		return accountError(ictx, "system_program", systemProgram, err)
	}

	// Constraints
	for _, writable := range []struct {
		name string
		info *runtime.AccountInfo
	}{
		{"claimer", claimer},
		{"nft_mint", nftMint},
		{"metadata", metadata},
		{"update_authority", updateAuthority},
		{"vault", vault},
	} {
		if err := requireMut(writable.info); err != nil {
			return accountError(ictx, writable.name, writable.info, err)
		}
	}
	if err := requireVaultPool(vaultPool, accounts.Vault, state.Bump); err != nil {
		return accountError(ictx, "vault_pool", vaultPool, err)
	}
	for _, writable := range []struct {
		name string
		info *runtime.AccountInfo
	}{
		{"flwr_mint", flwrMint},
		{"claimer_ata", claimerAta},
		{"vault_pool_ata", vaultPoolAta},
	} {
		if err := requireMut(writable.info); err != nil {
			return accountError(ictx, writable.name, writable.info, err)
		}
	}

	// Fee
	if args.IsUpdate {
		fee := update_metadata.GetUpdateFee(args.Spec)
		log.Debugf("charging fee of %d", fee)

		transfer := token.Transfer(accounts.ClaimerAta, accounts.VaultPoolAta, accounts.Claimer, fee)
		if err := ictx.Invoke(transfer); err != nil {
			return err
		}
	}

	// Metadata rewrite
	var current tokenmetadata.MetadataAccount
	if err := current.Unmarshal(metadata.Data); err != nil {
		log.WithError(err).Debug("invalid metadata account")
		return solana.InstructionErrorInvalidAccountData
	}

	data := current.ToDataV2()
	data.Uri = args.NewUri

	rewrite, err := tokenmetadata.NewUpdateMetadataAccountsV2Instruction(
		&tokenmetadata.UpdateMetadataAccountsV2InstructionAccounts{
			Metadata:        accounts.Metadata,
			UpdateAuthority: accounts.UpdateAuthority,
		},
		&tokenmetadata.UpdateMetadataAccountsV2InstructionArgs{
			Data: &data,
		},
	)
	if err != nil {
		return err
	}
	rewrite.Program = accounts.TokenMetadataProgram

	if err := ictx.Invoke(rewrite); err != nil {
		return err
	}

	// Bookkeeping
	if err := p.recordUpdate(ictx, state, accounts.NftMint, args.IsUpdate); err != nil {
		return err
	}
	if err := state.MarshalInto(vault.Data); err != nil {
		return update_metadata.ErrorAccountDidNotSerialize
	}

	log.WithField("entries", len(state.MintAccounts)).Debug("vault updated")
	return nil
}

func (p *program) recordUpdate(ictx *runtime.InvokeContext, state *update_metadata.VaultAccount, mint ed25519.PublicKey, isUpdate bool) error {
	if !isUpdate {
		if _, err := state.Remove(mint); err != nil {
			return vaultError(err)
		}
		return nil
	}

	now := ictx.Clock().UnixTimestamp
	if now < 0 {
		return update_metadata.ErrorInvalidClock
	}

	if err := state.Upsert(mint, uint64(now)); err != nil {
		return vaultError(err)
	}
	return nil
}

func vaultError(err error) error {
	switch err {
	case update_metadata.ErrVaultLengthMismatch:
		return update_metadata.ErrorVaultLengthMismatch
	case update_metadata.ErrVaultFull:
		return update_metadata.ErrorAccountDidNotSerialize
	default:
		return err
	}
}
