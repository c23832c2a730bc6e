package updatemetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

var InitializeVaultInstructionDiscriminator = anchorDiscriminator("global", "initialize_vault")

const (
	InitializeVaultInstructionArgsSize = 1 // vault_bump

	InitializeVaultInstructionAccountsCount = 9
)

type InitializeVaultInstructionArgs struct {
	VaultBump uint8
}

type InitializeVaultInstructionAccounts struct {
	Payer        ed25519.PublicKey
	Vault        ed25519.PublicKey
	VaultPool    ed25519.PublicKey
	FlwrMint     ed25519.PublicKey
	VaultPoolAta ed25519.PublicKey
}

func NewInitializeVaultInstruction(
	accounts *InitializeVaultInstructionAccounts,
	args *InitializeVaultInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+InitializeVaultInstructionArgsSize)

	putDiscriminator(data, InitializeVaultInstructionDiscriminator, &offset)
	binary.PutUint8(data[offset:], args.VaultBump, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.VaultPool,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.FlwrMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.VaultPoolAta,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func InitializeVaultInstructionFromInstruction(ix solana.Instruction) (*InitializeVaultInstructionArgs, *InitializeVaultInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !ix.IsProgram(PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}

	if len(ix.Data) < discriminatorSize+InitializeVaultInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) < InitializeVaultInstructionAccountsCount {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(ix.Data, &discriminator, &offset)

	if !bytes.Equal(discriminator, InitializeVaultInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var args InitializeVaultInstructionArgs
	var accounts InitializeVaultInstructionAccounts

	// Instruction Args
	binary.GetUint8(ix.Data[offset:], &args.VaultBump, &offset)

	// Instruction Accounts
	accounts.Payer = ix.Accounts[0].PublicKey
	accounts.Vault = ix.Accounts[1].PublicKey
	accounts.VaultPool = ix.Accounts[2].PublicKey
	accounts.FlwrMint = ix.Accounts[3].PublicKey
	accounts.VaultPoolAta = ix.Accounts[4].PublicKey

	return &args, &accounts, nil
}
