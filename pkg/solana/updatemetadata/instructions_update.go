package updatemetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

var UpdateInstructionDiscriminator = anchorDiscriminator("global", "update")

const (
	UpdateInstructionAccountsCount = 13
)

type UpdateInstructionArgs struct {
	IsUpdate bool
	Spec     bool
	NewUri   string
}

type UpdateInstructionAccounts struct {
	Claimer         ed25519.PublicKey
	NftMint         ed25519.PublicKey
	Metadata        ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	Vault           ed25519.PublicKey
	VaultPool       ed25519.PublicKey
	FlwrMint        ed25519.PublicKey
	ClaimerAta      ed25519.PublicKey
	VaultPoolAta    ed25519.PublicKey

	// Defaults to TOKEN_METADATA_PROGRAM_ID when unset.
	TokenMetadataProgram ed25519.PublicKey
}

func getUpdateInstructionArgsSize(args *UpdateInstructionArgs) int {
	return (1 + // is_update
		1 + // spec
		binary.StringSize(args.NewUri)) // new_uri
}

func NewUpdateInstruction(
	accounts *UpdateInstructionAccounts,
	args *UpdateInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+getUpdateInstructionArgsSize(args))

	putDiscriminator(data, UpdateInstructionDiscriminator, &offset)
	binary.PutBool(data[offset:], args.IsUpdate, &offset)
	binary.PutBool(data[offset:], args.Spec, &offset)
	binary.PutString(data[offset:], args.NewUri, &offset)

	tokenMetadataProgram := accounts.TokenMetadataProgram
	if len(tokenMetadataProgram) == 0 {
		tokenMetadataProgram = TOKEN_METADATA_PROGRAM_ID
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Claimer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.NftMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
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
				PublicKey:  accounts.ClaimerAta,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.VaultPoolAta,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  tokenMetadataProgram,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
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

func UpdateInstructionFromInstruction(ix solana.Instruction) (*UpdateInstructionArgs, *UpdateInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !ix.IsProgram(PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}

	if len(ix.Data) < discriminatorSize+2 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) < UpdateInstructionAccountsCount {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(ix.Data, &discriminator, &offset)

	if !bytes.Equal(discriminator, UpdateInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var args UpdateInstructionArgs
	var accounts UpdateInstructionAccounts

	// Instruction Args
	if err := binary.GetBool(ix.Data[offset:], &args.IsUpdate, &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if err := binary.GetBool(ix.Data[offset:], &args.Spec, &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if err := binary.GetString(ix.Data[offset:], &args.NewUri, &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}

	// Instruction Accounts
	accounts.Claimer = ix.Accounts[0].PublicKey
	accounts.NftMint = ix.Accounts[1].PublicKey
	accounts.Metadata = ix.Accounts[2].PublicKey
	accounts.UpdateAuthority = ix.Accounts[3].PublicKey
	accounts.Vault = ix.Accounts[4].PublicKey
	accounts.VaultPool = ix.Accounts[5].PublicKey
	accounts.FlwrMint = ix.Accounts[6].PublicKey
	accounts.ClaimerAta = ix.Accounts[7].PublicKey
	accounts.VaultPoolAta = ix.Accounts[8].PublicKey
	accounts.TokenMetadataProgram = ix.Accounts[10].PublicKey

	return &args, &accounts, nil
}
