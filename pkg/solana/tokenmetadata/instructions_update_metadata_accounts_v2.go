package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

type Instruction uint8

const (
	InstructionUpdateMetadataAccountsV2 Instruction = 15
)

type UpdateMetadataAccountsV2InstructionArgs struct {
	Data                *DataV2
	NewUpdateAuthority  ed25519.PublicKey
	PrimarySaleHappened *bool
	IsMutable           *bool
}

type UpdateMetadataAccountsV2InstructionAccounts struct {
	Metadata        ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

type borshUpdateMetadataAccountsV2Args struct {
	Data                *borshDataV2
	UpdateAuthority     *[32]byte
	PrimarySaleHappened *bool
	IsMutable           *bool
}

func NewUpdateMetadataAccountsV2Instruction(
	accounts *UpdateMetadataAccountsV2InstructionAccounts,
	args *UpdateMetadataAccountsV2InstructionArgs,
) (solana.Instruction, error) {
	raw := borshUpdateMetadataAccountsV2Args{
		Data:                toBorshDataV2(args.Data),
		PrimarySaleHappened: args.PrimarySaleHappened,
		IsMutable:           args.IsMutable,
	}
	if len(args.NewUpdateAuthority) > 0 {
		key := toKey32(args.NewUpdateAuthority)
		raw.UpdateAuthority = &key
	}

	encoded, err := borsh.Serialize(raw)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to encode instruction args")
	}

	data := make([]byte, 1+len(encoded))
	data[0] = byte(InstructionUpdateMetadataAccountsV2)
	copy(data[1:], encoded)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
		},
	}, nil
}

// UpdateMetadataAccountsV2InstructionFromInstruction decodes an instruction
// built by NewUpdateMetadataAccountsV2Instruction. The program id is checked
// by the caller, as the metadata program can be deployed at other addresses.
func UpdateMetadataAccountsV2InstructionFromInstruction(ix solana.Instruction) (*UpdateMetadataAccountsV2InstructionArgs, *UpdateMetadataAccountsV2InstructionAccounts, error) {
	if len(ix.Data) < 1 || Instruction(ix.Data[0]) != InstructionUpdateMetadataAccountsV2 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) < 2 {
		return nil, nil, ErrInvalidInstructionData
	}

	args, err := getUpdateMetadataAccountsV2Args(ix.Data[1:])
	if err != nil {
		return nil, nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	accounts := &UpdateMetadataAccountsV2InstructionAccounts{
		Metadata:        ix.Accounts[0].PublicKey,
		UpdateAuthority: ix.Accounts[1].PublicKey,
	}

	return args, accounts, nil
}

func getUpdateMetadataAccountsV2Args(src []byte) (*UpdateMetadataAccountsV2InstructionArgs, error) {
	var offset int
	var args UpdateMetadataAccountsV2InstructionArgs

	var hasData bool
	if err := binary.GetOption(src, &hasData, &offset); err != nil {
		return nil, err
	}
	if hasData {
		args.Data = &DataV2{}
		if err := getDataV2(src[offset:], args.Data, &offset); err != nil {
			return nil, err
		}
	}

	var hasUpdateAuthority bool
	if err := binary.GetOption(src[offset:], &hasUpdateAuthority, &offset); err != nil {
		return nil, err
	}
	if hasUpdateAuthority {
		if err := binary.GetKey32Checked(src[offset:], &args.NewUpdateAuthority, &offset); err != nil {
			return nil, err
		}
	}

	if err := getOptionalBool(src[offset:], &args.PrimarySaleHappened, &offset); err != nil {
		return nil, err
	}
	if err := getOptionalBool(src[offset:], &args.IsMutable, &offset); err != nil {
		return nil, err
	}

	if offset != len(src) {
		return nil, errors.New("unexpected trailing instruction data")
	}
	return &args, nil
}
