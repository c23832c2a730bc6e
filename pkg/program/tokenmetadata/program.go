package tokenmetadata

import (
	"bytes"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	token_metadata "github.com/code-payments/metadata-vault/pkg/solana/tokenmetadata"
)

type program struct{}

// New returns the token metadata program. Only UpdateMetadataAccountsV2 is
// supported.
func New() runtime.Program {
	return &program{}
}

// Register makes the token metadata program executable on r.
func Register(r *runtime.Runtime) {
	r.RegisterProgram(token_metadata.PROGRAM_ID, New())
}

func (p *program) Process(ictx *runtime.InvokeContext) error {
	if len(ictx.Data) == 0 {
		return token_metadata.ErrorInstructionUnpackError
	}

	switch token_metadata.Instruction(ictx.Data[0]) {
	case token_metadata.InstructionUpdateMetadataAccountsV2:
		return p.updateMetadataAccountsV2(ictx)
	default:
		ictx.Log().Debugf("unsupported instruction %d", ictx.Data[0])
		return token_metadata.ErrorInstructionUnpackError
	}
}

// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/master/token-metadata/program/src/processor.rs
func (p *program) updateMetadataAccountsV2(ictx *runtime.InvokeContext) error {
	if len(ictx.Accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	args, _, err := token_metadata.UpdateMetadataAccountsV2InstructionFromInstruction(ictx.Instruction())
	if err != nil {
		ictx.Log().WithError(err).Debug("invalid instruction")
		return token_metadata.ErrorInstructionUnpackError
	}

	metadataInfo := ictx.Accounts[0]
	authorityInfo := ictx.Accounts[1]

	if !metadataInfo.IsOwnedBy(ictx.ProgramID) {
		return token_metadata.ErrorIncorrectOwner
	}

	var metadata token_metadata.MetadataAccount
	if err := metadata.Unmarshal(metadataInfo.Data); err != nil {
		if len(metadataInfo.Data) == 0 || token_metadata.Key(metadataInfo.Data[0]) == token_metadata.KeyUninitialized {
			return token_metadata.ErrorUninitialized
		}
		return token_metadata.ErrorInvalidMetadataKey
	}

	if !bytes.Equal(metadata.UpdateAuthority, authorityInfo.Key) {
		ictx.Log().Debugf(
			"update authority is %s, got %s",
			base58.Encode(metadata.UpdateAuthority),
			base58.Encode(authorityInfo.Key),
		)
		return token_metadata.ErrorUpdateAuthorityIncorrect
	}
	if !authorityInfo.IsSigner {
		return token_metadata.ErrorUpdateAuthorityIsNotSigner
	}

	if args.Data != nil {
		if !metadata.IsMutable {
			return token_metadata.ErrorDataIsImmutable
		}
		if err := validateData(args.Data); err != nil {
			return err
		}

		metadata.Data = token_metadata.Data{
			Name:                 args.Data.Name,
			Symbol:               args.Data.Symbol,
			Uri:                  args.Data.Uri,
			SellerFeeBasisPoints: args.Data.SellerFeeBasisPoints,
			Creators:             args.Data.Creators,
		}
		metadata.Collection = args.Data.Collection
		metadata.Uses = args.Data.Uses
	}

	if len(args.NewUpdateAuthority) > 0 {
		metadata.UpdateAuthority = args.NewUpdateAuthority
	}

	if args.PrimarySaleHappened != nil {
		if !*args.PrimarySaleHappened && metadata.PrimarySaleHappened {
			return token_metadata.ErrorPrimarySaleCanOnlyBeFlipped
		}
		metadata.PrimarySaleHappened = *args.PrimarySaleHappened
	}

	if args.IsMutable != nil {
		if *args.IsMutable && !metadata.IsMutable {
			return token_metadata.ErrorIsMutableCanOnlyBeFlipped
		}
		metadata.IsMutable = *args.IsMutable
	}

	// Strings are stored at their maximum length.
	metadata.Data.Name = token_metadata.PadString(metadata.Data.Name, token_metadata.MaxNameLength)
	metadata.Data.Symbol = token_metadata.PadString(metadata.Data.Symbol, token_metadata.MaxSymbolLength)
	metadata.Data.Uri = token_metadata.PadString(metadata.Data.Uri, token_metadata.MaxUriLength)

	encoded, err := metadata.Marshal()
	if err != nil {
		return errors.Wrap(err, "error encoding metadata account")
	}
	if len(metadataInfo.Data) < len(encoded) {
		return solana.InstructionErrorAccountDataTooSmall
	}
	copy(metadataInfo.Data, encoded)

	ictx.Log().Debugf("updated %s", metadata.String())
	return nil
}

// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/master/token-metadata/program/src/assertions/metadata.rs
func validateData(data *token_metadata.DataV2) error {
	if len(data.Name) > token_metadata.MaxNameLength {
		return token_metadata.ErrorNameTooLong
	}
	if len(data.Symbol) > token_metadata.MaxSymbolLength {
		return token_metadata.ErrorSymbolTooLong
	}
	if len(data.Uri) > token_metadata.MaxUriLength {
		return token_metadata.ErrorUriTooLong
	}
	if data.SellerFeeBasisPoints > token_metadata.MaxSellerFeeBasisPoint {
		return token_metadata.ErrorInvalidBasisPoints
	}

	if data.Creators != nil {
		if len(data.Creators) > token_metadata.MaxCreatorLimit {
			return token_metadata.ErrorCreatorsTooLong
		}
		if len(data.Creators) == 0 {
			return token_metadata.ErrorCreatorsMustBeAtleastOne
		}
	}

	return nil
}
