package associatedtoken

import (
	"bytes"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	"github.com/code-payments/metadata-vault/pkg/solana/token"
)

const (
	systemProgramIndex  = 4
	tokenProgramIndex   = 5
	minimumAccountCount = 6
)

type program struct{}

// New returns the associated token account program. Accounts are created
// through the system and token programs, which must be registered as well.
func New() runtime.Program {
	return &program{}
}

// Register makes the associated token account program executable on r.
func Register(r *runtime.Runtime) {
	r.RegisterProgram(token.AssociatedTokenAccountProgramKey, New())
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/0639953c7dd0f5228c3ceda3ba68fece3b46ff1d/associated-token-account/program/src/processor.rs
func (p *program) Process(ictx *runtime.InvokeContext) error {
	if len(ictx.Accounts) < minimumAccountCount {
		return solana.InstructionErrorNotEnoughAccountKeys
	}
	if !bytes.Equal(ictx.Accounts[systemProgramIndex].Key, system.ProgramKey[:]) {
		return solana.InstructionErrorIncorrectProgramID
	}
	if !bytes.Equal(ictx.Accounts[tokenProgramIndex].Key, token.ProgramKey) {
		return solana.InstructionErrorIncorrectProgramID
	}

	args, err := token.DecompileCreateAssociatedAccount(ictx.Instruction())
	if err != nil {
		ictx.Log().WithError(err).Debug("invalid instruction")
		return solana.InstructionErrorInvalidInstructionData
	}

	address, bump, err := token.GetAssociatedAccountAndBump(args.Owner, args.Mint)
	if err != nil {
		return solana.InstructionErrorInvalidSeeds
	}
	if !bytes.Equal(address, args.Address) {
		ictx.Log().Debugf("expected associated account %s, got %s", base58.Encode(address), base58.Encode(args.Address))
		return solana.InstructionErrorInvalidSeeds
	}

	associated := ictx.Accounts[1]
	if args.Idempotent && associated.IsOwnedBy(token.ProgramKey) {
		var existing token.Account
		if !existing.Unmarshal(associated.Data) {
			return solana.InstructionErrorInvalidAccountData
		}
		if !bytes.Equal(existing.Owner, args.Owner) || !bytes.Equal(existing.Mint, args.Mint) {
			return solana.InstructionErrorIllegalOwner
		}
		return nil
	}

	ictx.Log().Debugf("creating associated account %s", base58.Encode(address))

	seeds := [][]byte{
		args.Owner,
		token.ProgramKey,
		args.Mint,
		{bump},
	}

	create := system.CreateAccount(
		args.Subsidizer,
		address,
		token.ProgramKey,
		ictx.Rent().MinimumBalance(token.AccountSize),
		token.AccountSize,
	)
	if err := ictx.Invoke(create, seeds); err != nil {
		return err
	}

	return ictx.Invoke(token.InitializeAccount(address, args.Mint, args.Owner))
}
