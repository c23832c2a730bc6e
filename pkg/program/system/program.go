package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	system_binding "github.com/code-payments/metadata-vault/pkg/solana/system"
)

// ProgramKey is the address the program is registered at.
var ProgramKey = ed25519.PublicKey(system_binding.ProgramKey[:])

type program struct{}

// New returns the system program. It supports account creation and lamport
// transfers.
func New() runtime.Program {
	return &program{}
}

// Register makes the system program executable on r.
func Register(r *runtime.Runtime) {
	r.RegisterProgram(ProgramKey, New())
}

func (p *program) Process(ictx *runtime.InvokeContext) error {
	ix := ictx.Instruction()

	command, err := system_binding.GetCommand(ix)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	switch command {
	case system_binding.CommandCreateAccount:
		return p.createAccount(ictx, ix)
	case system_binding.CommandTransfer:
		return p.transfer(ictx, ix)
	default:
		ictx.Log().Debugf("unsupported command %d", command)
		return solana.InstructionErrorInvalidInstructionData
	}
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/programs/system/src/system_processor.rs#L146
func (p *program) createAccount(ictx *runtime.InvokeContext, ix solana.Instruction) error {
	if len(ix.Accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	args, err := system_binding.DecompileCreateAccount(ix)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	funder := ictx.Accounts[0]
	to := ictx.Accounts[1]

	if !to.IsSigner {
		ictx.Log().Debugf("create account: %s must sign", base58.Encode(args.Address))
		return solana.InstructionErrorMissingRequiredSignature
	}

	// An account with lamports, data or an owner is considered in use.
	if to.Lamports > 0 || len(to.Data) > 0 || !system_binding.IsSystemOwned(to.Owner) {
		ictx.Log().Debugf("create account: %s already in use", base58.Encode(args.Address))
		return system_binding.ErrorAccountAlreadyInUse
	}

	if args.Size > system_binding.MaxPermittedDataLength {
		return system_binding.ErrorInvalidAccountDataLength
	}

	if err := p.debit(ictx, funder, args.Lamports); err != nil {
		return err
	}

	to.Data = make([]byte, args.Size)
	to.Owner = append(ed25519.PublicKey(nil), args.Owner...)
	to.Lamports += args.Lamports
	return nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/programs/system/src/system_processor.rs#L181
func (p *program) transfer(ictx *runtime.InvokeContext, ix solana.Instruction) error {
	if len(ix.Accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	args, err := system_binding.DecompileTransfer(ix)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	from := ictx.Accounts[0]
	to := ictx.Accounts[1]

	if err := p.debit(ictx, from, args.Lamports); err != nil {
		return err
	}
	to.Lamports += args.Lamports
	return nil
}

func (p *program) debit(ictx *runtime.InvokeContext, from *runtime.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		ictx.Log().Debugf("%s must sign", base58.Encode(from.Key))
		return solana.InstructionErrorMissingRequiredSignature
	}
	if len(from.Data) > 0 {
		ictx.Log().Debugf("%s carries data", base58.Encode(from.Key))
		return solana.InstructionErrorInvalidArgument
	}
	if from.Lamports < lamports {
		ictx.Log().Debugf("%s has %d lamports, needs %d", base58.Encode(from.Key), from.Lamports, lamports)
		return system_binding.ErrorResultWithNegativeLamports
	}

	from.Lamports -= lamports
	return nil
}
