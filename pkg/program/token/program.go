package token

import (
	"bytes"
	"math"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	token_binding "github.com/code-payments/metadata-vault/pkg/solana/token"
)

type program struct{}

// New returns the SPL token program, limited to account initialization and
// transfers between accounts of the same mint.
func New() runtime.Program {
	return &program{}
}

// Register makes the token program executable on r.
func Register(r *runtime.Runtime) {
	r.RegisterProgram(token_binding.ProgramKey, New())
}

func (p *program) Process(ictx *runtime.InvokeContext) error {
	ix := ictx.Instruction()

	command, err := token_binding.GetCommand(ix)
	if err != nil {
		return token_binding.ErrorInvalidInstruction
	}

	switch command {
	case token_binding.CommandInitializeAccount:
		return p.initializeAccount(ictx, ix)
	case token_binding.CommandTransfer:
		return p.transfer(ictx, ix)
	default:
		ictx.Log().Debugf("unsupported command %d", command)
		return token_binding.ErrorInvalidInstruction
	}
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/processor.rs#L81
func (p *program) initializeAccount(ictx *runtime.InvokeContext, ix solana.Instruction) error {
	if len(ix.Accounts) < 4 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	args, err := token_binding.DecompileInitializeAccount(ix)
	if err != nil {
		return solana.InstructionErrorInvalidArgument
	}

	info := ictx.Accounts[0]
	mintInfo := ictx.Accounts[1]
	rentInfo := ictx.Accounts[3]

	if !info.IsOwnedBy(ictx.ProgramID) {
		return solana.InstructionErrorIncorrectProgramID
	}

	var rent system.Rent
	if err := rent.Unmarshal(rentInfo.Data); err != nil {
		return solana.InstructionErrorInvalidArgument
	}

	var account token_binding.Account
	if !account.Unmarshal(info.Data) {
		return solana.InstructionErrorInvalidAccountData
	}
	if account.IsInitialized() {
		ictx.Log().Debugf("%s already initialized", base58.Encode(args.Account))
		return token_binding.ErrorAlreadyInUse
	}

	if !rent.IsExempt(info.Lamports, uint64(len(info.Data))) {
		return token_binding.ErrorNotRentExempt
	}

	if !mintInfo.IsOwnedBy(ictx.ProgramID) {
		return solana.InstructionErrorIncorrectProgramID
	}
	var mint token_binding.Mint
	if !mint.Unmarshal(mintInfo.Data) || !mint.IsInitialized {
		ictx.Log().Debugf("%s is not an initialized mint", base58.Encode(args.Mint))
		return token_binding.ErrorInvalidMint
	}

	account = token_binding.Account{
		Mint:  args.Mint,
		Owner: args.Owner,
		State: token_binding.AccountStateInitialized,
	}
	copy(info.Data, account.Marshal())
	return nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/processor.rs#L207
func (p *program) transfer(ictx *runtime.InvokeContext, ix solana.Instruction) error {
	if len(ix.Accounts) < 3 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	args, err := token_binding.DecompileTransfer(ix)
	if err != nil {
		return token_binding.ErrorInvalidInstruction
	}

	sourceInfo := ictx.Accounts[0]
	destinationInfo := ictx.Accounts[1]
	authorityInfo := ictx.Accounts[2]

	source, err := p.loadAccount(ictx, sourceInfo)
	if err != nil {
		return err
	}
	destination, err := p.loadAccount(ictx, destinationInfo)
	if err != nil {
		return err
	}

	if source.IsFrozen() || destination.IsFrozen() {
		return token_binding.ErrorAccountFrozen
	}
	if source.Amount < args.Amount {
		ictx.Log().Debugf("%s holds %d, needs %d", base58.Encode(args.Source), source.Amount, args.Amount)
		return token_binding.ErrorInsufficientFunds
	}
	if !bytes.Equal(source.Mint, destination.Mint) {
		return token_binding.ErrorMintMismatch
	}

	switch {
	case len(source.Delegate) > 0 && bytes.Equal(source.Delegate, args.Owner):
		if err := p.validateOwner(source.Delegate, authorityInfo); err != nil {
			return err
		}
		if source.DelegatedAmount < args.Amount {
			return token_binding.ErrorInsufficientFunds
		}
		source.DelegatedAmount -= args.Amount
		if source.DelegatedAmount == 0 {
			source.Delegate = nil
		}
	default:
		if err := p.validateOwner(source.Owner, authorityInfo); err != nil {
			return err
		}
	}

	// Self transfers are validated but move nothing.
	if bytes.Equal(sourceInfo.Key, destinationInfo.Key) {
		return nil
	}

	if destination.Amount > math.MaxUint64-args.Amount {
		return token_binding.ErrorOverflow
	}
	source.Amount -= args.Amount
	destination.Amount += args.Amount

	copy(sourceInfo.Data, source.Marshal())
	copy(destinationInfo.Data, destination.Marshal())
	return nil
}

func (p *program) loadAccount(ictx *runtime.InvokeContext, info *runtime.AccountInfo) (*token_binding.Account, error) {
	if !info.IsOwnedBy(ictx.ProgramID) {
		return nil, solana.InstructionErrorIncorrectProgramID
	}

	var account token_binding.Account
	if !account.Unmarshal(info.Data) {
		return nil, solana.InstructionErrorInvalidAccountData
	}
	if !account.IsInitialized() {
		return nil, token_binding.ErrorUninitializedState
	}
	return &account, nil
}

func (p *program) validateOwner(expected []byte, authority *runtime.AccountInfo) error {
	if !bytes.Equal(expected, authority.Key) {
		return token_binding.ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	return nil
}
