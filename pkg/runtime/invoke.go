package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
)

// InvokeContext is everything a program sees while processing one
// instruction, either top level or through a cross program invocation.
type InvokeContext struct {
	ProgramID ed25519.PublicKey
	Data      []byte
	Accounts  []*AccountInfo

	txn    *transactionContext
	parent *InvokeContext
	depth  int
	pre    map[string]*Account
	log    *logrus.Entry
}

func (c *InvokeContext) Context() context.Context {
	return c.txn.ctx
}

// Log returns a logger scoped to the executing program.
func (c *InvokeContext) Log() *logrus.Entry {
	return c.log
}

// Clock returns the clock sysvar for the executing transaction.
func (c *InvokeContext) Clock() system.Clock {
	return c.txn.clock
}

// Rent returns the rent sysvar.
func (c *InvokeContext) Rent() system.Rent {
	return c.txn.rent
}

// Depth is the invoke stack height, starting at 1 for top level instructions.
func (c *InvokeContext) Depth() int {
	return c.depth
}

// Instruction rebuilds the instruction being processed, so programs can reuse
// the decompilers of their client bindings.
func (c *InvokeContext) Instruction() solana.Instruction {
	metas := make([]solana.AccountMeta, len(c.Accounts))
	for i, info := range c.Accounts {
		metas[i] = solana.AccountMeta{
			PublicKey:  info.Key,
			IsSigner:   info.IsSigner,
			IsWritable: info.IsWritable,
		}
	}

	return solana.Instruction{
		Program:  c.ProgramID,
		Accounts: metas,
		Data:     c.Data,
	}
}

// Invoke runs ix as a cross program invocation. Every account ix references,
// including its program, must have been passed to the caller. Each entry of
// signerSeeds derives an address owned by the caller that is treated as a
// signer, which is how program derived addresses sign.
func (c *InvokeContext) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if c.depth >= c.txn.maxDepth {
		return solana.InstructionErrorCallDepth
	}

	var signers []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		signer, err := solana.CreateProgramAddress(c.ProgramID, seeds...)
		if err != nil {
			return solana.InstructionErrorInvalidSeeds
		}
		signers = append(signers, signer)
	}

	program := c.findAccount(ix.Program)
	if program == nil {
		c.log.Debugf("program %s is not in the account list", base58.Encode(ix.Program))
		return solana.InstructionErrorMissingAccount
	}
	if !program.Executable {
		return solana.InstructionErrorAccountNotExecutable
	}
	// A program may call itself directly, but may not be re-entered through
	// another program.
	if !bytes.Equal(c.ProgramID, ix.Program) {
		for frame := c.parent; frame != nil; frame = frame.parent {
			if bytes.Equal(frame.ProgramID, ix.Program) {
				return solana.InstructionErrorReentrancyNotAllowed
			}
		}
	}

	infos := make([]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		caller := c.findAccount(meta.PublicKey)
		if caller == nil {
			c.log.Debugf("account %s is not in the account list", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorMissingAccount
		}

		if meta.IsWritable && !c.isWritable(meta.PublicKey) {
			c.log.Debugf("%s writable privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}
		if meta.IsSigner && !c.isSigner(meta.PublicKey) && !containsKey(signers, meta.PublicKey) {
			c.log.Debugf("%s signer privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}

		infos[i] = &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    caller.Account,
		}
	}

	// The caller's own changes to the shared accounts must be legal before
	// the callee sees them.
	if err := c.verify(infos, false); err != nil {
		return err
	}
	c.snapshot(infos)

	callee := c.txn.newInvokeContext(ix.Program, ix.Data, infos, c)
	if err := c.txn.process(callee); err != nil {
		return err
	}

	c.snapshot(infos)
	return nil
}

func (c *InvokeContext) findAccount(key ed25519.PublicKey) *AccountInfo {
	for _, info := range c.Accounts {
		if bytes.Equal(info.Key, key) {
			return info
		}
	}
	return nil
}

func (c *InvokeContext) isWritable(key ed25519.PublicKey) bool {
	for _, info := range c.Accounts {
		if info.IsWritable && bytes.Equal(info.Key, key) {
			return true
		}
	}
	return false
}

func (c *InvokeContext) isSigner(key ed25519.PublicKey) bool {
	for _, info := range c.Accounts {
		if info.IsSigner && bytes.Equal(info.Key, key) {
			return true
		}
	}
	return false
}

// snapshot records the current state of infos as the baseline the executing
// program is verified against.
func (c *InvokeContext) snapshot(infos []*AccountInfo) {
	if c.pre == nil {
		c.pre = make(map[string]*Account)
	}
	for _, info := range infos {
		c.pre[base58.Encode(info.Key)] = info.Account.Clone()
	}
}

// verify checks that every change the executing program made to infos since
// the last snapshot is one it was allowed to make.
func (c *InvokeContext) verify(infos []*AccountInfo, checkBalance bool) error {
	var preTotal, postTotal uint64

	seen := make(map[string]struct{})
	for _, info := range infos {
		address := base58.Encode(info.Key)
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}

		pre, ok := c.pre[address]
		if !ok {
			continue
		}

		if err := verifyAccount(c.ProgramID, pre, info.Account, c.isWritable(info.Key)); err != nil {
			c.log.Debugf("%s failed verification: %v", address, err)
			return err
		}

		preTotal += pre.Lamports
		postTotal += info.Lamports
	}

	if checkBalance && preTotal != postTotal {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/program-runtime/src/pre_account.rs#L40
func verifyAccount(program ed25519.PublicKey, pre, post *Account, isWritable bool) error {
	isOwner := pre.IsOwnedBy(program)

	if !bytes.Equal(pre.Owner, post.Owner) {
		if !isOwner || !isWritable || pre.Executable || !isZeroInitialized(post.Data) {
			return solana.InstructionErrorModifiedProgramID
		}
	}

	if pre.Lamports > post.Lamports && !isOwner {
		return solana.InstructionErrorExternalAccountLamportSpend
	}

	if pre.Lamports != post.Lamports {
		if !isWritable {
			return solana.InstructionErrorReadonlyLamportChange
		}
		if pre.Executable {
			return solana.InstructionErrorExecutableLamportChange
		}
	}

	if len(pre.Data) != len(post.Data) && (!isWritable || !isOwner) {
		return solana.InstructionErrorAccountDataSizeChanged
	}

	if !bytes.Equal(pre.Data, post.Data) {
		if pre.Executable {
			return solana.InstructionErrorExecutableDataModified
		}
		if !isWritable {
			return solana.InstructionErrorReadonlyDataModified
		}
		if !isOwner {
			return solana.InstructionErrorExternalAccountDataModified
		}
	}

	if pre.Executable != post.Executable {
		return solana.InstructionErrorExecutableModified
	}

	return nil
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, candidate := range keys {
		if bytes.Equal(candidate, key) {
			return true
		}
	}
	return false
}
