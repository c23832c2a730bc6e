package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"
	"sync/atomic"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
	"github.com/code-payments/metadata-vault/pkg/solana"
	"github.com/code-payments/metadata-vault/pkg/solana/system"
	xsync "github.com/code-payments/metadata-vault/pkg/sync"
)

// Runtime executes transactions against programs registered in-process,
// committing their account changes to an accounts.Store.
//
// Transactions may be executed concurrently. Those that share a writable
// account are serialized through striped account locks, acquired for every
// account in the message before any of them is loaded.
type Runtime struct {
	log   *logrus.Entry
	conf  *conf
	store accounts.Store
	clock Clock
	rent  system.Rent
	locks *xsync.StripedLock

	programsMu sync.RWMutex
	programs   map[string]Program

	slot uint64
}

func New(store accounts.Store, clock Clock, configProvider ConfigProvider) *Runtime {
	conf := configProvider()

	lockStripes := conf.lockStripes.Get(context.Background())
	if lockStripes == 0 {
		lockStripes = defaultLockStripes
	}

	return &Runtime{
		log:      logrus.StandardLogger().WithField("type", "runtime"),
		conf:     conf,
		store:    store,
		clock:    clock,
		rent:     system.DefaultRent(),
		locks:    xsync.NewStripedLock(uint(lockStripes)),
		programs: make(map[string]Program),
	}
}

// RegisterProgram makes program executable at id. Registering an id twice
// replaces the previous program.
func (r *Runtime) RegisterProgram(id ed25519.PublicKey, program Program) {
	r.programsMu.Lock()
	defer r.programsMu.Unlock()

	r.programs[base58.Encode(id)] = program
}

func (r *Runtime) getProgram(id ed25519.PublicKey) (Program, bool) {
	r.programsMu.RLock()
	defer r.programsMu.RUnlock()

	program, ok := r.programs[base58.Encode(id)]
	return program, ok
}

// Slot is the slot of the most recently started transaction.
func (r *Runtime) Slot() uint64 {
	return atomic.LoadUint64(&r.slot)
}

// Rent is the rent sysvar programs execute with.
func (r *Runtime) Rent() system.Rent {
	return r.rent
}

// GetAccount returns the committed state of an account. Accounts that were
// never written, or were closed, return accounts.ErrAccountNotFound.
func (r *Runtime) GetAccount(ctx context.Context, key ed25519.PublicKey) (*Account, error) {
	record, err := r.store.Get(ctx, base58.Encode(key))
	if err != nil {
		return nil, err
	}

	account, err := fromRecord(record)
	if err != nil {
		return nil, err
	}
	if account.Lamports == 0 {
		return nil, accounts.ErrAccountNotFound
	}
	return account, nil
}

// SetAccount writes account state directly, outside of any transaction. It is
// meant for seeding genesis state.
func (r *Runtime) SetAccount(ctx context.Context, key ed25519.PublicKey, account *Account) error {
	address := base58.Encode(key)

	unlock := r.locks.AcquireAll([][]byte{key}, nil)
	defer unlock()

	record := toRecord(address, account.Clone(), r.Slot())
	return r.store.Save(ctx, record)
}

// ExecuteTransaction runs every instruction in txn in order. Either all
// account changes are committed, or none are.
//
// Failures attributable to the transaction are returned as a
// *solana.TransactionError. Other errors come from the account store.
func (r *Runtime) ExecuteTransaction(ctx context.Context, txn *solana.Transaction) error {
	log := r.log.WithField("method", "ExecuteTransaction")

	if len(txn.Signatures) == 0 || len(txn.Message.Instructions) == 0 {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	log = log.WithField("signature", base58.Encode(txn.Signature()))

	if uint64(len(txn.Message.Instructions)) > r.conf.maxInstructions.Get(ctx) {
		log.Debug("too many instructions")
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	if err := txn.VerifySignatures(); err != nil {
		log.WithError(err).Debug("signature verification failed")
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	instructions, err := txn.Message.DecompileInstructions()
	if err != nil {
		log.WithError(err).Debug("invalid message")
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	for i := range txn.Message.Accounts {
		for j := i + 1; j < len(txn.Message.Accounts); j++ {
			if bytes.Equal(txn.Message.Accounts[i], txn.Message.Accounts[j]) {
				return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
			}
		}
	}

	var writable, readonly [][]byte
	for i, key := range txn.Message.Accounts {
		if txn.Message.IsWritable(i) && !r.isReadonlyKey(key) {
			writable = append(writable, key)
		} else {
			readonly = append(readonly, key)
		}
	}

	unlock := r.locks.AcquireAll(writable, readonly)
	defer unlock()

	slot := atomic.AddUint64(&r.slot, 1)
	log = log.WithField("slot", slot)

	tc := r.newTransactionContext(ctx, slot, log)
	for _, key := range txn.Message.Accounts {
		if _, err := tc.loadAccount(key); err != nil {
			log.WithError(err).Warn("failure loading account")
			return err
		}
	}

	for i, ix := range instructions {
		program, err := tc.loadAccount(ix.Program)
		if err != nil {
			return err
		}
		if !program.Executable {
			log.Debugf("program %s is not executable", base58.Encode(ix.Program))
			return solana.NewTransactionError(solana.TransactionErrorInvalidProgramForExecution)
		}

		infos := make([]*AccountInfo, len(ix.Accounts))
		for j, meta := range ix.Accounts {
			account, err := tc.loadAccount(meta.PublicKey)
			if err != nil {
				return err
			}

			infos[j] = &AccountInfo{
				Key:        meta.PublicKey,
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable && !tc.overlay.isVirtual(meta.PublicKey),
				Account:    account,
			}
		}

		ictx := tc.newInvokeContext(ix.Program, ix.Data, infos, nil)
		if err := tc.process(ictx); err != nil {
			log.WithError(err).WithField("instruction", i).Debug("instruction failed")

			txErr, convErr := solana.TransactionErrorFromInstructionError(solana.NewInstructionError(i, err))
			if convErr != nil {
				return errors.Wrap(convErr, "error converting instruction error")
			}
			return txErr
		}
	}

	if err := tc.overlay.commit(ctx); err != nil {
		log.WithError(err).Warn("failure committing account changes")
		return errors.Wrap(err, "error committing account changes")
	}

	log.Debug("transaction committed")
	return nil
}

func (r *Runtime) isReadonlyKey(key ed25519.PublicKey) bool {
	if _, ok := r.getProgram(key); ok {
		return true
	}
	return bytes.Equal(key, system.RentSysVar) || bytes.Equal(key, system.ClockSysVar)
}

type transactionContext struct {
	ctx      context.Context
	runtime  *Runtime
	overlay  *overlay
	clock    system.Clock
	rent     system.Rent
	maxDepth int
	log      *logrus.Entry
}

func (r *Runtime) newTransactionContext(ctx context.Context, slot uint64, log *logrus.Entry) *transactionContext {
	slotsPerEpoch := r.conf.slotsPerEpoch.Get(ctx)
	if slotsPerEpoch == 0 {
		slotsPerEpoch = defaultSlotsPerEpoch
	}
	epoch := slot / slotsPerEpoch

	return &transactionContext{
		ctx:     ctx,
		runtime: r,
		overlay: newOverlay(r.store, slot),
		clock: system.Clock{
			Slot:                slot,
			Epoch:               epoch,
			LeaderScheduleEpoch: epoch + 1,
			UnixTimestamp:       r.clock.UnixTimestamp(),
		},
		rent:     r.rent,
		maxDepth: int(r.conf.maxInvokeDepth.Get(ctx)),
		log:      log,
	}
}

// loadAccount resolves key to its working account. Sysvars and registered
// programs are synthesized, everything else comes from the store.
func (t *transactionContext) loadAccount(key ed25519.PublicKey) (*Account, error) {
	switch {
	case bytes.Equal(key, system.RentSysVar):
		return t.overlay.putVirtual(key, t.sysvarAccount(t.rent.Marshal())), nil
	case bytes.Equal(key, system.ClockSysVar):
		return t.overlay.putVirtual(key, t.sysvarAccount(t.clock.Marshal())), nil
	}

	if _, ok := t.runtime.getProgram(key); ok {
		return t.overlay.putVirtual(key, &Account{
			Lamports:   1,
			Owner:      append(ed25519.PublicKey(nil), NativeLoader...),
			Executable: true,
		}), nil
	}

	return t.overlay.load(t.ctx, key)
}

func (t *transactionContext) sysvarAccount(data []byte) *Account {
	return &Account{
		Lamports: t.rent.MinimumBalance(uint64(len(data))),
		Data:     data,
		Owner:    append(ed25519.PublicKey(nil), system.SysvarOwner...),
	}
}

func (t *transactionContext) newInvokeContext(program ed25519.PublicKey, data []byte, infos []*AccountInfo, parent *InvokeContext) *InvokeContext {
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}

	return &InvokeContext{
		ProgramID: program,
		Data:      data,
		Accounts:  infos,
		txn:       t,
		parent:    parent,
		depth:     depth,
		log: t.log.WithFields(logrus.Fields{
			"program": base58.Encode(program),
			"depth":   depth,
		}),
	}
}

// process runs the program for ictx and verifies the account changes it made.
func (t *transactionContext) process(ictx *InvokeContext) error {
	program, ok := t.runtime.getProgram(ictx.ProgramID)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	ictx.snapshot(ictx.Accounts)

	ictx.log.Debug("invoke")
	if err := program.Process(ictx); err != nil {
		ictx.log.WithError(err).Debug("failed")
		return err
	}

	if err := ictx.verify(ictx.Accounts, true); err != nil {
		return err
	}

	ictx.log.Debug("success")
	return nil
}
