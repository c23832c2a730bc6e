package runtime

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
)

// overlay buffers account changes made by a transaction on top of the
// committed store state. Nothing reaches the store until commit, so a failed
// transaction is rolled back by dropping the overlay.
type overlay struct {
	store accounts.Store
	slot  uint64

	order    []string
	base     map[string]*Account
	current  map[string]*Account
	virtuals map[string]struct{}
}

func newOverlay(store accounts.Store, slot uint64) *overlay {
	return &overlay{
		store:    store,
		slot:     slot,
		base:     make(map[string]*Account),
		current:  make(map[string]*Account),
		virtuals: make(map[string]struct{}),
	}
}

// load returns the working copy of an account, reading it from the store on
// first use. Accounts the store has never seen load as empty system accounts.
func (o *overlay) load(ctx context.Context, key ed25519.PublicKey) (*Account, error) {
	address := base58.Encode(key)
	if account, ok := o.current[address]; ok {
		return account, nil
	}

	account, err := loadAccount(ctx, o.store, address)
	if err != nil {
		return nil, err
	}

	o.order = append(o.order, address)
	o.base[address] = account.Clone()
	o.current[address] = account
	return account, nil
}

// putVirtual registers an account that is synthesized by the runtime, like a
// sysvar or a builtin program. Virtual accounts are never committed.
func (o *overlay) putVirtual(key ed25519.PublicKey, account *Account) *Account {
	address := base58.Encode(key)
	if existing, ok := o.current[address]; ok {
		return existing
	}

	o.order = append(o.order, address)
	o.base[address] = account.Clone()
	o.current[address] = account
	o.virtuals[address] = struct{}{}
	return account
}

func (o *overlay) isVirtual(key ed25519.PublicKey) bool {
	_, ok := o.virtuals[base58.Encode(key)]
	return ok
}

// changes returns a record for every non-virtual account whose state differs
// from what was loaded. Accounts drained of lamports are reset, which is how
// accounts get closed.
func (o *overlay) changes() ([]*accounts.Record, error) {
	var records []*accounts.Record
	for _, address := range o.order {
		if _, ok := o.virtuals[address]; ok {
			continue
		}

		account := o.current[address]
		if account.Lamports == 0 {
			account = NewSystemAccount(0)
		}

		record := toRecord(address, account, o.slot)
		if record.IsStateEqual(toRecord(address, o.base[address], o.slot)) {
			continue
		}

		if err := record.Validate(); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (o *overlay) commit(ctx context.Context) error {
	records, err := o.changes()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	return o.store.Save(ctx, records...)
}

func loadAccount(ctx context.Context, store accounts.Store, address string) (*Account, error) {
	record, err := store.Get(ctx, address)
	if err == accounts.ErrAccountNotFound {
		return NewSystemAccount(0), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "error loading account %s", address)
	}

	return fromRecord(record)
}

func toRecord(address string, account *Account, slot uint64) *accounts.Record {
	return &accounts.Record{
		Address:    address,
		Owner:      base58.Encode(account.Owner),
		Lamports:   account.Lamports,
		Data:       account.Data,
		Executable: account.Executable,
		Slot:       slot,
	}
}

func fromRecord(record *accounts.Record) (*Account, error) {
	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid owner for account %s", record.Address)
	}
	if len(owner) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid owner length for account %s", record.Address)
	}

	return &Account{
		Lamports:   record.Lamports,
		Data:       record.Data,
		Owner:      owner,
		Executable: record.Executable,
	}, nil
}
