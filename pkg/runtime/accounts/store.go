package accounts

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	ErrStaleAccountState = errors.New("account state is stale")
)

// Store persists committed account state.
type Store interface {
	// Save upserts every record as a single atomic batch. If any record has a
	// slot older than the persisted one, ErrStaleAccountState is returned and
	// nothing is written.
	Save(ctx context.Context, records ...*Record) error

	// Get gets the latest committed state of an account. ErrAccountNotFound is
	// returned if the account has never been written.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets every account owned by a program, ordered by address.
	// ErrAccountNotFound is returned if there are none.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)
}
