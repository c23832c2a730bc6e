package accounts

import (
	"bytes"
	"errors"
	"time"
)

type Record struct {
	Id uint64

	Address    string
	Owner      string
	Lamports   uint64
	Data       []byte
	Executable bool

	// Slot is the slot of the transaction that last wrote the account.
	Slot uint64

	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id: r.Id,

		Address:    r.Address,
		Owner:      r.Owner,
		Lamports:   r.Lamports,
		Data:       data,
		Executable: r.Executable,

		Slot: r.Slot,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = make([]byte, len(r.Data))
	copy(dst.Data, r.Data)
	dst.Executable = r.Executable

	dst.Slot = r.Slot

	dst.LastUpdatedAt = r.LastUpdatedAt
}

// IsStateEqual reports whether both records describe the same on-chain state,
// ignoring bookkeeping fields.
func (r *Record) IsStateEqual(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		r.Executable == other.Executable &&
		bytes.Equal(r.Data, other.Data)
}
