package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
)

type store struct {
	mu      sync.Mutex
	records map[string]*accounts.Record
	last    uint64
}

// New returns a new in memory accounts.Store
func New() accounts.Store {
	return &store{
		records: make(map[string]*accounts.Record),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*accounts.Record)
	s.last = 0
}

// Save implements accounts.Store.Save
func (s *store) Save(_ context.Context, records ...*accounts.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if existing, ok := s.records[record.Address]; ok && existing.Slot > record.Slot {
			return accounts.ErrStaleAccountState
		}
	}

	now := time.Now()
	for _, record := range records {
		existing, ok := s.records[record.Address]
		if !ok {
			s.last++
			existing = &accounts.Record{Id: s.last}
			s.records[record.Address] = existing
		}

		id := existing.Id
		record.CopyTo(existing)
		existing.Id = id
		existing.LastUpdatedAt = now

		record.Id = id
		record.LastUpdatedAt = now
	}

	return nil
}

// Get implements accounts.Store.Get
func (s *store) Get(_ context.Context, address string) (*accounts.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[address]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}

	cloned := record.Clone()
	return &cloned, nil
}

// GetAllByOwner implements accounts.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string) ([]*accounts.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*accounts.Record
	for _, record := range s.records {
		if record.Owner != owner {
			continue
		}

		cloned := record.Clone()
		res = append(res, &cloned)
	}

	if len(res) == 0 {
		return nil, accounts.ErrAccountNotFound
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Address < res[j].Address
	})

	return res, nil
}
