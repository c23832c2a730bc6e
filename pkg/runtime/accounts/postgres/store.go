package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/code-payments/metadata-vault/pkg/database/postgres"
	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres accounts.Store
func New(db *sql.DB) accounts.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements accounts.Store.Save
func (s *store) Save(ctx context.Context, records ...*accounts.Record) error {
	models := make([]*model, len(records))
	for i, record := range records {
		model, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = model
	}

	// Concurrent runtimes may commit overlapping accounts, so batches run
	// serializably and are retried on conflict.
	err := pgutil.ExecuteRetryable(func() error {
		return pgutil.ExecuteTxWithinCtx(ctx, s.db, sql.LevelSerializable, func(ctx context.Context) error {
			return dbSaveAll(ctx, s.db, models...)
		})
	})
	if err != nil {
		return err
	}

	for i, model := range models {
		fromModel(model).CopyTo(records[i])
	}

	return nil
}

// Get implements accounts.Store.Get
func (s *store) Get(ctx context.Context, address string) (*accounts.Record, error) {
	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByOwner implements accounts.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*accounts.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*accounts.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}
