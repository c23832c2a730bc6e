package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/code-payments/metadata-vault/pkg/database/postgres"
	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
)

const (
	tableName = "metadatavault__core_account"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address    string `db:"address"`
	Owner      string `db:"owner"`
	Lamports   uint64 `db:"lamports"`
	Data       []byte `db:"data"`
	Executable bool   `db:"executable"`

	Slot uint64 `db:"slot"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *accounts.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address:    obj.Address,
		Owner:      obj.Owner,
		Lamports:   obj.Lamports,
		Data:       data,
		Executable: obj.Executable,
		Slot:       obj.Slot,
	}, nil
}

func fromModel(obj *model) *accounts.Record {
	return &accounts.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      obj.Lamports,
		Data:          obj.Data,
		Executable:    obj.Executable,
		Slot:          obj.Slot,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func dbSaveAll(ctx context.Context, db *sqlx.DB, models ...*model) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, executable, slot, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)

			ON CONFLICT (address)
			DO UPDATE
				SET owner = $2, lamports = $3, data = $4, executable = $5, slot = $6, last_updated_at = $7
				WHERE ` + tableName + `.address = $1 AND ` + tableName + `.slot <= $6

			RETURNING
				id, address, owner, lamports, data, executable, slot, last_updated_at`

		now := time.Now()
		for _, m := range models {
			m.LastUpdatedAt = now

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Owner,
				m.Lamports,
				m.Data,
				m.Executable,
				m.Slot,
				m.LastUpdatedAt.UTC(),
			).StructScan(m)
			if err != nil {
				return pgutil.CheckNoRows(err, accounts.ErrStaleAccountState)
			}
		}

		return nil
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT id, address, owner, lamports, data, executable, slot, last_updated_at FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, accounts.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, address, owner, lamports, data, executable, slot, last_updated_at FROM ` + tableName + `
		WHERE owner = $1
		ORDER BY address ASC`

	err := db.SelectContext(ctx, &res, query, owner)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, accounts.ErrAccountNotFound)
	}
	if len(res) == 0 {
		return nil, accounts.ErrAccountNotFound
	}
	return res, nil
}
