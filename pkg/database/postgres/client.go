package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive
)

type Config struct {
	User               string
	Host               string
	Password           string
	Port               string
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
}

// New opens a pgx backed connection pool using the provided config and checks
// that the database is reachable.
func New(config *Config) (*sql.DB, error) {
	db, err := NewWithUsernameAndPassword(
		config.User,
		config.Password,
		config.Host,
		config.Port,
		config.DbName,
	)
	if err != nil {
		return nil, err
	}

	if config.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(config.MaxOpenConnections)
	}
	if config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(config.MaxIdleConnections)
	}

	return db, nil
}

// Get a DB connection pool using username/password credentials
func NewWithUsernameAndPassword(username, password, hostname, port, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		username, password, hostname, port, dbname,
	)

	// Try to open a connection pool using the "pgx" driver (instead of "postgres")
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Check if the connection was successful
	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}
