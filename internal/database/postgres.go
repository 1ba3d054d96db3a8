package database

import (
	"database/sql"
	"time"
)

// now stamps server-assigned times.
var now = func() time.Time {
	return time.Now().UTC()
}

type PgMarketplaceRepository struct {
	conn *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewPgMarketplaceRepository(conn *sql.DB) *PgMarketplaceRepository {
	return &PgMarketplaceRepository{conn: conn}
}

func (db *PgMarketplaceRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgMarketplaceRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
