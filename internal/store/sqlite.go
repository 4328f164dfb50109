// Package store persists recent searches and cached observation sets in
// SQLite.
package store

import (
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
