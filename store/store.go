package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const InMemory string = "file::memory:"

var ErrNotFound = errors.New("not found")

type Store struct {
	pool *sqlx.DB
}

func NewStore(path string) (*Store, error) {
	pool, err := sqlx.Connect("sqlite", path+"?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// Every connection to an in-memory database sees its own
	// copy, and sqlite serialises writers anyway
	pool.SetMaxOpenConns(1)

	// Create the tables
	s := &Store{pool: pool}
	for _, schema := range []string{reconSchema, requestsSchema} {
		if _, err := s.pool.Exec(schema); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}
