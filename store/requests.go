package store

import (
	"database/sql"
	"errors"
	"time"
)

const requestsSchema = `CREATE TABLE IF NOT EXISTS anchor_requests (
	cid        TEXT PRIMARY KEY,
	stream_id  TEXT NOT NULL,
	tip        TEXT NOT NULL,
	status     TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusFailed     RequestStatus = "FAILED"
	StatusReady      RequestStatus = "READY"
)

// Request is an anchor request, timestamps are unix milliseconds
type Request struct {
	CID       string        `db:"cid"`
	StreamID  string        `db:"stream_id"`
	Tip       string        `db:"tip"`
	Status    RequestStatus `db:"status"`
	Message   string        `db:"message"`
	CreatedAt int64         `db:"created_at"`
	UpdatedAt int64         `db:"updated_at"`
}

func (r Request) Created() time.Time {
	return time.UnixMilli(r.CreatedAt).UTC()
}

func (r Request) Updated() time.Time {
	return time.UnixMilli(r.UpdatedAt).UTC()
}

// PutRequest stores r unless a request with the same CID exists,
// either way the stored request is returned
func (s *Store) PutRequest(r Request) (Request, error) {
	_, err := s.pool.NamedExec(`INSERT OR IGNORE INTO anchor_requests
		(cid, stream_id, tip, status, message, created_at, updated_at)
		VALUES (:cid, :stream_id, :tip, :status, :message, :created_at, :updated_at)`, r)
	if err != nil {
		return Request{}, err
	}
	return s.GetRequest(r.CID)
}

func (s *Store) GetRequest(cid string) (Request, error) {
	var r Request
	err := s.pool.Get(&r, `SELECT cid, stream_id, tip, status, message, created_at, updated_at
		FROM anchor_requests WHERE cid = ? LIMIT 1`, cid)
	return r, notFound(err)
}

func (s *Store) CountRequests() (uint, error) {
	var n uint
	return n, s.pool.Get(&n, `SELECT COUNT(*) FROM anchor_requests`)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
