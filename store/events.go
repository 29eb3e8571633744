package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const reconSchema = `CREATE TABLE IF NOT EXISTS recon (
	sort_key TEXT, -- the field in the event header to sort by e.g. model
	key BLOB, -- network_id sort_value controller StreamID height event_cid
	ahash_0 INTEGER, -- the ahash is decomposed as [u32; 8]
	ahash_1 INTEGER,
	ahash_2 INTEGER,
	ahash_3 INTEGER,
	ahash_4 INTEGER,
	ahash_5 INTEGER,
	ahash_6 INTEGER,
	ahash_7 INTEGER,
	cid TEXT,
	block_retrieved BOOL, -- indicates if we still want the block
	PRIMARY KEY(sort_key, key)
);`

// BatchSize is the number of events written per insert statement
const BatchSize = 1000

// Event is a row of the recon table
type Event struct {
	SortKey        string `db:"sort_key"`
	Key            []byte `db:"key"`
	AHash0         uint32 `db:"ahash_0"`
	AHash1         uint32 `db:"ahash_1"`
	AHash2         uint32 `db:"ahash_2"`
	AHash3         uint32 `db:"ahash_3"`
	AHash4         uint32 `db:"ahash_4"`
	AHash5         uint32 `db:"ahash_5"`
	AHash6         uint32 `db:"ahash_6"`
	AHash7         uint32 `db:"ahash_7"`
	BlockRetrieved bool   `db:"block_retrieved"`
}

// NewEvent computes the associative hash of key, the sha256
// digest split into eight little endian u32s
func NewEvent(sortKey string, key []byte) Event {
	h := sha256.Sum256(key)
	var ah [8]uint32
	for i := range ah {
		ah[i] = binary.LittleEndian.Uint32(h[i*4:])
	}

	return Event{
		SortKey: sortKey,
		Key:     key,
		AHash0:  ah[0],
		AHash1:  ah[1],
		AHash2:  ah[2],
		AHash3:  ah[3],
		AHash4:  ah[4],
		AHash5:  ah[5],
		AHash6:  ah[6],
		AHash7:  ah[7],
	}
}

func (e Event) AHash() [8]uint32 {
	return [8]uint32{e.AHash0, e.AHash1, e.AHash2, e.AHash3, e.AHash4, e.AHash5, e.AHash6, e.AHash7}
}

// PutEvents inserts events in a single transaction, BatchSize
// rows per statement
func (s *Store) PutEvents(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(events); start += BatchSize {
		end := min(start+BatchSize, len(events))
		_, err := tx.NamedExec(`INSERT INTO recon (
			sort_key, key, ahash_0, ahash_1, ahash_2, ahash_3, ahash_4, ahash_5, ahash_6, ahash_7, block_retrieved
		) VALUES (
			:sort_key, :key, :ahash_0, :ahash_1, :ahash_2, :ahash_3, :ahash_4, :ahash_5, :ahash_6, :ahash_7, :block_retrieved
		)`, events[start:end])
		if err != nil {
			return fmt.Errorf("insert events %d-%d: %w", start, end, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetEvent(sortKey string, key []byte) (Event, error) {
	var e Event
	err := s.pool.Get(&e, `SELECT sort_key, key, ahash_0, ahash_1, ahash_2, ahash_3, ahash_4, ahash_5, ahash_6, ahash_7, block_retrieved
		FROM recon WHERE sort_key = ? AND key = ? LIMIT 1`, sortKey, key)
	return e, notFound(err)
}

func (s *Store) CountEvents(sortKey string) (uint, error) {
	var n uint
	return n, s.pool.Get(&n, `SELECT COUNT(*) FROM recon WHERE sort_key = ?`, sortKey)
}
