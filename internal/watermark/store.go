package watermark

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Record is the persisted state of one identity.
type Record struct {
	GeneratorID     int   `json:"generatorId"`
	ClusterID       int   `json:"clusterId"`
	ClaimedAtMs     int64 `json:"claimedAtMs"`
	LastTimestampMs int64 `json:"lastTimestampMs"`
}

// Identity returns the record's identity.
func (r Record) Identity() uniqueid.Identity {
	return uniqueid.Identity{GeneratorID: r.GeneratorID, ClusterID: r.ClusterID}
}

var keyPrefix = []byte("wm/")

func recordKey(id uniqueid.Identity) []byte {
	k := make([]byte, 0, len(keyPrefix)+6)
	k = append(k, keyPrefix...)
	k = strconv.AppendInt(k, int64(id.GeneratorID), 10)
	k = append(k, '/')
	k = strconv.AppendInt(k, int64(id.ClusterID), 10)
	return k
}

// Store reads and writes watermark records.
type Store struct {
	db  *pebblestore.DB
	now func() time.Time

	mu sync.Mutex // serializes read-modify-write of records
}

// NewStore returns a Store backed by db.
func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Get returns the record for id, or pebblestore.ErrNotFound.
func (s *Store) Get(id uniqueid.Identity) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *Store) get(id uniqueid.Identity) (Record, error) {
	b, err := s.db.Get(recordKey(id))
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, fmt.Errorf("watermark: decode %s: %w", id, err)
	}
	return r, nil
}

// Ensure creates a record for id if absent and returns the effective record.
// Idempotent: returns the existing record if already present.
func (s *Store) Ensure(id uniqueid.Identity) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, pebblestore.ErrNotFound) {
		return Record{}, err
	}
	r = Record{
		GeneratorID: id.GeneratorID,
		ClusterID:   id.ClusterID,
		ClaimedAtMs: s.now().UnixMilli(),
	}
	return r, s.put(r)
}

// Advance raises the watermark for id to ms. Lower values are ignored.
func (s *Store) Advance(id uniqueid.Identity, ms int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	switch {
	case errors.Is(err, pebblestore.ErrNotFound):
		r = Record{GeneratorID: id.GeneratorID, ClusterID: id.ClusterID, ClaimedAtMs: s.now().UnixMilli()}
	case err != nil:
		return err
	}
	if ms <= r.LastTimestampMs {
		return nil
	}
	r.LastTimestampMs = ms
	return s.put(r)
}

// List returns every record, ordered by key.
func (s *Store) List() ([]Record, error) {
	var out []Record
	var decodeErr error
	err := s.db.ScanPrefix(keyPrefix, func(k, v []byte) bool {
		var r Record
		if err := json.Unmarshal(v, &r); err != nil {
			decodeErr = fmt.Errorf("watermark: decode %s: %w", strings.TrimPrefix(string(k), string(keyPrefix)), err)
			return false
		}
		out = append(out, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, decodeErr
}

func (s *Store) put(r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Set(recordKey(r.Identity()), b)
}
