package cohort

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an accepted cohort upload.
type Snapshot struct {
	ID         uuid.UUID
	Filename   string
	UploadedAt time.Time
	Records    []Record
}

// Store holds the latest cohort upload. Each upload replaces the previous one as a whole;
// readers always see a complete snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Replace stores a new snapshot of records and returns it.
func (s *Store) Replace(filename string, records []Record) Snapshot {
	snap := &Snapshot{
		ID:         uuid.New(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Records:    cloneRecords(records),
	}
	s.current.Store(snap)
	return snap.copy()
}

// Current returns a copy of the latest snapshot; false when nothing was uploaded yet.
func (s *Store) Current() (Snapshot, bool) {
	snap := s.current.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return snap.copy(), true
}

func (s Snapshot) copy() Snapshot {
	s.Records = cloneRecords(s.Records)
	return s
}
