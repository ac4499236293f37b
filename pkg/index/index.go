package index

import (
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Snapshot is one read of the task sheet.
type Snapshot struct {
	Revision  uint64
	FetchedAt time.Time
	Tasks     []model.Task
	// Rows maps a task ID to its 1-based sheet row.
	Rows map[string]int
}

// NewSnapshot builds the row index for tasks. rows[i] is the sheet row of tasks[i].
func NewSnapshot(revision uint64, fetchedAt time.Time, tasks []model.Task, rows []int) *Snapshot {
	s := &Snapshot{
		Revision:  revision,
		FetchedAt: fetchedAt,
		Tasks:     tasks,
		Rows:      make(map[string]int, len(tasks)),
	}
	for i, t := range tasks {
		// first occurrence wins, matching a top-down search of the sheet
		if _, exists := s.Rows[t.ID]; !exists {
			s.Rows[t.ID] = rows[i]
		}
	}
	return s
}

// Row returns the sheet row holding taskID.
func (s *Snapshot) Row(taskID string) (int, bool) {
	row, ok := s.Rows[taskID]
	return row, ok
}

// Has reports whether taskID is present.
func (s *Snapshot) Has(taskID string) bool {
	_, ok := s.Rows[taskID]
	return ok
}

// Memo holds at most one snapshot. A snapshot is served only while its
// revision is current and it is younger than the TTL.
type Memo struct {
	TTL time.Duration

	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemo(ttl time.Duration) *Memo {
	return &Memo{TTL: ttl}
}

// Get returns the cached snapshot when it is still valid for revision at now.
func (m *Memo) Get(revision uint64, now time.Time) (*Snapshot, bool) {
	if m.TTL <= 0 {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil || m.snap.Revision != revision {
		return nil, false
	}
	if now.Sub(m.snap.FetchedAt) >= m.TTL {
		return nil, false
	}
	return m.snap, true
}

// Put replaces the cached snapshot unless a newer revision is already stored.
func (m *Memo) Put(s *Snapshot) {
	if m.TTL <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap != nil && m.snap.Revision > s.Revision {
		return
	}
	m.snap = s
}

func (m *Memo) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
}
