// Package memory provides in-process implementations of driven ports.
package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the current snapshot of every session in memory.
// Snapshots are installed by pointer swap; builders serialise on a
// per-session mutex.
type SessionStore struct {
	mu        sync.RWMutex
	snapshots map[string]*driven.Snapshot
	versions  map[string]uint64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		snapshots: make(map[string]*driven.Snapshot),
		versions:  make(map[string]uint64),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Get returns the current snapshot, or nil.
func (s *SessionStore) Get(sessionID string) *driven.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[sessionID]
}

// Install replaces the session's snapshot unconditionally.
func (s *SessionStore) Install(sessionID string, snap *driven.Snapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.install(sessionID, snap)
}

// CompareAndInstall installs snap only if the session is still at expected.
func (s *SessionStore) CompareAndInstall(sessionID string, expected uint64, snap *driven.Snapshot) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current := s.versions[sessionID]; current != expected {
		return current, domain.ErrConflict
	}
	return s.install(sessionID, snap), nil
}

// install stamps the snapshot with the next version. Callers hold mu.
func (s *SessionStore) install(sessionID string, snap *driven.Snapshot) uint64 {
	version := s.versions[sessionID] + 1
	s.versions[sessionID] = version

	installed := *snap
	installed.SessionID = sessionID
	installed.Version = version
	s.snapshots[sessionID] = &installed
	return version
}

// Version returns the session's current version, zero if never installed.
func (s *SessionStore) Version(sessionID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[sessionID]
}

// Lock acquires the session's build lock.
func (s *SessionStore) Lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	var once sync.Once
	return func() { once.Do(l.Unlock) }
}

// Delete drops the session's snapshot. The version counter is kept so a
// build that raced with the delete cannot install over it by comparison.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	s.versions[sessionID]++
}

// Sessions lists sessions with an installed snapshot, sorted.
func (s *SessionStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
