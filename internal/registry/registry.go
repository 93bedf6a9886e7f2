package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// ErrNotFound is returned when an identity name is not enrolled.
var ErrNotFound = errors.New("identity not found")

// Identity is one enrolled person. The embedding is captured at enrollment
// time and never mutated afterwards; re-enrolling the same name overwrites
// the whole record.
type Identity struct {
	Name      string
	Contact   string
	EmployID  string
	Embedding embedding.Vector
}

// Saver persists the full registry document. Mutating operations on the
// Store call it before reporting success, so callers never observe a
// mutation that is not yet durable.
type Saver interface {
	SaveIdentities(identities map[string]Identity) error
}

// Store owns the in-memory registry of enrolled identities, keyed by name.
// It is a pure keyed map: duplicate-embedding checks belong to the matcher,
// not here.
type Store struct {
	mu         sync.RWMutex
	identities map[string]Identity
	saver      Saver
}

// NewStore creates an empty Store that persists through saver.
func NewStore(saver Saver) *Store {
	return &Store{
		identities: make(map[string]Identity),
		saver:      saver,
	}
}

// Seed replaces the in-memory registry with identities loaded from durable
// storage. Called once at startup, before any operations run.
func (s *Store) Seed(identities map[string]Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities = make(map[string]Identity, len(identities))
	for name, id := range identities {
		s.identities[name] = id
	}
}

// Enroll inserts or overwrites the entry keyed by id.Name and persists the
// registry. If persistence fails the in-memory state is rolled back, so a
// failed enroll leaves no trace.
func (s *Store) Enroll(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.identities[id.Name]
	s.identities[id.Name] = id

	if err := s.saver.SaveIdentities(s.identities); err != nil {
		if existed {
			s.identities[id.Name] = prev
		} else {
			delete(s.identities, id.Name)
		}
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	return nil
}

// Delete removes the entry keyed by name and persists the registry.
// Returns ErrNotFound if the name is not enrolled; the registry is left
// unchanged in that case and on persistence failure.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.identities[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.identities, name)

	if err := s.saver.SaveIdentities(s.identities); err != nil {
		s.identities[name] = prev
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	return nil
}

// Get returns the identity enrolled under name.
func (s *Store) Get(name string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.identities[name]
	return id, ok
}

// Find looks up an identity by name, falling back to a normalized
// comparison (case and diacritics insensitive) when no exact entry exists.
// Read-only convenience for operator-facing lookups; mutating operations
// always use exact names.
func (s *Store) Find(name string) (Identity, bool) {
	if id, ok := s.Get(name); ok {
		return id, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	want := NormalizeName(name)
	for _, id := range s.identities {
		if NormalizeName(id.Name) == want {
			return id, true
		}
	}
	return Identity{}, false
}

// All returns a snapshot of the current registry state. Re-calling returns
// current state, not a frozen view.
func (s *Store) All() []Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Identity, 0, len(s.identities))
	for _, id := range s.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Snapshot returns a copy of the registry map, suitable for serialization.
func (s *Store) Snapshot() map[string]Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Identity, len(s.identities))
	for name, id := range s.identities {
		out[name] = id
	}
	return out
}

// Len returns the number of enrolled identities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}
