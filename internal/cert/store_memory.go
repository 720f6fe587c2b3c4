package cert

import (
	"context"
	"sync"

	"github.com/test-school/assessment-engine/internal/exam"
)

// MemoryStore is an in-memory candidate level store for offline mode and
// tests. One mutex covers the read-compare-swap, so CAS semantics hold under
// concurrent use.
type MemoryStore struct {
	mu         sync.Mutex
	candidates map[string]Candidate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{candidates: map[string]Candidate{}}
}

// PutCandidate registers or updates the identity fields of a candidate.
func (m *MemoryStore) PutCandidate(_ context.Context, id, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.candidates[id]
	c.ID = id
	c.Name = name
	c.Email = email
	m.candidates[id] = c
	return nil
}

func (m *MemoryStore) Get(_ context.Context, candidateID string) (Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		// Unknown candidates have no level yet; first contact creates the
		// record via the CAS below.
		return Candidate{ID: candidateID}, nil
	}
	out := c
	out.Certificates = append([]Record(nil), c.Certificates...)
	return out, nil
}

func (m *MemoryStore) CompareAndSetHighestLevel(_ context.Context, candidateID string, prev, next exam.Level) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		c = Candidate{ID: candidateID}
	}
	if c.HighestLevel != prev {
		return false, nil
	}
	c.HighestLevel = next
	m.candidates[candidateID] = c
	return true, nil
}

func (m *MemoryStore) AppendCertificate(_ context.Context, candidateID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		c = Candidate{ID: candidateID}
	}
	c.Certificates = append(c.Certificates, rec)
	m.candidates[candidateID] = c
	return nil
}
