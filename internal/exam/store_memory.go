package exam

import (
	"context"
	"math/rand"
	"sync"
)

// MemoryBank is an in-memory QuestionBank for offline mode and tests.
type MemoryBank struct {
	mu        sync.RWMutex
	questions map[string]Question
	order     []string
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{questions: map[string]Question{}}
}

func (b *MemoryBank) Put(_ context.Context, q Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.questions[q.ID]; !ok {
		b.order = append(b.order, q.ID)
	}
	b.questions[q.ID] = q
	return nil
}

func (b *MemoryBank) Sample(_ context.Context, levels [2]Level, n int) ([]Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pool := make([]Question, 0, len(b.order))
	for _, id := range b.order {
		q := b.questions[id]
		if q.Level == levels[0] || q.Level == levels[1] {
			pool = append(pool, q)
		}
	}
	if len(pool) < n {
		return nil, ErrInsufficientPool
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n], nil
}

func (b *MemoryBank) ListQuestions(_ context.Context, level Level, limit, offset int) ([]Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := []Question{}
	skipped := 0
	for _, id := range b.order {
		q := b.questions[id]
		if level != "" && q.Level != level {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, q)
	}
	return out, nil
}

func (b *MemoryBank) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.questions[id]; !ok {
		return ErrNotFound
	}
	delete(b.questions, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (b *MemoryBank) GetByIDs(_ context.Context, ids []string) ([]Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := b.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// MemorySessionStore keeps sessions in a map guarded by one mutex, which
// makes CompareAndSubmit trivially atomic.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]Session{}}
}

func (m *MemorySessionStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) CompareAndSubmit(_ context.Context, s Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ID]
	if !ok {
		return false, ErrNotFound
	}
	if cur.Status != StatusPending {
		return false, nil
	}
	m.sessions[s.ID] = s
	return true, nil
}

func (m *MemorySessionStore) List(_ context.Context, opts ListOpts) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Session{}
	for _, s := range m.sessions {
		if opts.CandidateID != "" && s.CandidateID != opts.CandidateID {
			continue
		}
		if opts.Step != 0 && s.Step != opts.Step {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
