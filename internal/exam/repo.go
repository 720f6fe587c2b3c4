package exam

import "context"

// QuestionBank supplies questions by level. Sample must return exactly n
// uniformly sampled questions restricted to the given levels, or
// ErrInsufficientPool.
type QuestionBank interface {
	Put(ctx context.Context, q Question) error
	Sample(ctx context.Context, levels [2]Level, n int) ([]Question, error)
	// GetByIDs returns full questions, answer keys included. This read path
	// and ListQuestions are the only ones that load keys; both are kept off
	// candidate surfaces.
	GetByIDs(ctx context.Context, ids []string) ([]Question, error)
	// ListQuestions pages through the bank, optionally restricted to one
	// level ("" = all).
	ListQuestions(ctx context.Context, level Level, limit, offset int) ([]Question, error)
	// Delete removes a question; ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

type ListOpts struct {
	CandidateID string
	Step        int    // 0 = any
	Status      string // pending|submitted, "" = any
	Limit       int
	Offset      int
}

// SessionStore owns session persistence. Sessions are created once, mutated
// exactly once via CompareAndSubmit, and never deleted.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// CompareAndSubmit atomically transitions the stored session from pending
	// to submitted, writing the graded state. It returns false without error
	// when the stored session is no longer pending.
	CompareAndSubmit(ctx context.Context, s Session) (bool, error)
	List(ctx context.Context, opts ListOpts) ([]Session, error)
}

// Awarder is invoked after progression with the newly awarded level. It
// returns a reference to the issued certificate artifact, or "" when the
// level does not raise the candidate's best. Implemented by cert.Issuer.
type Awarder interface {
	Award(ctx context.Context, candidateID string, level Level) (string, error)
}

// EventSink records audit events. Failures are non-fatal to the main flow.
type EventSink interface {
	Append(ctx context.Context, typ, key string, payload interface{}) error
}
