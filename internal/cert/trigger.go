package cert

import (
	"context"
	"fmt"

	"github.com/test-school/assessment-engine/internal/exam"
)

// IssueCommand describes one certificate to produce and deliver. The trigger
// returns it once per genuine level increase; executing it is the issuer's
// job, so rendering and delivery stay out of the scoring path.
type IssueCommand struct {
	CandidateID   string
	CandidateName string
	Recipient     string
	Level         exam.Level
}

// Trigger raises a candidate's highest level when a newly awarded level
// strictly exceeds it.
type Trigger struct {
	store Store
}

func NewTrigger(store Store) *Trigger {
	return &Trigger{store: store}
}

// Raise compares level against the candidate's recorded best and attempts a
// compare-and-set. It returns a non-nil IssueCommand exactly when this call
// won the swap; equal or lower levels (and the empty level) return nil with
// no side effects.
//
// The read-compare-swap loop retries on CAS misses so that two sessions of
// the same candidate racing each other settle on the higher of the two
// levels with exactly one issuance per increase.
func (t *Trigger) Raise(ctx context.Context, candidateID string, level exam.Level) (*IssueCommand, error) {
	if level.Rank() < 0 {
		return nil, nil
	}
	for {
		c, err := t.store.Get(ctx, candidateID)
		if err != nil {
			return nil, fmt.Errorf("read candidate %s: %w", candidateID, err)
		}
		if !level.Above(c.HighestLevel) {
			return nil, nil
		}
		ok, err := t.store.CompareAndSetHighestLevel(ctx, candidateID, c.HighestLevel, level)
		if err != nil {
			return nil, fmt.Errorf("raise level for %s: %w", candidateID, err)
		}
		if ok {
			name := c.Name
			if name == "" {
				name = c.ID
			}
			return &IssueCommand{
				CandidateID:   candidateID,
				CandidateName: name,
				Recipient:     c.Email,
				Level:         level,
			}, nil
		}
		// Someone else moved HighestLevel since our read; re-evaluate.
	}
}
