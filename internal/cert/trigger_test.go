package cert

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/test-school/assessment-engine/internal/exam"
)

func TestRaise_IssuesOnStrictIncrease(t *testing.T) {
	store := NewMemoryStore()
	trig := NewTrigger(store)
	ctx := context.Background()

	cmd, err := trig.Raise(ctx, "u1", exam.LevelA2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd == nil || cmd.Level != exam.LevelA2 || cmd.CandidateID != "u1" {
		t.Fatalf("expected an A2 issue command, got %+v", cmd)
	}
	if cmd.CandidateName != "u1" {
		t.Fatalf("name must default to the candidate id, got %q", cmd.CandidateName)
	}

	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelA2 {
		t.Fatalf("highest level = %q, want A2", c.HighestLevel)
	}
}

func TestRaise_EqualOrLowerIsNoop(t *testing.T) {
	store := NewMemoryStore()
	trig := NewTrigger(store)
	ctx := context.Background()

	if _, err := trig.Raise(ctx, "u1", exam.LevelB1); err != nil {
		t.Fatal(err)
	}
	for _, level := range []exam.Level{exam.LevelB1, exam.LevelA2, exam.LevelA1} {
		cmd, err := trig.Raise(ctx, "u1", level)
		if err != nil {
			t.Fatalf("level %s: %v", level, err)
		}
		if cmd != nil {
			t.Fatalf("level %s must not issue below or at the current best", level)
		}
	}
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelB1 {
		t.Fatalf("highest level regressed to %q", c.HighestLevel)
	}
}

func TestRaise_UnknownLevelIsNoop(t *testing.T) {
	store := NewMemoryStore()
	trig := NewTrigger(store)
	ctx := context.Background()

	for _, level := range []exam.Level{"", "Z9"} {
		cmd, err := trig.Raise(ctx, "u1", level)
		if err != nil || cmd != nil {
			t.Fatalf("level %q: cmd=%v err=%v; want nil, nil", level, cmd, err)
		}
	}
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != "" {
		t.Fatalf("no level should have been recorded, got %q", c.HighestLevel)
	}
}

// contendedStore fails the first swap after letting an interloper move the
// level, forcing the trigger through its retry path.
type contendedStore struct {
	*MemoryStore
	interloper exam.Level
	fired      bool
}

func (s *contendedStore) CompareAndSetHighestLevel(ctx context.Context, id string, prev, next exam.Level) (bool, error) {
	if !s.fired {
		s.fired = true
		if _, err := s.MemoryStore.CompareAndSetHighestLevel(ctx, id, prev, s.interloper); err != nil {
			return false, err
		}
		return false, nil
	}
	return s.MemoryStore.CompareAndSetHighestLevel(ctx, id, prev, next)
}

func TestRaise_RetriesAfterLostSwap(t *testing.T) {
	store := &contendedStore{MemoryStore: NewMemoryStore(), interloper: exam.LevelB1}
	trig := NewTrigger(store)
	ctx := context.Background()

	cmd, err := trig.Raise(ctx, "u1", exam.LevelC1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd == nil || cmd.Level != exam.LevelC1 {
		t.Fatalf("C1 still exceeds the interloper's B1 and must issue, got %+v", cmd)
	}
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelC1 {
		t.Fatalf("highest level = %q, want C1", c.HighestLevel)
	}
}

func TestRaise_AbortsWhenOvertaken(t *testing.T) {
	store := &contendedStore{MemoryStore: NewMemoryStore(), interloper: exam.LevelC2}
	trig := NewTrigger(store)
	ctx := context.Background()

	cmd, err := trig.Raise(ctx, "u1", exam.LevelC1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd != nil {
		t.Fatalf("C1 is below the interloper's C2 and must not issue")
	}
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelC2 {
		t.Fatalf("highest level regressed to %q", c.HighestLevel)
	}
}

func TestRaise_ConcurrentRacersNeverRegress(t *testing.T) {
	store := NewMemoryStore()
	trig := NewTrigger(store)
	ctx := context.Background()

	levels := []exam.Level{
		exam.LevelA1, exam.LevelA2, exam.LevelB1,
		exam.LevelB2, exam.LevelC1, exam.LevelC2,
	}
	rand.Shuffle(len(levels), func(i, j int) { levels[i], levels[j] = levels[j], levels[i] })

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		cmds []IssueCommand
	)
	for _, level := range levels {
		wg.Add(1)
		go func(level exam.Level) {
			defer wg.Done()
			cmd, err := trig.Raise(ctx, "u1", level)
			if err != nil {
				t.Errorf("raise %s: %v", level, err)
				return
			}
			if cmd != nil {
				mu.Lock()
				cmds = append(cmds, *cmd)
				mu.Unlock()
			}
		}(level)
	}
	wg.Wait()

	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelC2 {
		t.Fatalf("final level = %q, want the maximum C2", c.HighestLevel)
	}

	// Every successful swap was a strict increase over the stored value at
	// that moment, so no level can have been issued twice.
	seen := map[exam.Level]bool{}
	sawMax := false
	for _, cmd := range cmds {
		if seen[cmd.Level] {
			t.Fatalf("level %s issued more than once", cmd.Level)
		}
		seen[cmd.Level] = true
		if cmd.Level == exam.LevelC2 {
			sawMax = true
		}
	}
	if !sawMax {
		t.Fatalf("the winning maximum level must have been issued")
	}
	if len(cmds) == 0 || len(cmds) > len(levels) {
		t.Fatalf("issued %d commands for %d racers", len(cmds), len(levels))
	}
}
