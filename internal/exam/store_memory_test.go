package exam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/test-school/assessment-engine/internal/exam"
)

func TestMemoryBank_ListAndDelete(t *testing.T) {
	bank := exam.NewMemoryBank()
	ctx := context.Background()

	for _, q := range []exam.Question{
		{ID: "q1", Text: "t", Type: exam.TypeSingle, Level: exam.LevelA1, Marks: 1, Expected: []string{"x"}},
		{ID: "q2", Text: "t", Type: exam.TypeSingle, Level: exam.LevelA2, Marks: 1, Expected: []string{"x"}},
		{ID: "q3", Text: "t", Type: exam.TypeSingle, Level: exam.LevelA1, Marks: 1, Expected: []string{"x"}},
	} {
		if err := bank.Put(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	all, err := bank.ListQuestions(ctx, "", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("listed %d questions, want 3", len(all))
	}
	a1, _ := bank.ListQuestions(ctx, exam.LevelA1, 50, 0)
	if len(a1) != 2 {
		t.Fatalf("level filter returned %d, want 2", len(a1))
	}
	paged, _ := bank.ListQuestions(ctx, "", 1, 1)
	if len(paged) != 1 || paged[0].ID != "q2" {
		t.Fatalf("paging mismatch: %+v", paged)
	}

	if err := bank.Delete(ctx, "q2"); err != nil {
		t.Fatal(err)
	}
	if err := bank.Delete(ctx, "q2"); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("repeat delete: want ErrNotFound, got %v", err)
	}
	if _, err := bank.Sample(ctx, [2]exam.Level{exam.LevelA1, exam.LevelA2}, 3); !errors.Is(err, exam.ErrInsufficientPool) {
		t.Fatalf("deleted question still in the pool: %v", err)
	}
}
