package grading

import "testing"

func TestGrade_ExactMatchTypes(t *testing.T) {
	g := NewDefaultGrader()
	tests := []struct {
		name     string
		qtype    string
		expected []string
		response interface{}
		correct  bool
		marks    int
	}{
		{name: "single exact", qtype: "single", expected: []string{"B"}, response: "B", correct: true, marks: 2},
		{name: "single wrong", qtype: "single", expected: []string{"B"}, response: "A"},
		{name: "single trims whitespace", qtype: "single", expected: []string{"B"}, response: "  B \n", correct: true, marks: 2},
		{name: "single case sensitive", qtype: "single", expected: []string{"Paris"}, response: "paris"},
		{name: "truefalse exact", qtype: "truefalse", expected: []string{"true"}, response: "true", correct: true, marks: 2},
		{name: "short exact", qtype: "short", expected: []string{"goroutine"}, response: "goroutine", correct: true, marks: 2},
		{name: "short no fuzzy match", qtype: "short", expected: []string{"goroutine"}, response: "gorouting"},
		{name: "non-string response", qtype: "single", expected: []string{"B"}, response: 42},
		{name: "empty answer key", qtype: "single", expected: nil, response: "B"},
		{name: "unsupported type", qtype: "essay", expected: []string{"x"}, response: "x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(Q{Type: tc.qtype, Marks: 2, Expected: tc.expected}, tc.response)
			if got.Correct != tc.correct || got.Marks != tc.marks {
				t.Fatalf("got correct=%v marks=%d; want correct=%v marks=%d",
					got.Correct, got.Marks, tc.correct, tc.marks)
			}
		})
	}
}

func TestGrade_MultipleChoice(t *testing.T) {
	g := NewDefaultGrader()
	tests := []struct {
		name     string
		expected []string
		marks    int
		response interface{}
		correct  bool
		want     int
	}{
		{name: "exact set order-insensitive", expected: []string{"a", "b"}, marks: 2, response: []string{"b", "a"}, correct: true, want: 2},
		{name: "partial two of three", expected: []string{"a", "b", "c"}, marks: 3, response: []string{"a", "b"}, want: 2},
		{name: "partial one of three rounds down", expected: []string{"a", "b", "c"}, marks: 1, response: []string{"a"}, want: 0},
		{name: "partial two of three rounds up", expected: []string{"a", "b", "c"}, marks: 1, response: []string{"a", "b"}, want: 1},
		{name: "extra wrong selections not penalized", expected: []string{"a", "b", "c"}, marks: 3, response: []string{"a", "b", "z"}, want: 2},
		{name: "all wrong", expected: []string{"a", "b"}, marks: 2, response: []string{"x", "y"}, want: 0},
		{name: "decoded json slice", expected: []string{"a", "b"}, marks: 2, response: []interface{}{"a", "b"}, correct: true, want: 2},
		{name: "non-array response", expected: []string{"a", "b"}, marks: 2, response: "a", want: 0},
		{name: "empty key", expected: nil, marks: 2, response: []string{"a"}, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(Q{Type: "multiple", Marks: tc.marks, Expected: tc.expected}, tc.response)
			if got.Correct != tc.correct || got.Marks != tc.want {
				t.Fatalf("got correct=%v marks=%d; want correct=%v marks=%d",
					got.Correct, got.Marks, tc.correct, tc.want)
			}
		})
	}
}
