package grading

import (
	"math"
	"strings"
)

// Q is the minimal view of a question needed for grading.
type Q struct {
	Type     string
	Marks    int
	Expected []string // single-valued for single/truefalse/short, a set for multiple
}

// Result is the outcome of grading a single response.
type Result struct {
	Correct bool
	Marks   int
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(q Q, response interface{}) Result
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, response interface{}) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, response interface{}) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		// Unsupported type: zero marks, not correct.
		return Result{}
	}
	return s.Grade(q, response)
}

// NewDefaultGrader installs the built-in strategies for the four supported
// question types: single, multiple, truefalse, short.
func NewDefaultGrader() Grader {
	exact := exactMatchStrategy{}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single":    exact,
			"truefalse": exact,
			"short":     exact,
			"multiple":  multiChoiceStrategy{},
		},
	}
}

// exactMatchStrategy trims the submitted string and compares it for exact
// equality with the expected answer. No case folding, no fuzzy matching.
type exactMatchStrategy struct{}

func (exactMatchStrategy) Grade(q Q, response interface{}) Result {
	if len(q.Expected) == 0 {
		return Result{}
	}
	resp, ok := response.(string)
	if !ok {
		return Result{}
	}
	if strings.TrimSpace(resp) == q.Expected[0] {
		return Result{Correct: true, Marks: q.Marks}
	}
	return Result{}
}

// multiChoiceStrategy treats submitted and expected answers as sets. Exact
// set equality earns full marks; otherwise partial credit proportional to
// the intersection, rounded. Extra wrong selections are not penalized.
type multiChoiceStrategy struct{}

func (multiChoiceStrategy) Grade(q Q, response interface{}) Result {
	expected := toSet(q.Expected)
	if len(expected) == 0 {
		return Result{}
	}
	arr, ok := toStringSlice(response)
	if !ok {
		return Result{Marks: partialMarks(0, len(expected), q.Marks)}
	}
	submitted := toSet(arr)
	if setEqual(submitted, expected) {
		return Result{Correct: true, Marks: q.Marks}
	}
	inter := 0
	for k := range submitted {
		if _, ok := expected[k]; ok {
			inter++
		}
	}
	return Result{Marks: partialMarks(inter, len(expected), q.Marks)}
}

func partialMarks(inter, expected, max int) int {
	if expected == 0 {
		return 0
	}
	return int(math.Round(float64(inter) / float64(expected) * float64(max)))
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
