package exam

// Level is a competency level on the six-step A1..C2 scale.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

var levelOrder = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Rank is the position on the scale, A1 = 0 through C2 = 5. The empty level
// and unknown values rank -1, below every real level.
func (l Level) Rank() int {
	for i, v := range levelOrder {
		if v == l {
			return i
		}
	}
	return -1
}

// Above reports whether l ranks strictly higher than other.
func (l Level) Above(other Level) bool {
	return l.Rank() > other.Rank()
}

// StepLevels returns the pair of levels tested at a step: A1/A2, B1/B2 or
// C1/C2. ok is false for any step outside 1..3.
func StepLevels(step int) ([2]Level, bool) {
	switch step {
	case 1:
		return [2]Level{LevelA1, LevelA2}, true
	case 2:
		return [2]Level{LevelB1, LevelB2}, true
	case 3:
		return [2]Level{LevelC1, LevelC2}, true
	default:
		return [2]Level{}, false
	}
}
