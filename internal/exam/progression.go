package exam

// Outcome is the result of applying the step rules to a score percentage.
type Outcome struct {
	Passed       bool
	LevelAwarded Level // empty on fail
	CanProceed   bool
}

// Progress maps (step, percentage) to the assessment outcome. Bands are
// half-open [low, high); a boundary value belongs to the higher band. Step 3
// has no proceed band: 50 and above awards C2 and the track ends there.
//
// Progress is pure and total over step 1..3 and percentage 0..100; an
// out-of-range step fails closed.
func Progress(step int, percentage float64) Outcome {
	if percentage < 25 {
		return Outcome{}
	}
	switch step {
	case 1:
		switch {
		case percentage < 50:
			return Outcome{Passed: true, LevelAwarded: LevelA1}
		case percentage < 75:
			return Outcome{Passed: true, LevelAwarded: LevelA2}
		default:
			return Outcome{Passed: true, LevelAwarded: LevelA2, CanProceed: true}
		}
	case 2:
		switch {
		case percentage < 50:
			return Outcome{Passed: true, LevelAwarded: LevelB1}
		case percentage < 75:
			return Outcome{Passed: true, LevelAwarded: LevelB2}
		default:
			return Outcome{Passed: true, LevelAwarded: LevelB2, CanProceed: true}
		}
	case 3:
		if percentage < 50 {
			return Outcome{Passed: true, LevelAwarded: LevelC1}
		}
		return Outcome{Passed: true, LevelAwarded: LevelC2}
	default:
		return Outcome{}
	}
}
