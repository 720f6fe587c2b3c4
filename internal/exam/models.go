package exam

import "time"

// Question types. These four are exhaustive in practice; anything else
// grades to zero.
const (
	TypeSingle    = "single"
	TypeMultiple  = "multiple"
	TypeTrueFalse = "truefalse"
	TypeShort     = "short"
)

// Session status. A session is pending until its single submission lands,
// then submitted and never mutated again.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
)

type Question struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	Type       string   `json:"type"`
	Competency string   `json:"competency,omitempty"`
	Level      Level    `json:"level"`
	Marks      int      `json:"marks"`
	Expected   []string `json:"expected,omitempty"` // answer key; never serialized to candidates
}

// QuestionView is the candidate-safe projection of a Question.
type QuestionView struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	Type       string   `json:"type"`
	Competency string   `json:"competency,omitempty"`
	Level      Level    `json:"level"`
	Marks      int      `json:"marks"`
}

// View strips the answer key.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		Type:       q.Type,
		Competency: q.Competency,
		Level:      q.Level,
		Marks:      q.Marks,
	}
}

// Answer is one submitted answer. Value is a string for single/truefalse/short
// questions and a list of strings for multiple-choice; it arrives as decoded
// JSON, so the list form may be []interface{}.
type Answer struct {
	QuestionID string      `json:"question_id"`
	Value      interface{} `json:"answer"`
}

type AnswerRecord struct {
	QuestionID    string      `json:"question_id"`
	Value         interface{} `json:"answer"`
	Correct       bool        `json:"correct"`
	MarksObtained int         `json:"marks_obtained"`
}

type Session struct {
	ID            string         `json:"id"`
	CandidateID   string         `json:"candidate_id"`
	Step          int            `json:"step"`
	LevelsTested  [2]Level       `json:"levels_tested"`
	QuestionIDs   []string       `json:"question_ids"`
	Answers       []AnswerRecord `json:"answers"`
	TotalMarks    int            `json:"total_marks"`
	ObtainedMarks int            `json:"obtained_marks"`
	Percentage    float64        `json:"percentage"`
	Passed        bool           `json:"passed"`
	LevelAwarded  Level          `json:"level_awarded,omitempty"`
	CanProceed    bool           `json:"can_proceed_to_next_step"`
	Status        string         `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	SubmittedAt   *time.Time     `json:"submitted_at,omitempty"`

	DurationSeconds       int    `json:"duration_seconds"`
	ClientDurationSeconds *int   `json:"client_duration_seconds,omitempty"`
	SourceIP              string `json:"source_ip,omitempty"` // audit only
}

// Deadline is the last instant a submission is considered on time, grace
// included.
func (s Session) Deadline(grace time.Duration) time.Time {
	return s.StartedAt.Add(time.Duration(s.DurationSeconds)*time.Second + grace)
}
