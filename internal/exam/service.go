package exam

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/test-school/assessment-engine/internal/grading"
)

// Config carries the engine knobs. Zero values fall back to the defaults:
// 44 questions, 60 seconds per question, 5 seconds grace.
type Config struct {
	QuestionsPerSession int
	SecondsPerQuestion  int
	SubmitGrace         time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuestionsPerSession <= 0 {
		c.QuestionsPerSession = 44
	}
	if c.SecondsPerQuestion <= 0 {
		c.SecondsPerQuestion = 60
	}
	if c.SubmitGrace <= 0 {
		c.SubmitGrace = 5 * time.Second
	}
	return c
}

// Service orchestrates the session lifecycle: creation with sampling and
// time-budget computation, then a single graded submission.
type Service struct {
	bank     QuestionBank
	sessions SessionStore
	grader   grading.Grader
	awards   Awarder   // optional
	events   EventSink // optional
	cfg      Config
	now      func() time.Time
}

func NewService(bank QuestionBank, sessions SessionStore, grader grading.Grader, awards Awarder, events EventSink, cfg Config, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		bank:     bank,
		sessions: sessions,
		grader:   grader,
		awards:   awards,
		events:   events,
		cfg:      cfg.withDefaults(),
		now:      now,
	}
}

type StartResult struct {
	SessionID       string         `json:"session_id"`
	Questions       []QuestionView `json:"questions"`
	DurationSeconds int            `json:"duration_seconds"`
	TotalMarks      int            `json:"total_marks"`
}

// StartSession samples a fresh question set for the step's level pair and
// creates a pending session. No partial sessions: a sampling shortfall fails
// the whole call.
func (s *Service) StartSession(ctx context.Context, candidateID string, step int, sourceIP string) (StartResult, error) {
	if candidateID == "" {
		return StartResult{}, fmt.Errorf("%w: candidate id required", ErrValidation)
	}
	levels, ok := StepLevels(step)
	if !ok {
		return StartResult{}, fmt.Errorf("%w: step must be 1, 2 or 3", ErrValidation)
	}

	n := s.cfg.QuestionsPerSession
	questions, err := s.bank.Sample(ctx, levels, n)
	if err != nil {
		return StartResult{}, err
	}

	ids := make([]string, 0, n)
	views := make([]QuestionView, 0, n)
	totalMarks := 0
	for _, q := range questions {
		if q.Marks <= 0 {
			q.Marks = 1
		}
		ids = append(ids, q.ID)
		views = append(views, q.View())
		totalMarks += q.Marks
	}

	session := Session{
		ID:              uuid.NewString(),
		CandidateID:     candidateID,
		Step:            step,
		LevelsTested:    levels,
		QuestionIDs:     ids,
		Answers:         []AnswerRecord{},
		TotalMarks:      totalMarks,
		Status:          StatusPending,
		StartedAt:       s.now(),
		DurationSeconds: s.cfg.SecondsPerQuestion * n,
		SourceIP:        sourceIP,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("%w: create session: %v", ErrStore, err)
	}

	return StartResult{
		SessionID:       session.ID,
		Questions:       views,
		DurationSeconds: session.DurationSeconds,
		TotalMarks:      totalMarks,
	}, nil
}

type SubmitResult struct {
	Session        Session `json:"session"`
	Late           bool    `json:"late,omitempty"`
	CertificateRef string  `json:"certificate_ref,omitempty"`
}

// SubmitSession grades the answers, applies the step rules and finalizes the
// session. The pending→submitted transition is a compare-and-set in the
// store, so a session is graded at most once even under concurrent submits.
//
// Late submissions (past startedAt + duration + grace) are still accepted and
// graded; they are flagged in the result and the audit event instead of being
// rejected.
func (s *Service) SubmitSession(ctx context.Context, candidateID, sessionID string, answers []Answer, clientDurationSeconds *int) (SubmitResult, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: malformed session id", ErrValidation)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if session.CandidateID != candidateID {
		return SubmitResult{}, ErrForbidden
	}
	if session.Status == StatusSubmitted {
		return SubmitResult{}, ErrAlreadySubmitted
	}

	now := s.now()
	late := now.After(session.Deadline(s.cfg.SubmitGrace))

	questions, err := s.bank.GetByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: load questions: %v", ErrStore, err)
	}
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		if q.Marks <= 0 {
			q.Marks = 1
		}
		byID[q.ID] = q
	}

	obtained := 0
	records := make([]AnswerRecord, 0, len(answers))
	graded := make(map[string]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			// Answers for questions outside this session contribute nothing
			// and are not recorded.
			continue
		}
		if graded[a.QuestionID] {
			// One graded answer per question; repeats are dropped, so
			// obtained can never exceed TotalMarks.
			continue
		}
		graded[a.QuestionID] = true
		res := s.grader.Grade(grading.Q{Type: q.Type, Marks: q.Marks, Expected: q.Expected}, a.Value)
		obtained += res.Marks
		records = append(records, AnswerRecord{
			QuestionID:    a.QuestionID,
			Value:         a.Value,
			Correct:       res.Correct,
			MarksObtained: res.Marks,
		})
	}

	percentage := 0.0
	if session.TotalMarks > 0 {
		percentage = round2(float64(obtained) / float64(session.TotalMarks) * 100)
	}
	outcome := Progress(session.Step, percentage)

	session.Answers = records
	session.ObtainedMarks = obtained
	session.Percentage = percentage
	session.Passed = outcome.Passed
	session.LevelAwarded = outcome.LevelAwarded
	session.CanProceed = outcome.CanProceed
	session.Status = StatusSubmitted
	session.SubmittedAt = &now
	session.ClientDurationSeconds = clientDurationSeconds

	ok, err := s.sessions.CompareAndSubmit(ctx, session)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: submit session: %v", ErrStore, err)
	}
	if !ok {
		// Lost the race against a concurrent submit of the same session.
		return SubmitResult{}, ErrAlreadySubmitted
	}

	if s.events != nil {
		if err := s.events.Append(ctx, "SessionSubmitted", session.ID, map[string]interface{}{
			"candidate_id": session.CandidateID,
			"step":         session.Step,
			"percentage":   session.Percentage,
			"passed":       session.Passed,
			"late":         late,
		}); err != nil {
			log.Printf("event append failed for session %s: %v", session.ID, err)
		}
	}

	result := SubmitResult{Session: session, Late: late}
	if s.awards != nil && session.LevelAwarded != "" {
		ref, err := s.awards.Award(ctx, session.CandidateID, session.LevelAwarded)
		if err != nil {
			// Certificate issuance is decoupled: the graded submission stands.
			log.Printf("certificate issuance failed for candidate %s level %s: %v", session.CandidateID, session.LevelAwarded, err)
		}
		result.CertificateRef = ref
	}
	return result, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
