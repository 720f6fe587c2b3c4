package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore implements QuestionBank and SessionStore over database/sql.
// Placeholders use the $n form, which both the pgx and modernc sqlite
// drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, q Question) error {
	if q.Marks <= 0 {
		q.Marks = 1
	}
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	exp, err := json.Marshal(q.Expected)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions (id,text,options_json,type,competency,level,marks,expected_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET text=EXCLUDED.text, options_json=EXCLUDED.options_json,
			type=EXCLUDED.type, competency=EXCLUDED.competency, level=EXCLUDED.level,
			marks=EXCLUDED.marks, expected_json=EXCLUDED.expected_json`,
		q.ID, q.Text, string(opts), q.Type, q.Competency, string(q.Level), q.Marks, string(exp))
	return err
}

func (s *SQLStore) Sample(ctx context.Context, levels [2]Level, n int) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,text,options_json,type,competency,level,marks,expected_json
		FROM questions WHERE level IN ($1,$2) ORDER BY RANDOM() LIMIT $3`,
		string(levels[0]), string(levels[1]), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(out) < n {
		return nil, ErrInsufficientPool
	}
	return out, nil
}

func (s *SQLStore) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,text,options_json,type,competency,level,marks,expected_json
		FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (s *SQLStore) ListQuestions(ctx context.Context, level Level, limit, offset int) ([]Question, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,text,options_json,type,competency,level,marks,expected_json
		FROM questions WHERE ($1 = '' OR level = $1) ORDER BY id LIMIT $2 OFFSET $3`,
		string(level), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanQuestions(rows *sql.Rows) ([]Question, error) {
	var out []Question
	for rows.Next() {
		var q Question
		var level, optsJSON, expJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optsJSON, &q.Type, &q.Competency, &level, &q.Marks, &expJSON); err != nil {
			return nil, err
		}
		q.Level = Level(level)
		if err := json.Unmarshal([]byte(optsJSON), &q.Options); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(expJSON), &q.Expected); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Create(ctx context.Context, sess Session) error {
	qids, err := json.Marshal(sess.QuestionIDs)
	if err != nil {
		return err
	}
	answers, err := json.Marshal(sess.Answers)
	if err != nil {
		return err
	}
	levels, err := json.Marshal(sess.LevelsTested)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions
		(id,candidate_id,step,levels_json,question_ids_json,answers_json,total_marks,obtained_marks,
		 percentage,passed,level_awarded,can_proceed,status,started_at,duration_seconds,source_ip)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,0,0,'',0,$8,$9,$10,$11)`,
		sess.ID, sess.CandidateID, sess.Step, string(levels), string(qids), string(answers),
		sess.TotalMarks, sess.Status, sess.StartedAt.Unix(), sess.DurationSeconds, sess.SourceIP)
	return err
}

const sessionCols = `id,candidate_id,step,levels_json,question_ids_json,answers_json,total_marks,
	obtained_marks,percentage,passed,level_awarded,can_proceed,status,started_at,submitted_at,
	duration_seconds,client_duration_seconds,source_ip`

func (s *SQLStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var levelsJSON, qidsJSON, answersJSON, levelAwarded string
	var passed, canProceed int
	var startedAt int64
	var submittedAt, clientDuration sql.NullInt64
	err := row.Scan(&sess.ID, &sess.CandidateID, &sess.Step, &levelsJSON, &qidsJSON, &answersJSON,
		&sess.TotalMarks, &sess.ObtainedMarks, &sess.Percentage, &passed, &levelAwarded,
		&canProceed, &sess.Status, &startedAt, &submittedAt, &sess.DurationSeconds,
		&clientDuration, &sess.SourceIP)
	if err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(levelsJSON), &sess.LevelsTested); err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(qidsJSON), &sess.QuestionIDs); err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return Session{}, err
	}
	sess.Passed = passed != 0
	sess.CanProceed = canProceed != 0
	sess.LevelAwarded = Level(levelAwarded)
	sess.StartedAt = time.Unix(startedAt, 0).UTC()
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0).UTC()
		sess.SubmittedAt = &t
	}
	if clientDuration.Valid {
		v := int(clientDuration.Int64)
		sess.ClientDurationSeconds = &v
	}
	return sess, nil
}

// CompareAndSubmit writes the graded state in one guarded UPDATE: it only
// matches while the stored row is still pending, which serializes concurrent
// submits of the same session.
func (s *SQLStore) CompareAndSubmit(ctx context.Context, sess Session) (bool, error) {
	answers, err := json.Marshal(sess.Answers)
	if err != nil {
		return false, err
	}
	var submittedAt interface{}
	if sess.SubmittedAt != nil {
		submittedAt = sess.SubmittedAt.Unix()
	}
	var clientDuration interface{}
	if sess.ClientDurationSeconds != nil {
		clientDuration = *sess.ClientDurationSeconds
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET
		answers_json=$1, obtained_marks=$2, percentage=$3, passed=$4, level_awarded=$5,
		can_proceed=$6, status=$7, submitted_at=$8, client_duration_seconds=$9
		WHERE id=$10 AND status=$11`,
		string(answers), sess.ObtainedMarks, sess.Percentage, boolInt(sess.Passed),
		string(sess.LevelAwarded), boolInt(sess.CanProceed), StatusSubmitted,
		submittedAt, clientDuration, sess.ID, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Session, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if opts.CandidateID != "" {
		where = append(where, "candidate_id="+arg(opts.CandidateID))
	}
	if opts.Step != 0 {
		where = append(where, "step="+arg(opts.Step))
	}
	if opts.Status != "" {
		where = append(where, "status="+arg(opts.Status))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + sessionCols + ` FROM sessions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY started_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(opts.Offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
