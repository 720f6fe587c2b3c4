package cert

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/test-school/assessment-engine/internal/exam"
)

// SQLStore persists candidate level records and certificate issuances.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// PutCandidate registers or updates the identity fields, leaving
// highest_level untouched.
func (s *SQLStore) PutCandidate(ctx context.Context, id, name, email string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO candidates (id,name,email,highest_level)
		VALUES ($1,$2,$3,'')
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email`,
		id, name, email)
	return err
}

func (s *SQLStore) Get(ctx context.Context, candidateID string) (Candidate, error) {
	c := Candidate{ID: candidateID}
	var level string
	err := s.db.QueryRowContext(ctx, `SELECT name,email,highest_level FROM candidates WHERE id=$1`,
		candidateID).Scan(&c.Name, &c.Email, &level)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, err
	}
	c.HighestLevel = exam.Level(level)

	rows, err := s.db.QueryContext(ctx, `SELECT level,issued_at,artifact_key,status
		FROM certificates WHERE candidate_id=$1 ORDER BY issued_at`, candidateID)
	if err != nil {
		return Candidate{}, err
	}
	defer rows.Close()
	c.Certificates = []Record{}
	for rows.Next() {
		var rec Record
		var lvl string
		var issuedAt int64
		if err := rows.Scan(&lvl, &issuedAt, &rec.ArtifactKey, &rec.Status); err != nil {
			return Candidate{}, err
		}
		rec.Level = exam.Level(lvl)
		rec.IssuedAt = time.Unix(issuedAt, 0).UTC()
		c.Certificates = append(c.Certificates, rec)
	}
	return c, rows.Err()
}

// CompareAndSetHighestLevel is a single guarded upsert: the insert covers the
// first contact (stored level "") and the conflict branch only applies while
// the stored level still equals prev. Zero rows affected means a concurrent
// writer got there first.
func (s *SQLStore) CompareAndSetHighestLevel(ctx context.Context, candidateID string, prev, next exam.Level) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO candidates (id,name,email,highest_level)
		VALUES ($1,'','',$2)
		ON CONFLICT (id) DO UPDATE SET highest_level=EXCLUDED.highest_level
		WHERE candidates.highest_level=$3`,
		candidateID, string(next), string(prev))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLStore) AppendCertificate(ctx context.Context, candidateID string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates (candidate_id,level,issued_at,artifact_key,status)
		VALUES ($1,$2,$3,$4,$5)`,
		candidateID, string(rec.Level), rec.IssuedAt.Unix(), rec.ArtifactKey, rec.Status)
	return err
}
