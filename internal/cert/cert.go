package cert

import (
	"context"
	"time"

	"github.com/test-school/assessment-engine/internal/exam"
)

// Issuance status. A record is created "issued" on the happy path; render or
// artifact-store failures leave a "pending" record for later reconciliation.
const (
	StatusIssued  = "issued"
	StatusPending = "pending"
)

// Record is one certificate issuance in a candidate's history. ArtifactURL
// is filled by the read surface from the blob store; it is never persisted.
type Record struct {
	Level       exam.Level `json:"level"`
	IssuedAt    time.Time  `json:"issued_at"`
	ArtifactKey string     `json:"artifact_key,omitempty"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	Status      string     `json:"status"`
}

// Candidate is the level record for one candidate. HighestLevel is empty
// until a first level is achieved and only ever moves forward.
type Candidate struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	HighestLevel exam.Level `json:"highest_level,omitempty"`
	Certificates []Record   `json:"certificates"`
}

// Store is the candidate level store. CompareAndSetHighestLevel is the only
// writer of HighestLevel; it must be atomic with respect to concurrent calls
// for the same candidate.
type Store interface {
	Get(ctx context.Context, candidateID string) (Candidate, error)
	// CompareAndSetHighestLevel sets next only if the stored level still
	// equals prev, returning whether the swap applied. A missing candidate
	// row counts as prev == "".
	CompareAndSetHighestLevel(ctx context.Context, candidateID string, prev, next exam.Level) (bool, error)
	AppendCertificate(ctx context.Context, candidateID string, rec Record) error
}

// Renderer produces the certificate artifact for a candidate and level.
type Renderer interface {
	Render(candidateName string, level exam.Level) ([]byte, error)
}
