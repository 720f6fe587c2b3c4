package cert

import (
	"fmt"
	"time"

	"github.com/test-school/assessment-engine/internal/exam"
)

// TextRenderer is the built-in Renderer: a deterministic plain-text artifact.
// Production deployments swap in a real document renderer behind the same
// interface.
type TextRenderer struct {
	Issuer string
	Now    func() time.Time
}

func (r TextRenderer) Render(candidateName string, level exam.Level) ([]byte, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	issuer := r.Issuer
	if issuer == "" {
		issuer = "Test School"
	}
	body := fmt.Sprintf(
		"CERTIFICATE OF ACHIEVEMENT\n\n%s\n\nhas achieved competency level %s\n\nIssued by %s on %s\n",
		candidateName, level, issuer, now().UTC().Format("2006-01-02"),
	)
	return []byte(body), nil
}
