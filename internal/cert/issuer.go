package cert

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/test-school/assessment-engine/internal/exam"
	"github.com/test-school/assessment-engine/internal/notify"
	"github.com/test-school/assessment-engine/internal/storage"
)

// Issuer ties the trigger to the side effects: render the artifact, store it,
// record the issuance and notify the candidate. It satisfies exam.Awarder.
type Issuer struct {
	trigger  *Trigger
	store    Store
	renderer Renderer
	blobs    storage.BlobStore
	notifier notify.Notifier
	events   exam.EventSink // optional
	now      func() time.Time
}

func NewIssuer(store Store, renderer Renderer, blobs storage.BlobStore, notifier notify.Notifier, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		trigger:  NewTrigger(store),
		store:    store,
		renderer: renderer,
		blobs:    blobs,
		notifier: notifier,
		now:      now,
	}
}

// WithEvents attaches an audit sink; issuances append a CertificateIssued
// event. Append failures are logged, never fatal.
func (i *Issuer) WithEvents(sink exam.EventSink) *Issuer {
	i.events = sink
	return i
}

// Award implements exam.Awarder: it runs the trigger and, when the level
// genuinely increased, executes the issuance command. The returned reference
// is the artifact key, or "" when nothing was issued.
func (i *Issuer) Award(ctx context.Context, candidateID string, level exam.Level) (string, error) {
	cmd, err := i.trigger.Raise(ctx, candidateID, level)
	if err != nil || cmd == nil {
		return "", err
	}
	return i.Execute(ctx, *cmd)
}

// Execute performs one issuance command. The level increase has already been
// committed by the trigger; failures here never roll it back. A render or
// artifact-store failure records a pending issuance so a reconciliation pass
// can retry it, and a delivery failure is logged only.
func (i *Issuer) Execute(ctx context.Context, cmd IssueCommand) (string, error) {
	issuedAt := i.now()

	artifact, err := i.renderer.Render(cmd.CandidateName, cmd.Level)
	if err != nil {
		i.recordPending(ctx, cmd, issuedAt)
		return "", fmt.Errorf("render certificate: %w", err)
	}

	key := fmt.Sprintf("certificates/%s/%s-%d.txt", cmd.CandidateID, cmd.Level, issuedAt.Unix())
	if _, err := i.blobs.Put(key, bytes.NewReader(artifact)); err != nil {
		i.recordPending(ctx, cmd, issuedAt)
		return "", fmt.Errorf("store certificate artifact: %w", err)
	}

	rec := Record{Level: cmd.Level, IssuedAt: issuedAt, ArtifactKey: key, Status: StatusIssued}
	if err := i.store.AppendCertificate(ctx, cmd.CandidateID, rec); err != nil {
		return "", fmt.Errorf("record certificate: %w", err)
	}

	if i.events != nil {
		if err := i.events.Append(ctx, "CertificateIssued", cmd.CandidateID, map[string]interface{}{
			"level":        cmd.Level,
			"artifact_key": key,
		}); err != nil {
			log.Printf("event append failed for candidate %s: %v", cmd.CandidateID, err)
		}
	}

	if i.notifier != nil {
		subject := fmt.Sprintf("Certificate %s", cmd.Level)
		body := fmt.Sprintf("Congratulations! You achieved %s.", cmd.Level)
		if err := i.notifier.Deliver(ctx, cmd.Recipient, subject, body, artifact); err != nil {
			log.Printf("certificate delivery failed for candidate %s: %v", cmd.CandidateID, err)
		}
	}
	return key, nil
}

func (i *Issuer) recordPending(ctx context.Context, cmd IssueCommand, at time.Time) {
	rec := Record{Level: cmd.Level, IssuedAt: at, Status: StatusPending}
	if err := i.store.AppendCertificate(ctx, cmd.CandidateID, rec); err != nil {
		log.Printf("record pending certificate for %s: %v", cmd.CandidateID, err)
	}
}
