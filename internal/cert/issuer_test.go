package cert

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/test-school/assessment-engine/internal/exam"
)

type fakeRenderer struct{ err error }

func (f fakeRenderer) Render(name string, level exam.Level) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("certificate " + string(level) + " for " + name), nil
}

type fakeBlobs struct {
	keys []string
	err  error
}

func (f *fakeBlobs) Put(key string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	io.Copy(io.Discard, r)
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeBlobs) Get(string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBlobs) SignedURL(key string) (string, error) {
	return "file://" + key, nil
}

type fakeNotifier struct {
	recipients []string
	err        error
}

func (f *fakeNotifier) Deliver(_ context.Context, recipient, _, _ string, _ []byte) error {
	f.recipients = append(f.recipients, recipient)
	return f.err
}

func fixedClock() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestAward_IssuesStoresAndNotifies(t *testing.T) {
	store := NewMemoryStore()
	blobs := &fakeBlobs{}
	mailer := &fakeNotifier{}
	issuer := NewIssuer(store, fakeRenderer{}, blobs, mailer, fixedClock)
	ctx := context.Background()

	if err := store.PutCandidate(ctx, "u1", "Ada", "ada@example.com"); err != nil {
		t.Fatal(err)
	}

	ref, err := issuer.Award(ctx, "u1", exam.LevelB2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "certificates/u1/B2-") {
		t.Fatalf("artifact key = %q", ref)
	}
	if len(blobs.keys) != 1 || blobs.keys[0] != ref {
		t.Fatalf("artifact not stored under the returned key: %v", blobs.keys)
	}
	if len(mailer.recipients) != 1 || mailer.recipients[0] != "ada@example.com" {
		t.Fatalf("notifications: %v", mailer.recipients)
	}

	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelB2 {
		t.Fatalf("highest level = %q", c.HighestLevel)
	}
	if len(c.Certificates) != 1 {
		t.Fatalf("expected 1 certificate record, got %d", len(c.Certificates))
	}
	rec := c.Certificates[0]
	if rec.Status != StatusIssued || rec.Level != exam.LevelB2 || rec.ArtifactKey != ref {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestAward_NoIncreaseNoSideEffects(t *testing.T) {
	store := NewMemoryStore()
	blobs := &fakeBlobs{}
	mailer := &fakeNotifier{}
	issuer := NewIssuer(store, fakeRenderer{}, blobs, mailer, fixedClock)
	ctx := context.Background()

	if _, err := issuer.Award(ctx, "u1", exam.LevelC1); err != nil {
		t.Fatal(err)
	}
	ref, err := issuer.Award(ctx, "u1", exam.LevelC1)
	if err != nil {
		t.Fatalf("a repeat award is a no-op, not an error: %v", err)
	}
	if ref != "" {
		t.Fatalf("repeat award returned a reference: %q", ref)
	}
	if len(blobs.keys) != 1 || len(mailer.recipients) != 1 {
		t.Fatalf("side effects ran twice: %d artifacts, %d mails", len(blobs.keys), len(mailer.recipients))
	}
	c, _ := store.Get(ctx, "u1")
	if len(c.Certificates) != 1 {
		t.Fatalf("expected a single certificate record, got %d", len(c.Certificates))
	}
}

func TestAward_RenderFailureLeavesPendingRecord(t *testing.T) {
	store := NewMemoryStore()
	issuer := NewIssuer(store, fakeRenderer{err: errors.New("template broken")}, &fakeBlobs{}, &fakeNotifier{}, fixedClock)
	ctx := context.Background()

	_, err := issuer.Award(ctx, "u1", exam.LevelA2)
	if err == nil {
		t.Fatalf("expected render error")
	}

	// The level raise already committed; the issuance is parked for
	// reconciliation rather than rolled back.
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelA2 {
		t.Fatalf("level raise must stand, got %q", c.HighestLevel)
	}
	if len(c.Certificates) != 1 || c.Certificates[0].Status != StatusPending {
		t.Fatalf("expected one pending record, got %+v", c.Certificates)
	}
	if c.Certificates[0].ArtifactKey != "" {
		t.Fatalf("pending record must not carry an artifact key")
	}
}

func TestAward_BlobFailureLeavesPendingRecord(t *testing.T) {
	store := NewMemoryStore()
	blobs := &fakeBlobs{err: errors.New("disk full")}
	issuer := NewIssuer(store, fakeRenderer{}, blobs, &fakeNotifier{}, fixedClock)
	ctx := context.Background()

	_, err := issuer.Award(ctx, "u1", exam.LevelA2)
	if err == nil {
		t.Fatalf("expected storage error")
	}
	c, _ := store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelA2 {
		t.Fatalf("level raise must stand, got %q", c.HighestLevel)
	}
	if len(c.Certificates) != 1 || c.Certificates[0].Status != StatusPending {
		t.Fatalf("expected one pending record, got %+v", c.Certificates)
	}
}

func TestAward_DeliveryFailureIsNonFatal(t *testing.T) {
	store := NewMemoryStore()
	mailer := &fakeNotifier{err: errors.New("smtp down")}
	issuer := NewIssuer(store, fakeRenderer{}, &fakeBlobs{}, mailer, fixedClock)
	ctx := context.Background()

	ref, err := issuer.Award(ctx, "u1", exam.LevelA1)
	if err != nil {
		t.Fatalf("delivery failure must not fail the issuance: %v", err)
	}
	if ref == "" {
		t.Fatalf("artifact reference expected")
	}
	c, _ := store.Get(ctx, "u1")
	if len(c.Certificates) != 1 || c.Certificates[0].Status != StatusIssued {
		t.Fatalf("issuance must be recorded as issued, got %+v", c.Certificates)
	}
}

func TestTextRenderer(t *testing.T) {
	r := TextRenderer{Issuer: "Test School", Now: fixedClock}
	out, err := r.Render("Ada", exam.LevelC2)
	if err != nil {
		t.Fatal(err)
	}
	body := string(out)
	for _, want := range []string{"Ada", "C2", "Test School"} {
		if !strings.Contains(body, want) {
			t.Fatalf("rendered certificate missing %q:\n%s", want, body)
		}
	}
}
