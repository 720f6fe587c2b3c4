package cert_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/test-school/assessment-engine/internal/cert"
	"github.com/test-school/assessment-engine/internal/db"
	"github.com/test-school/assessment-engine/internal/exam"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	h, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	h.SetMaxOpenConns(1)
	if err := db.EnsureSchema(context.Background(), h, db.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSQLStore_CompareAndSetHighestLevel(t *testing.T) {
	store := cert.NewSQLStore(openTestDB(t, "cert_cas"))
	ctx := context.Background()

	// First contact: the insert covers the missing row as prev "".
	ok, err := store.CompareAndSetHighestLevel(ctx, "u1", "", exam.LevelA2)
	if err != nil || !ok {
		t.Fatalf("first swap: ok=%v err=%v", ok, err)
	}

	// Stale prev loses.
	ok, err = store.CompareAndSetHighestLevel(ctx, "u1", "", exam.LevelB1)
	if err != nil || ok {
		t.Fatalf("stale swap must lose: ok=%v err=%v", ok, err)
	}
	c, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if c.HighestLevel != exam.LevelA2 {
		t.Fatalf("lost swap mutated the level: %q", c.HighestLevel)
	}

	// Fresh prev wins.
	ok, err = store.CompareAndSetHighestLevel(ctx, "u1", exam.LevelA2, exam.LevelB1)
	if err != nil || !ok {
		t.Fatalf("fresh swap: ok=%v err=%v", ok, err)
	}
	c, _ = store.Get(ctx, "u1")
	if c.HighestLevel != exam.LevelB1 {
		t.Fatalf("highest level = %q, want B1", c.HighestLevel)
	}
}

func TestSQLStore_CandidateAndCertificates(t *testing.T) {
	store := cert.NewSQLStore(openTestDB(t, "cert_records"))
	ctx := context.Background()

	// Unknown candidates read as empty records, not errors.
	c, err := store.Get(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "ghost" || c.HighestLevel != "" || len(c.Certificates) != 0 {
		t.Fatalf("unexpected record for unknown candidate: %+v", c)
	}

	if err := store.PutCandidate(ctx, "u1", "Ada", "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if ok, err := store.CompareAndSetHighestLevel(ctx, "u1", "", exam.LevelA2); err != nil || !ok {
		t.Fatalf("swap: ok=%v err=%v", ok, err)
	}

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recs := []cert.Record{
		{Level: exam.LevelA1, IssuedAt: issued, ArtifactKey: "certificates/u1/A1.txt", Status: cert.StatusIssued},
		{Level: exam.LevelA2, IssuedAt: issued.Add(time.Hour), Status: cert.StatusPending},
	}
	for _, rec := range recs {
		if err := store.AppendCertificate(ctx, "u1", rec); err != nil {
			t.Fatal(err)
		}
	}

	c, err = store.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Ada" || c.Email != "ada@example.com" || c.HighestLevel != exam.LevelA2 {
		t.Fatalf("candidate mismatch: %+v", c)
	}
	if len(c.Certificates) != 2 {
		t.Fatalf("expected 2 certificate records, got %d", len(c.Certificates))
	}
	if c.Certificates[0].Level != exam.LevelA1 || c.Certificates[1].Status != cert.StatusPending {
		t.Fatalf("records out of order or mangled: %+v", c.Certificates)
	}

	// Re-registering updates identity without resetting the level.
	if err := store.PutCandidate(ctx, "u1", "Ada L.", "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	c, _ = store.Get(ctx, "u1")
	if c.Name != "Ada L." || c.HighestLevel != exam.LevelA2 {
		t.Fatalf("re-registration reset state: %+v", c)
	}
}
