package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/test-school/assessment-engine/internal/auth/middleware"
	"github.com/test-school/assessment-engine/internal/cert"
	"github.com/test-school/assessment-engine/internal/rbac"
	"github.com/test-school/assessment-engine/internal/storage"
)

// CandidateRegistry seeds the candidate level record with identity fields.
// Both cert stores implement it.
type CandidateRegistry interface {
	PutCandidate(ctx context.Context, id, name, email string) error
}

// POST /auth/register  { "username", "password", "name", "email" }
// Creates a candidate account. Verification codes and password recovery are
// handled outside this service.
func RegisterHandler(db *sql.DB, registry CandidateRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Name     string `json:"name"`
			Email    string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id,username,name,email,role,password_hash) VALUES ($1,$2,$3,$4,'candidate',$5)`,
			id, req.Username, req.Name, req.Email, string(hash))
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				http.Error(w, "username taken", http.StatusConflict)
				return
			}
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := registry.PutCandidate(r.Context(), id, req.Name, req.Email); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	}
}

// attachArtifactURLs resolves each issued certificate's artifact key to a
// fetchable URL.
func attachArtifactURLs(c *cert.Candidate, bs storage.BlobStore) {
	for i := range c.Certificates {
		rec := &c.Certificates[i]
		if rec.ArtifactKey == "" {
			continue
		}
		if u, err := bs.SignedURL(rec.ArtifactKey); err == nil {
			rec.ArtifactURL = u
		}
	}
}

// GET /candidates/me — the caller's level record and certificate history.
func GetMeHandler(store cert.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		c, err := store.Get(r.Context(), sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		attachArtifactURLs(&c, bs)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}
}

// GET /candidates/{candidateID} — supervisor/admin view of any record.
func GetCandidateHandler(store cert.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.Get(r.Context(), chi.URLParam(r, "candidateID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		attachArtifactURLs(&c, bs)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}
}

// MountCertificates serves certificate artifacts from the blob store.
// Candidates may only fetch their own (keys are certificates/{candidateID}/...).
func MountCertificates(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		// Clean before the ownership check so dot segments cannot sneak a
		// foreign key past the prefix.
		key := path.Clean(strings.TrimPrefix(chi.URLParam(r, "*"), "/"))
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if role != "admin" && role != "supervisor" &&
			!strings.HasPrefix(key, "certificates/"+sub+"/") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
