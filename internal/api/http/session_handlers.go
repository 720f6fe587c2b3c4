package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/test-school/assessment-engine/internal/auth/middleware"
	"github.com/test-school/assessment-engine/internal/exam"
	"github.com/test-school/assessment-engine/internal/rbac"
)

// POST /sessions  { "step": 1 }
func StartSessionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID := authmw.SubjectFromContext(r.Context())
		if candidateID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Step int `json:"step"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.StartSession(r.Context(), candidateID, req.Step, clientIP(r))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /sessions/{sessionID}/submit
// { "answers": [{"question_id": "...", "answer": ...}], "client_duration_seconds": 120 }
func SubmitSessionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID := authmw.SubjectFromContext(r.Context())
		if candidateID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		var req struct {
			Answers               []exam.Answer `json:"answers"`
			ClientDurationSeconds *int          `json:"client_duration_seconds,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.SubmitSession(r.Context(), candidateID, sessionID, req.Answers, req.ClientDurationSeconds)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /sessions/{sessionID}
// Candidates see their own sessions; session:view-all roles see any.
func GetSessionHandler(store exam.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		s, err := store.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if s.CandidateID != sub && role != "admin" && role != "supervisor" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

// GET /sessions?candidate_id=...&step=2&status=submitted&limit=50&offset=0
// Roles without session:view-all are scoped to their own sessions.
func ListSessionsHandler(store exam.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())

		candidateID := strings.TrimSpace(r.URL.Query().Get("candidate_id"))
		if role != "admin" && role != "supervisor" {
			candidateID = sub
		}
		list, err := store.List(r.Context(), exam.ListOpts{
			CandidateID: candidateID,
			Step:        parseIntDefault(r.URL.Query().Get("step"), 0),
			Status:      strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:       parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:      parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
