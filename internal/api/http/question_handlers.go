package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/test-school/assessment-engine/internal/exam"
)

// POST /questions  — bulk upsert, JSON array of questions (answer keys
// included; this surface is supervisor/admin only).
func BulkUpsertQuestionsHandler(bank exam.QuestionBank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []exam.Question
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array of questions", http.StatusBadRequest)
			return
		}
		count := 0
		for _, q := range rows {
			if q.ID == "" || q.Text == "" || q.Type == "" || q.Level.Rank() < 0 {
				http.Error(w, "each question needs id, text, type and a valid level", http.StatusBadRequest)
				return
			}
			if err := bank.Put(r.Context(), q); err != nil {
				http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			count++
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"upserted": count})
	}
}

// GET /questions?level=B1&limit=50&offset=0 — management view of the bank,
// answer keys included (this surface is supervisor/admin only).
func ListQuestionsHandler(bank exam.QuestionBank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := exam.Level(strings.TrimSpace(r.URL.Query().Get("level")))
		if level != "" && level.Rank() < 0 {
			http.Error(w, "unknown level", http.StatusBadRequest)
			return
		}
		list, err := bank.ListQuestions(r.Context(), level,
			parseIntDefault(r.URL.Query().Get("limit"), 50),
			parseIntDefault(r.URL.Query().Get("offset"), 0))
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// DELETE /questions/{questionID}
func DeleteQuestionHandler(bank exam.QuestionBank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := bank.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
