package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/test-school/assessment-engine/internal/api/http"
	auth "github.com/test-school/assessment-engine/internal/auth/middleware"
	"github.com/test-school/assessment-engine/internal/cert"
	"github.com/test-school/assessment-engine/internal/config"
	"github.com/test-school/assessment-engine/internal/db"
	"github.com/test-school/assessment-engine/internal/exam"
	"github.com/test-school/assessment-engine/internal/grading"
	"github.com/test-school/assessment-engine/internal/notify"
	"github.com/test-school/assessment-engine/internal/rbac"
	"github.com/test-school/assessment-engine/internal/storage"
	syncx "github.com/test-school/assessment-engine/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	examStore := exam.NewSQLStore(dbh)
	certStore := cert.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Engine ---
	events := syncx.NewEventRepo(dbh)
	issuer := cert.NewIssuer(certStore, cert.TextRenderer{Issuer: cfg.CertIssuer}, bs, notify.LogNotifier{}, nil).
		WithEvents(events)
	svc := exam.NewService(examStore, examStore, grading.NewDefaultGrader(), issuer, events, exam.Config{
		QuestionsPerSession: cfg.QuestionsPerSession,
		SecondsPerQuestion:  cfg.SecondsPerQuestion,
		SubmitGrace:         cfg.SubmitGrace,
	}, nil)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))
	r.Post("/auth/register", api.RegisterHandler(dbh, certStore))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Supervisor/admin: maintain the question bank
		pr.With(rbac.Require("question:create")).
			Post("/questions", api.BulkUpsertQuestionsHandler(examStore))
		pr.With(rbac.Require("question:view")).
			Get("/questions", api.ListQuestionsHandler(examStore))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(examStore))

		// Candidate flow
		pr.With(rbac.Require("session:start")).
			Post("/sessions", api.StartSessionHandler(svc))
		pr.With(rbac.Require("session:submit")).
			Post("/sessions/{sessionID}/submit", api.SubmitSessionHandler(svc))
		pr.With(rbac.RequireAny("session:view-own", "session:view-all")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(examStore))
		pr.With(rbac.RequireAny("session:view-own", "session:view-all")).
			Get("/sessions", api.ListSessionsHandler(examStore))

		// Level records and certificates
		pr.With(rbac.Require("candidate:view-own")).
			Get("/candidates/me", api.GetMeHandler(certStore, bs))
		pr.With(rbac.Require("candidate:view-all")).
			Get("/candidates/{candidateID}", api.GetCandidateHandler(certStore, bs))
		pr.Route("/certificates", func(cr chi.Router) {
			api.MountCertificates(cr, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
