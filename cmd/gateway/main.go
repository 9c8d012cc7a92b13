package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/wenw80/GrowAssess-sub000/internal/api/http"
	"github.com/wenw80/GrowAssess-sub000/internal/assess"
	"github.com/wenw80/GrowAssess-sub000/internal/audit"
	auth "github.com/wenw80/GrowAssess-sub000/internal/auth/middleware"
	"github.com/wenw80/GrowAssess-sub000/internal/config"
	"github.com/wenw80/GrowAssess-sub000/internal/db"
	"github.com/wenw80/GrowAssess-sub000/internal/grading"
	"github.com/wenw80/GrowAssess-sub000/internal/rbac"
	"github.com/wenw80/GrowAssess-sub000/internal/settings"
)

func main() {
	cfg := config.FromEnv()
	if cfg.AdminPassHash == "" {
		log.Fatal("ADMIN_PASS_HASH is required (bcrypt hash of the admin password)")
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := assess.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewLog(dbh)

	settingsStore := settings.NewStore(dbh)
	gradingDefaults := grading.Config{
		BaseURL: cfg.GradingBaseURL,
		Model:   cfg.GradingModel,
		APIKey:  cfg.GradingAPIKey,
	}
	provider := settings.NewProvider(settingsStore, gradingDefaults)
	suggester := grading.NewHTTPSuggester(&http.Client{Timeout: 60 * time.Second})

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	accounts := []auth.StaffAccount{
		{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: "admin"},
	}
	if cfg.ReviewerPassHash != "" {
		accounts = append(accounts, auth.StaffAccount{
			Username: cfg.ReviewerUser, PassHash: cfg.ReviewerPassHash, Role: "reviewer",
		})
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, accounts))

	// Candidate surface: addressed by access token, no JWT.
	r.Route("/take/{token}", func(tr chi.Router) {
		tr.Get("/", api.GetTakeHandler(store))
		tr.Post("/start", api.StartAssignmentHandler(store))
		tr.Post("/answers", api.SubmitAnswerHandler(store))
		tr.Post("/complete", api.CompleteAssignmentHandler(store))
		tr.Get("/summary", api.TakeSummaryHandler(store))
	})

	// Staff API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("test:create")).Post("/tests", api.CreateTestHandler(store))
		pr.With(rbac.Require("test:edit")).Put("/tests/{testID}", api.UpdateTestHandler(store))
		pr.With(rbac.Require("test:view")).Get("/tests/{testID}", api.GetTestHandler(store))
		pr.With(rbac.Require("test:delete")).Delete("/tests/{testID}", api.DeleteTestHandler(store))
		pr.With(rbac.Require("test:view")).Get("/tests", api.ListTestsHandler(store))
		pr.With(rbac.RequireAny("export:results")).Get("/tests/{testID}/results", api.ExportResultsHandler(store))

		pr.With(rbac.Require("candidate:create")).Post("/candidates", api.CreateCandidateHandler(store))
		pr.With(rbac.Require("candidate:view")).Get("/candidates/{candidateID}", api.GetCandidateHandler(store))
		pr.With(rbac.Require("candidate:view")).Get("/candidates", api.ListCandidatesHandler(store))

		pr.With(rbac.Require("assignment:create")).Post("/assignments", api.CreateAssignmentHandler(store))
		pr.With(rbac.Require("assignment:view")).Get("/assignments", api.ListAssignmentsHandler(store))
		pr.With(rbac.Require("assignment:view")).Get("/assignments/{assignmentID}", api.GetAssignmentHandler(store))
		pr.With(rbac.Require("assignment:delete")).Delete("/assignments/{assignmentID}", api.DeleteAssignmentHandler(store))
		pr.With(rbac.Require("assignment:view")).Get("/assignments/{assignmentID}/events", api.ListAssignmentEventsHandler(events))

		pr.With(rbac.Require("grading:apply")).
			Put("/assignments/{assignmentID}/responses/{questionID}/grade", api.ApplyGradeHandler(store))
		pr.With(rbac.Require("grading:batch")).
			Post("/assignments/{assignmentID}/grading/batch", api.BatchGradeHandler(store, suggester, provider))

		pr.With(rbac.Require("settings:write")).Put("/settings/{key}", api.PutSettingHandler(settingsStore))
		pr.With(rbac.Require("settings:read")).Get("/settings/{key}", api.GetSettingHandler(settingsStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
