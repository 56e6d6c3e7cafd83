package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	api "github.com/sinavlab/optik/internal/api/http"
	auth "github.com/sinavlab/optik/internal/auth/middleware"
	"github.com/sinavlab/optik/internal/config"
	"github.com/sinavlab/optik/internal/db"
	"github.com/sinavlab/optik/internal/eventlog"
	"github.com/sinavlab/optik/internal/exam"
	"github.com/sinavlab/optik/internal/rbac"
	"github.com/sinavlab/optik/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env")
	}
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	svc := exam.NewService(store, bs, eventlog.NewRepo(dbh), cfg.DecodeWorkers)

	// --- Auth ---
	users := []auth.LocalUser{
		{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: "admin"},
		{Username: cfg.OperatorUser, PassHash: cfg.OperatorPassHash, Role: "operator"},
	}
	authSvc := auth.NewAuthService(cfg.AuthSecret, users)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/profiles", api.ListProfilesHandler())

		pr.With(rbac.Require("exam:create")).Post("/exams", api.CreateExamHandler(svc))
		pr.With(rbac.Require("exam:view")).Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}", api.GetExamHandler(store))

		pr.With(rbac.Require("batch:decode")).Post("/exams/{examID}/batches", api.CreateBatchHandler(svc, log))
		pr.With(rbac.Require("batch:view")).Get("/exams/{examID}/batches", api.ListBatchesHandler(store))
		pr.With(rbac.Require("batch:view")).Get("/batches/{batchID}", api.GetBatchHandler(store))
		pr.With(rbac.Require("batch:view")).Get("/batches/{batchID}/records", api.ListRecordsHandler(store))

		pr.With(rbac.Require("batch:score")).Post("/batches/{batchID}/score", api.ScoreBatchHandler(svc, log))
		pr.With(rbac.Require("score:view")).Get("/batches/{batchID}/scores", api.ListScoresHandler(store))

		pr.With(rbac.Require("decode:preview")).Post("/decode", api.DecodePreviewHandler())
	})

	log.Infof("optikd listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
