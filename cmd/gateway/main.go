package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/skillforge/skillforge-tms/internal/api/http"
	"github.com/skillforge/skillforge-tms/internal/archive"
	"github.com/skillforge/skillforge-tms/internal/assess"
	auth "github.com/skillforge/skillforge-tms/internal/auth/middleware"
	"github.com/skillforge/skillforge-tms/internal/config"
	"github.com/skillforge/skillforge-tms/internal/db"
	"github.com/skillforge/skillforge-tms/internal/rbac"
	"github.com/skillforge/skillforge-tms/internal/scoring"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := assess.NewSQLStore(dbh, cfg.DBDriver)
	scorer := scoring.NewService(store)
	arc := archive.NewRepo(dbh, cfg.SiteID)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsDev
	if cfg.Mode == config.ModeProd {
		origins = cfg.CORSOriginsProd
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/tests", func(tr chi.Router) {
			tr.With(rbac.Require("test:create")).Post("/", api.CreateTestHandler(store))
			tr.With(rbac.Require("test:view")).Get("/", api.ListTestsHandler(store))
			tr.With(rbac.Require("test:view")).Get("/{id}", api.GetTestHandler(store))
			tr.With(rbac.Require("test:view")).Get("/code/{testCode}", api.GetTestByCodeHandler(store))
			tr.With(rbac.Require("test:update")).Put("/{id}", api.UpdateTestHandler(store))
			tr.With(rbac.Require("test:delete")).Delete("/{id}", api.DeleteTestHandler(store, arc))
		})

		pr.Route("/answersheets", func(sr chi.Router) {
			sr.With(rbac.Require("sheet:submit")).Post("/", api.CreateAnswerSheetHandler(store))
			sr.With(rbac.Require("sheet:view")).Get("/{uli}", api.ListAnswerSheetsByULIHandler(store))
		})

		pr.Route("/results", func(rr chi.Router) {
			rr.With(rbac.Require("result:view")).Get("/", api.ListResultsHandler(store))
			rr.With(rbac.Require("result:compute")).Post("/calculate/{uli}", api.CalculateResultHandler(scorer))
			rr.With(rbac.Require("result:compute")).Post("/calculate-all", api.CalculateAllResultsHandler(scorer))
			rr.With(rbac.RequireAny("result:view", "result:view-own")).Post("/getuser/{uli}", api.ListUserResultsHandler(store))
			rr.With(rbac.Require("result:view")).Get("/{uli}/{testCode}", api.GetResultHandler(store))
			rr.With(rbac.Require("result:remarks")).Patch("/{uli}/{testCode}/remarks", api.UpdateRemarksHandler(store))
			rr.With(rbac.Require("result:delete")).Delete("/{uli}/{testCode}", api.DeleteResultHandler(store, arc))
		})

		pr.Route("/users", func(ur chi.Router) {
			ur.With(rbac.Require("users:bulk_upsert")).Post("/bulk", api.BulkUpsertUsersHandler(dbh))
			ur.With(rbac.Require("users:list")).Get("/", api.ListUsersHandler(dbh))
			ur.With(rbac.Require("user:change_password")).Post("/change-password", api.ChangePasswordHandler(dbh))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
