package api

import (
	"github.com/gorilla/mux"
	"github.com/hirepipe/hirepipe/internal/ai"
	"github.com/hirepipe/hirepipe/internal/config"
	"github.com/hirepipe/hirepipe/internal/repository/sqlite"
	"github.com/hirepipe/hirepipe/internal/workflow"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, repo *sqlite.SQLiteRepo, engine *workflow.Engine, aiEngine *ai.Engine, queue Enqueuer) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	requisitionsHandler := NewRequisitionsHandler(engine, repo, queue)
	aiHandler := NewAIHandler(aiEngine, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Requisition endpoints
	apiV1.HandleFunc("/requisitions", requisitionsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/requisitions", requisitionsHandler.List).Methods("GET")
	apiV1.HandleFunc("/requisitions/{job_id}", requisitionsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/requisitions/{job_id}/report", requisitionsHandler.Report).Methods("GET")
	apiV1.HandleFunc("/requisitions/{job_id}/snapshots", requisitionsHandler.Snapshots).Methods("GET")
	apiV1.HandleFunc("/requisitions/{job_id}/run", requisitionsHandler.Run).Methods("POST")

	// AI admin endpoints
	aiV1 := apiV1.PathPrefix("/ai").Subrouter()
	aiV1.HandleFunc("/reload", aiHandler.ReloadHandler).Methods("POST")
	aiV1.HandleFunc("/schemas", aiHandler.ListSchemasHandler).Methods("GET")
	aiV1.HandleFunc("/schemas", aiHandler.CreateOrUpdateSchemaHandler).Methods("POST")
	aiV1.HandleFunc("/schema", aiHandler.GetSchemaHandler).Methods("GET")
	aiV1.HandleFunc("/schema", aiHandler.DeleteSchemaHandler).Methods("DELETE")
	aiV1.HandleFunc("/templates", aiHandler.ListTemplatesHandler).Methods("GET")
	aiV1.HandleFunc("/templates", aiHandler.CreateOrUpdateTemplateHandler).Methods("POST")
	aiV1.HandleFunc("/template", aiHandler.GetTemplateHandler).Methods("GET")

	return r
}
