package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/devmatch/internal/auth"
	"github.com/garnizeh/devmatch/internal/config"
	"github.com/garnizeh/devmatch/internal/db"
	"github.com/garnizeh/devmatch/internal/repository/sqlite"
	"github.com/garnizeh/devmatch/internal/schemas"
	"github.com/garnizeh/devmatch/internal/service/jobrequest"
	"github.com/garnizeh/devmatch/internal/upload"
	"github.com/garnizeh/devmatch/pkg/models"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	r.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))

	// Repository
	repo := sqlite.New(conn)

	validator, err := schemas.New()
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration)
	authc := NewAuthenticator(tokens, repo, repo)
	store := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxFileBytes)
	requestSvc := jobrequest.NewService(repo, repo)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, tokens, validator, cfg.BcryptCost, cfg.TokenDuration)
	developerHandler := NewDeveloperHandler(repo)
	employerHandler := NewEmployerHandler(repo)
	projectHandler := NewProjectHandler(repo)
	requestHandler := NewJobRequestHandler(requestSvc)
	searchHandler := NewSearchHandler(repo, validator)
	dashboardHandler := NewDashboardHandler(repo, repo, repo, repo)
	uploadHandler := NewUploadHandler(store, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/api/health", systemHandler.HealthHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Auth endpoints
	authr := api.PathPrefix("/auth").Subrouter()
	authr.HandleFunc("/developer/signup", authHandler.DeveloperSignup).Methods("POST")
	authr.HandleFunc("/employer/signup", authHandler.EmployerSignup).Methods("POST")
	authr.HandleFunc("/login", authHandler.Login).Methods("POST")
	authr.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	authed := api.PathPrefix("/auth").Subrouter()
	authed.Use(authc.Require)
	authed.HandleFunc("/me", authHandler.Me).Methods("GET")
	authed.HandleFunc("/change-password", authHandler.ChangePassword).Methods("POST")

	// Public reads carry optional credentials so owners see their own
	// private rows.
	public := api.NewRoute().Subrouter()
	public.Use(authc.Optional)
	public.HandleFunc("/developers", developerHandler.List).Methods("GET")
	public.HandleFunc("/developers/{id:[0-9]+}", developerHandler.Get).Methods("GET")
	public.HandleFunc("/employers", employerHandler.List).Methods("GET")
	public.HandleFunc("/employers/{id:[0-9]+}", employerHandler.Get).Methods("GET")
	public.HandleFunc("/projects", projectHandler.List).Methods("GET")
	public.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Get).Methods("GET")

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authc.Require)

	protected.HandleFunc("/developers/{id:[0-9]+}", developerHandler.Update).Methods("PUT")
	protected.Handle("/developers/{id:[0-9]+}",
		RequireRole(models.RoleAdmin)(http.HandlerFunc(developerHandler.Delete))).Methods("DELETE")
	protected.Handle("/developers/profile/availability",
		RequireRole(models.RoleDeveloper)(http.HandlerFunc(developerHandler.SetAvailability))).Methods("PATCH")

	protected.HandleFunc("/employers/{id:[0-9]+}", employerHandler.Update).Methods("PUT")
	protected.Handle("/employers/{id:[0-9]+}",
		RequireRole(models.RoleAdmin)(http.HandlerFunc(employerHandler.Delete))).Methods("DELETE")

	protected.Handle("/projects",
		RequireRole(models.RoleDeveloper, models.RoleAdmin)(http.HandlerFunc(projectHandler.Create))).Methods("POST")
	protected.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Update).Methods("PUT")
	protected.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/job-requests", requestHandler.List).Methods("GET")
	protected.Handle("/job-requests",
		RequireRole(models.RoleEmployer, models.RoleAdmin)(http.HandlerFunc(requestHandler.Create))).Methods("POST")
	protected.HandleFunc("/job-requests/{id:[0-9]+}", requestHandler.Get).Methods("GET")
	protected.HandleFunc("/job-requests/{id:[0-9]+}", requestHandler.Update).Methods("PUT")
	protected.Handle("/job-requests/{id:[0-9]+}",
		RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.Delete))).Methods("DELETE")
	protected.Handle("/job-requests/{id:[0-9]+}/accept",
		RequireRole(models.RoleDeveloper)(http.HandlerFunc(requestHandler.Accept))).Methods("PATCH")
	protected.Handle("/job-requests/{id:[0-9]+}/reject",
		RequireRole(models.RoleDeveloper)(http.HandlerFunc(requestHandler.Reject))).Methods("PATCH")

	protected.HandleFunc("/search/developers", searchHandler.Search).Methods("POST")
	protected.HandleFunc("/search/developers/quick", searchHandler.Quick).Methods("GET")
	protected.HandleFunc("/search/skills", searchHandler.Skills).Methods("GET")
	protected.HandleFunc("/search/cities", searchHandler.Cities).Methods("GET")
	protected.HandleFunc("/search/statistics", searchHandler.Statistics).Methods("GET")

	protected.Handle("/dashboard/developer",
		RequireRole(models.RoleDeveloper)(http.HandlerFunc(dashboardHandler.Developer))).Methods("GET")
	protected.Handle("/dashboard/employer",
		RequireRole(models.RoleEmployer)(http.HandlerFunc(dashboardHandler.Employer))).Methods("GET")
	protected.Handle("/dashboard/admin",
		RequireRole(models.RoleAdmin)(http.HandlerFunc(dashboardHandler.Admin))).Methods("GET")
	protected.Handle("/dashboard/analytics",
		RequireRole(models.RoleAdmin)(http.HandlerFunc(dashboardHandler.Analytics))).Methods("GET")

	protected.HandleFunc("/upload/{kind:resume|profile-picture|company-logo|project-image}", uploadHandler.Single).Methods("POST")
	protected.HandleFunc("/upload/multiple", uploadHandler.Multiple).Methods("POST")
	protected.HandleFunc("/upload/files", uploadHandler.ListFiles).Methods("GET")
	protected.HandleFunc("/upload/files/{filename}", uploadHandler.DeleteFile).Methods("DELETE")

	// Stored files are served straight from disk.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Upload.Dir))))

	return r, nil
}
