// filepath: internal/httpserver/router.go
package httpserver

import (
	"net/http"

	"scmdash/internal/api/handlers"
	"scmdash/internal/services/auth"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions tunes the router beyond the handlers themselves.
type RouterOptions struct {
	MaxBodySize  int64
	LoginLimiter *RateLimiter
}

// SetupRouter configures the main router and its sub-routers.
func SetupRouter(h *handlers.Handlers, am *auth.Middleware, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, Logging, Metrics, MaxBodySize(opts.MaxBodySize))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "The requested resource was not found.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// Public Endpoints
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	r.HandleFunc("/api/info", h.GetInfo).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Public token endpoints
	login := http.Handler(http.HandlerFunc(h.Login))
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Middleware(login)
	}
	r.Handle("/api/auth/login", login).Methods("POST")
	r.HandleFunc("/api/auth/refresh-token", h.RefreshToken).Methods("POST")

	// Authenticated API Routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(am.AuthMiddleware)

	apiRouter.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	apiRouter.HandleFunc("/auth/validate", h.ValidateSession).Methods("GET")
	apiRouter.HandleFunc("/auth/me/password", h.UpdateOwnPassword).Methods("PATCH")

	svn := apiRouter.PathPrefix("/svn").Subrouter()
	addUserRoutes(svn, h, am)
	addRepositoryRoutes(svn, h, am)
	addMigrationRoutes(svn, h, am)
	addBackupRoutes(svn, h, am)
	addScheduleRoutes(svn, h, am)
	addDashboardRoutes(svn, h, am)

	addGitRoutes(apiRouter.PathPrefix("/git").Subrouter(), h, am)

	viewRouter := apiRouter.PathPrefix("").Subrouter()
	viewRouter.Use(am.RoleMiddleware(auth.RoleCanView))
	viewRouter.HandleFunc("/superset/guest-token", h.SupersetGuestToken).Methods("POST")

	addAdminRoutes(apiRouter, h, am)

	return r
}

// roleRouters returns the view and edit sub-routers of r.
func roleRouters(r *mux.Router, am *auth.Middleware) (view, edit *mux.Router) {
	view = r.PathPrefix("").Subrouter()
	view.Use(am.RoleMiddleware(auth.RoleCanView))
	edit = r.PathPrefix("").Subrouter()
	edit.Use(am.RoleMiddleware(auth.RoleCanEdit))
	return view, edit
}

func addUserRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/users", h.ListUsers).Methods("GET")
	view.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")

	edit.HandleFunc("/users", h.CreateUser).Methods("POST")
	edit.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods("PUT")
	edit.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods("DELETE")
	edit.HandleFunc("/users/{id:[0-9]+}/status", h.UpdateUserStatus).Methods("PATCH")
}

func addRepositoryRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/repositories", h.ListRepositories).Methods("GET")
	view.HandleFunc("/repositories/{id:[0-9]+}", h.GetRepository).Methods("GET")

	edit.HandleFunc("/repositories", h.CreateRepository).Methods("POST")
	edit.HandleFunc("/repositories/{id:[0-9]+}", h.UpdateRepository).Methods("PUT")
	edit.HandleFunc("/repositories/{id:[0-9]+}", h.DeleteRepository).Methods("DELETE")
	edit.HandleFunc("/repositories/{id:[0-9]+}/members", h.UpdateRepositoryMembers).Methods("PUT")
	edit.HandleFunc("/repositories/{id:[0-9]+}/migration-status", h.UpdateRepositoryMigrationStatus).Methods("PATCH")
}

func addMigrationRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/migrations", h.ListMigrations).Methods("GET")
	view.HandleFunc("/migrations/{id:[0-9]+}", h.GetMigration).Methods("GET")

	edit.HandleFunc("/migrations", h.CreateMigration).Methods("POST")
	edit.HandleFunc("/migrations/{id:[0-9]+}", h.UpdateMigration).Methods("PUT")
	edit.HandleFunc("/migrations/{id:[0-9]+}", h.DeleteMigration).Methods("DELETE")
	edit.HandleFunc("/migrations/{id:[0-9]+}/start", h.StartMigration).Methods("POST")
	edit.HandleFunc("/migrations/{id:[0-9]+}/pause", h.PauseMigration).Methods("POST")
	edit.HandleFunc("/migrations/{id:[0-9]+}/complete", h.CompleteMigration).Methods("POST")
	edit.HandleFunc("/migrations/{id:[0-9]+}/retry", h.RetryMigration).Methods("POST")
}

func addBackupRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/backups", h.ListBackups).Methods("GET")
	view.HandleFunc("/backups/statistics", h.BackupStatistics).Methods("GET")
	view.HandleFunc("/backups/last-full", h.LastFullBackup).Methods("GET")
	view.HandleFunc("/backups/backup-id/{backupId}", h.GetBackupByCode).Methods("GET")
	view.HandleFunc("/backups/{id:[0-9]+}", h.GetBackup).Methods("GET")

	edit.HandleFunc("/backups", h.CreateBackup).Methods("POST")
	edit.HandleFunc("/backups/{id:[0-9]+}", h.DeleteBackup).Methods("DELETE")
	edit.HandleFunc("/backups/{id:[0-9]+}/retry", h.RetryBackup).Methods("POST")
}

func addScheduleRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/backup-schedules", h.ListSchedules).Methods("GET")
	view.HandleFunc("/backup-schedules/next", h.NextSchedule).Methods("GET")
	view.HandleFunc("/backup-schedules/schedule-id/{scheduleId}", h.GetScheduleByCode).Methods("GET")
	view.HandleFunc("/backup-schedules/{id:[0-9]+}", h.GetSchedule).Methods("GET")

	edit.HandleFunc("/backup-schedules", h.CreateSchedule).Methods("POST")
	edit.HandleFunc("/backup-schedules/{id:[0-9]+}", h.UpdateSchedule).Methods("PUT")
	edit.HandleFunc("/backup-schedules/{id:[0-9]+}", h.DeleteSchedule).Methods("DELETE")
	edit.HandleFunc("/backup-schedules/{id:[0-9]+}/toggle-status", h.ToggleScheduleStatus).Methods("POST")
}

func addDashboardRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, _ := roleRouters(r, am)
	view.HandleFunc("/dashboard/metrics", h.DashboardMetrics).Methods("GET")
	view.HandleFunc("/dashboard/recent-activity", h.RecentActivity).Methods("GET")
	view.HandleFunc("/dashboard/migration-progress", h.MigrationProgress).Methods("GET")
	view.HandleFunc("/dashboard/backup-summary", h.BackupSummary).Methods("GET")
}

// addGitRoutes registers the Git inventory API. Literal segments come before
// the {id} patterns.
func addGitRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	view, edit := roleRouters(r, am)
	view.HandleFunc("/dashboard/summary", h.GitSummary).Methods("GET")

	view.HandleFunc("/users", h.ListGitUsers).Methods("GET")
	view.HandleFunc("/users/roles", h.GitUserRoles).Methods("GET")
	view.HandleFunc("/users/{id:[0-9]+}", h.GetGitUser).Methods("GET")
	edit.HandleFunc("/users", h.CreateGitUser).Methods("POST")
	edit.HandleFunc("/users/{id:[0-9]+}", h.UpdateGitUser).Methods("PUT")
	edit.HandleFunc("/users/{id:[0-9]+}", h.DeleteGitUser).Methods("DELETE")

	view.HandleFunc("/repositories", h.ListGitRepositories).Methods("GET")
	view.HandleFunc("/repositories/search", h.SearchGitRepositories).Methods("GET")
	view.HandleFunc("/repositories/departments", h.GitRepositoryDepartments).Methods("GET")
	view.HandleFunc("/repositories/{id:[0-9]+}", h.GetGitRepository).Methods("GET")
	edit.HandleFunc("/repositories", h.CreateGitRepository).Methods("POST")
	edit.HandleFunc("/repositories/{id:[0-9]+}", h.UpdateGitRepository).Methods("PUT")
	edit.HandleFunc("/repositories/{id:[0-9]+}", h.DeleteGitRepository).Methods("DELETE")

	view.HandleFunc("/backups", h.ListGitBackups).Methods("GET")
	view.HandleFunc("/backups/count", h.GitBackupCounts).Methods("GET")
	view.HandleFunc("/backups/status/{status}", h.ListGitBackupsByStatus).Methods("GET")
	view.HandleFunc("/backups/repository/{id:[0-9]+}", h.GetGitBackupByRepository).Methods("GET")
	view.HandleFunc("/backups/{id:[0-9]+}", h.GetGitBackup).Methods("GET")
	edit.HandleFunc("/backups", h.CreateGitBackup).Methods("POST")
	edit.HandleFunc("/backups/{id:[0-9]+}", h.UpdateGitBackup).Methods("PUT")
	edit.HandleFunc("/backups/run/{id:[0-9]+}", h.RunGitBackup).Methods("POST")
}

// addAdminRoutes configures account management and maintenance endpoints.
func addAdminRoutes(r *mux.Router, h *handlers.Handlers, am *auth.Middleware) {
	adminRouter := r.PathPrefix("").Subrouter()
	adminRouter.Use(am.RoleMiddleware(auth.RoleIsAdmin))
	adminRouter.HandleFunc("/accounts", h.GetAccounts).Methods("GET")
	adminRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	adminRouter.HandleFunc("/accounts/{id:[0-9]+}", h.UpdateAccount).Methods("PUT")
	adminRouter.HandleFunc("/accounts/{id:[0-9]+}", h.DeleteAccount).Methods("DELETE")
	adminRouter.HandleFunc("/admin/housekeeping", h.TriggerHousekeeping).Methods("POST")
}
