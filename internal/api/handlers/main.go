// filepath: internal/api/handlers/main.go
package handlers

import (
	"scmdash/internal/config"
	"scmdash/internal/services"
	"scmdash/internal/services/auth"
)

// Services bundles the dependencies of the API handlers.
type Services struct {
	Info         services.InfoService
	Accounts     services.AccountService
	Token        auth.TokenService
	Users        services.UserService
	Repositories services.RepositoryService
	Migrations   services.MigrationService
	Backups      services.BackupService
	Schedules    services.ScheduleService
	Dashboard    services.DashboardService
	Superset     services.SupersetService
	Housekeeping services.HousekeepingService
	Git          services.GitService
}

// Handlers provides a struct to hold shared dependencies for API handlers.
type Handlers struct {
	Services
	Cfg *config.Config
}

// NewHandlers creates a new instance of Handlers with its dependencies.
func NewHandlers(svc Services, cfg *config.Config) *Handlers {
	return &Handlers{Services: svc, Cfg: cfg}
}
