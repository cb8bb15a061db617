// filepath: internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scmdash/internal/api/handlers"
	"scmdash/internal/audit"
	"scmdash/internal/config"
	"scmdash/internal/httpserver"
	"scmdash/internal/initconfig"
	"scmdash/internal/logging"
	"scmdash/internal/repository"
	"scmdash/internal/services"
	"scmdash/internal/services/auth"

	"github.com/spf13/cobra"
)

func newServeCommand(g *GlobalOptions) *cobra.Command {
	flags := &serverFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long:  `Starts the HTTP API. The schema is bootstrapped on an empty database; an outdated schema must be migrated with 'scmdash migrate up' first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initializeConfig(cmd, g, flags)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, g.CfgFilePath, flags.initConfig)
		},
	}
	flags.register(cmd)
	return cmd
}

// ensureJWTSecret picks the runtime secret: flag or env first, then the file,
// else a new one that is written back to the config file.
func ensureJWTSecret(cfg *config.Config, cfgPath string) error {
	if cfg.JWTSecret != "" {
		return nil
	}
	if cfg.JWT.Secret != "" {
		logging.Log.Infof("Using JWT secret loaded from %s.", cfgPath)
		cfg.JWTSecret = cfg.JWT.Secret
		return nil
	}

	logging.Log.Info("Generating new random JWT secret...")
	secret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JWT.Secret = secret
	cfg.JWTSecret = secret
	if err := config.SaveConfig(cfgPath, cfg); err != nil {
		logging.Log.Warnf("Failed to save new JWT secret to %s: %v", cfgPath, err)
	} else {
		logging.Log.Infof("New JWT secret saved to %s.", cfgPath)
	}
	return nil
}

// app is the wired backend.
type app struct {
	repo         *repository.Repository
	handlers     *handlers.Handlers
	auth         *auth.Middleware
	backups      interface{ Shutdown() }
	housekeeping services.HousekeepingService
}

func wire(cfg *config.Config, repo *repository.Repository, startTime time.Time) *app {
	auditor := audit.NewLoggerAuditor(cfg.Logging.Level, cfg.Logging.AuditEnabled, repo)

	accounts := services.NewAccountService(repo, auditor)
	tokens := auth.NewTokenService(cfg, accounts, repo)
	backups := services.NewBackupService(repo, auditor, cfg.BackupCompletionDelay)
	schedules := services.NewScheduleService(repo, backups, auditor)
	housekeeping := services.NewHousekeepingService(repo, schedules, auditor, cfg)

	h := handlers.NewHandlers(handlers.Services{
		Info:         services.NewInfoService(Version, startTime),
		Accounts:     accounts,
		Token:        tokens,
		Users:        services.NewUserService(repo, auditor),
		Repositories: services.NewRepositoryService(repo, auditor),
		Migrations:   services.NewMigrationService(repo, auditor),
		Backups:      backups,
		Schedules:    schedules,
		Dashboard:    services.NewDashboardService(repo, schedules),
		Superset:     services.NewSupersetService(cfg.Superset),
		Housekeeping: housekeeping,
		Git:          services.NewGitService(repo, auditor),
	}, cfg)

	return &app{
		repo:         repo,
		handlers:     h,
		auth:         auth.NewMiddleware(accounts, tokens),
		backups:      backups,
		housekeeping: housekeeping,
	}
}

// runServer starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func runServer(ctx context.Context, cfg *config.Config, cfgPath, initConfig string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	if err := ensureJWTSecret(cfg, cfgPath); err != nil {
		return err
	}

	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchemaBootstrapped(); err != nil {
		logging.Log.Errorf("Failed to bootstrap database: %v", err)
		return err
	}
	if err := repo.ValidateSchema(); err != nil {
		logging.Log.Error("---------------------------------------------------------------")
		logging.Log.Errorf("CRITICAL DATABASE ERROR: %v", err)
		logging.Log.Error("---------------------------------------------------------------")
		return err
	}

	a := wire(cfg, repo, startTime)

	if err := a.handlers.Accounts.InitializeAdminAccount(ctx, cfg); err != nil {
		return fmt.Errorf("failed to handle admin account: %w", err)
	}

	if initConfig != "" {
		logging.Log.Infof("Found init_config, running initialization from: %s", initConfig)
		initconfig.Run(ctx, repo, a.handlers.Accounts, initConfig)
	}
	if cfg.SeedSampleData {
		res, err := initconfig.SeedSample(ctx, repo, a.handlers.Accounts)
		if err != nil {
			logging.Log.Errorf("Failed to load sample data: %v", err)
		} else {
			logging.Log.Infof("Sample data: %d users, %d repositories, %d migrations, %d backups, %d schedules.",
				res.Users, res.Repositories, res.Migrations, res.Backups, res.Schedules)
		}
	}

	a.housekeeping.Start()

	limiter := httpserver.NewRateLimiter(cfg.RateLimit.LoginPerMinute)
	defer limiter.Stop()

	r := httpserver.SetupRouter(a.handlers, a.auth, httpserver.RouterOptions{
		MaxBodySize:  cfg.MaxBodySizeBytes,
		LoginLimiter: limiter,
	})
	srv := httpserver.New(cfg, r)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		logging.Log.Infof("Server starting on %s (Max Body Size: %s)", srv.Addr, cfg.Server.MaxBodySize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case <-ctx.Done():
	case err := <-serveErr:
		a.housekeeping.Stop()
		a.backups.Shutdown()
		return fmt.Errorf("server failed to start: %w", err)
	}
	logging.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	a.housekeeping.Stop()
	a.backups.Shutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Log.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logging.Log.Info("Server exiting")
	return nil
}
