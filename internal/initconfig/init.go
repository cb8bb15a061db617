// filepath: internal/initconfig/init.go
package initconfig

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/services"
	"scmdash/internal/shared"

	"github.com/BurntSushi/toml"
)

//go:embed sample.toml
var sampleData string

// Result counts the records created by one initialization pass.
type Result struct {
	Accounts     int
	Users        int
	Repositories int
	Migrations   int
	Backups      int
	Schedules    int

	GitUsers        int
	GitRepositories int
	GitBackups      int
}

// Run executes the one-time initialization from the config file.
func Run(ctx context.Context, repo *repository.Repository, accountSvc services.AccountService, configPath string) {
	logging.Log.Infof("Initialization config file found at: %s. Processing...", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		logging.Log.Errorf("Failed to read init config file '%s': %v", configPath, err)
		return
	}

	config, err := Parse(string(data))
	if err != nil {
		logging.Log.Errorf("Failed to parse TOML init config file '%s': %v", configPath, err)
		return
	}

	Apply(ctx, repo, accountSvc, config, time.Now())

	// After processing, try to clear passwords
	if len(config.Accounts) > 0 {
		clearPasswords(config, configPath)
	}
}

// SeedSample loads the bundled sample data, but only into a database without SCM users.
func SeedSample(ctx context.Context, repo *repository.Repository, accountSvc services.AccountService) (Result, error) {
	total, _, err := repo.CountUsers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check for existing data: %w", err)
	}
	if total > 0 {
		logging.Log.Info("Database already contains data. Skipping sample data.")
		return Result{}, nil
	}

	config, err := Parse(sampleData)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse sample data: %w", err)
	}
	logging.Log.Info("Initializing database with sample data...")
	return Apply(ctx, repo, accountSvc, config, time.Now()), nil
}

// Parse decodes an init config document.
func Parse(data string) (*InitConfig, error) {
	var config InitConfig
	if _, err := toml.Decode(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Apply creates every record of config that does not exist yet. Records are
// matched by username, name or display code. Errors are logged per record.
func Apply(ctx context.Context, repo *repository.Repository, accountSvc services.AccountService, config *InitConfig, now time.Time) Result {
	logging.Log.Infof("Found %d account(s), %d user(s), %d repositories, %d migration(s), %d backup(s) and %d schedule(s) in init config.",
		len(config.Accounts), len(config.Users), len(config.Repositories), len(config.Migrations), len(config.Backups), len(config.Schedules))

	var res Result
	res.Accounts = processAccounts(ctx, accountSvc, config.Accounts)
	res.Users = processUsers(ctx, repo, config.Users, now)
	res.Repositories = processRepositories(ctx, repo, config.Repositories, now)
	res.Migrations = processMigrations(ctx, repo, config.Migrations, now)
	res.Backups = processBackups(ctx, repo, config.Backups, now)
	res.Schedules = processSchedules(ctx, repo, config.Schedules)
	res.GitUsers = processGitUsers(ctx, repo, config.GitUsers)
	res.GitRepositories, res.GitBackups = processGitRepositories(ctx, repo, config.GitRepositories, now)
	return res
}

// processAccounts creates console logins that don't exist yet.
func processAccounts(ctx context.Context, accountSvc services.AccountService, accounts []InitAccount) int {
	created := 0
	for _, a := range accounts {
		if a.Name == "" || a.Password == "" {
			logging.Log.Warnf("Skipping account with empty name or password.")
			continue
		}

		_, err := accountSvc.GetAccountByUsername(ctx, a.Name)
		if err == nil {
			logging.Log.Infof("Skipping account: '%s' already exists.", a.Name)
			continue
		}
		if !errors.Is(err, shared.ErrAccountNotFound) {
			logging.Log.Errorf("Failed to check if account '%s' exists: %v", a.Name, err)
			continue
		}

		args := repository.AccountCreateArgs{Username: a.Name, Password: a.Password}
		for _, role := range a.Roles {
			switch role {
			case "CanView":
				args.CanView = true
			case "CanEdit":
				args.CanEdit = true
			case "IsAdmin":
				args.IsAdmin = true
			}
		}

		if _, err := accountSvc.CreateAccount(ctx, args); err != nil {
			logging.Log.Errorf("Failed to create account '%s': %v", a.Name, err)
			continue
		}
		logging.Log.Infof("Successfully created account: '%s'", a.Name)
		created++
	}
	return created
}

func processUsers(ctx context.Context, repo *repository.Repository, users []InitUser, now time.Time) int {
	created := 0
	for _, u := range users {
		if u.Username == "" {
			logging.Log.Warnf("Skipping user with empty username.")
			continue
		}
		taken, err := repo.UserUsernameTaken(ctx, u.Username, 0)
		if err != nil {
			logging.Log.Errorf("Failed to check if user '%s' exists: %v", u.Username, err)
			continue
		}
		if taken {
			logging.Log.Infof("Skipping user: '%s' already exists.", u.Username)
			continue
		}

		user := &models.User{
			Username:  u.Username,
			FullName:  u.FullName,
			Email:     u.Email,
			Role:      orDefault(u.Role, models.RoleDeveloper),
			Status:    orDefault(u.Status, models.UserActive),
			Group:     u.Group,
			Initials:  orDefault(u.Initials, shared.Initials(u.FullName)),
			ColorCode: orDefault(u.ColorCode, shared.ColorFor(u.Username)),
		}
		if user.LastActivity, err = ago(now, u.LastActivity); err != nil {
			logging.Log.Errorf("Skipping user '%s': %v", u.Username, err)
			continue
		}
		if _, err := repo.CreateUser(ctx, user); err != nil {
			logging.Log.Errorf("Failed to create user '%s': %v", u.Username, err)
			continue
		}
		created++
	}
	logging.Log.Infof("Created %d sample user(s)", created)
	return created
}

func processRepositories(ctx context.Context, repo *repository.Repository, repos []InitRepository, now time.Time) int {
	userIDs, err := userIDsByName(ctx, repo)
	if err != nil {
		logging.Log.Errorf("Failed to load users for repository members: %v", err)
		return 0
	}

	created := 0
	for _, r := range repos {
		if r.Name == "" {
			logging.Log.Warnf("Skipping repository with empty name.")
			continue
		}
		taken, err := repo.RepositoryNameTaken(ctx, r.Name, 0)
		if err != nil {
			logging.Log.Errorf("Failed to check if repository '%s' exists: %v", r.Name, err)
			continue
		}
		if taken {
			logging.Log.Infof("Skipping repository: '%s' already exists.", r.Name)
			continue
		}

		memberIDs := make([]int64, 0, len(r.Members))
		for _, name := range r.Members {
			id, ok := userIDs[name]
			if !ok {
				logging.Log.Warnf("Repository '%s': unknown member '%s' ignored.", r.Name, name)
				continue
			}
			memberIDs = append(memberIDs, id)
		}

		record := &models.Repository{
			Name:              r.Name,
			Description:       r.Description,
			Size:              r.Size,
			BackupStatus:      orDefault(r.BackupStatus, models.BackupComplete),
			MigrationStatus:   orDefault(r.MigrationStatus, models.StatusNotStarted),
			MigrationProgress: r.MigrationProgress,
			LastCommitBy:      r.LastCommitBy,
			ColorCode:         orDefault(r.ColorCode, shared.ColorFor(r.Name)),
		}
		if record.LastCommit, err = ago(now, r.LastCommit); err != nil {
			logging.Log.Errorf("Skipping repository '%s': %v", r.Name, err)
			continue
		}
		if _, err := repo.CreateRepository(ctx, record, memberIDs); err != nil {
			logging.Log.Errorf("Failed to create repository '%s': %v", r.Name, err)
			continue
		}
		created++
	}
	logging.Log.Infof("Created %d sample repositories", created)
	return created
}

func processMigrations(ctx context.Context, repo *repository.Repository, migrations []InitMigration, now time.Time) int {
	repoIDs, err := repositoryIDsByName(ctx, repo)
	if err != nil {
		logging.Log.Errorf("Failed to load repositories for migrations: %v", err)
		return 0
	}
	existing, err := repo.ListMigrations(ctx, models.MigrationFilter{})
	if err != nil {
		logging.Log.Errorf("Failed to load existing migrations: %v", err)
		return 0
	}
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m.Name] = true
	}

	created := 0
	for _, m := range migrations {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		record := &models.Migration{
			Name:          m.Name,
			Description:   m.Description,
			Size:          m.Size,
			Status:        orDefault(m.Status, models.StatusNotStarted),
			Progress:      m.Progress,
			EstimatedTime: m.EstimatedTime,
			AssignedTo:    m.AssignedTo,
			ColorCode:     orDefault(m.ColorCode, shared.ColorFor(m.Name)),
		}
		if record.StartedDate, err = ago(now, m.Started); err != nil {
			logging.Log.Errorf("Skipping migration '%s': %v", m.Name, err)
			continue
		}
		if record.CompletedDate, err = ago(now, m.Completed); err != nil {
			logging.Log.Errorf("Skipping migration '%s': %v", m.Name, err)
			continue
		}
		if m.Repository != "" {
			id, ok := repoIDs[m.Repository]
			if !ok {
				logging.Log.Warnf("Migration '%s': unknown repository '%s', left unlinked.", m.Name, m.Repository)
			} else {
				record.RepositoryID = &id
			}
		}
		if _, err := repo.CreateMigration(ctx, record); err != nil {
			logging.Log.Errorf("Failed to create migration '%s': %v", m.Name, err)
			continue
		}
		seen[m.Name] = true
		created++
	}
	logging.Log.Infof("Created %d sample migration(s)", created)
	return created
}

func processBackups(ctx context.Context, repo *repository.Repository, backups []InitBackup, now time.Time) int {
	repoIDs, err := repositoryIDsByName(ctx, repo)
	if err != nil {
		logging.Log.Errorf("Failed to load repositories for backups: %v", err)
		return 0
	}

	created := 0
	for _, b := range backups {
		if b.BackupID != "" {
			_, err := repo.GetBackupByCode(ctx, b.BackupID)
			if err == nil {
				logging.Log.Infof("Skipping backup: '%s' already exists.", b.BackupID)
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				logging.Log.Errorf("Failed to check if backup '%s' exists: %v", b.BackupID, err)
				continue
			}
		}
		date, err := ago(now, b.Ago)
		if err != nil {
			logging.Log.Errorf("Skipping backup '%s': %v", b.BackupID, err)
			continue
		}
		if date == nil {
			date = &now
		}
		ids := lookupIDs(repoIDs, b.Repositories)
		record := &models.Backup{
			BackupID:    b.BackupID,
			Date:        *date,
			Type:        orDefault(b.Type, models.BackupFull),
			Status:      orDefault(b.Status, models.BackupComplete),
			Size:        b.Size,
			Duration:    b.Duration,
			InitiatedBy: b.InitiatedBy,
			Notes:       b.Notes,
			Logs:        b.Logs,
			Scope:       models.SelectedRepositories(ids),
		}
		if _, err := repo.CreateBackup(ctx, record, ids); err != nil {
			logging.Log.Errorf("Failed to create backup '%s': %v", b.BackupID, err)
			continue
		}
		created++
	}
	logging.Log.Infof("Created %d sample backup(s)", created)
	return created
}

func processSchedules(ctx context.Context, repo *repository.Repository, schedules []InitSchedule) int {
	repoIDs, err := repositoryIDsByName(ctx, repo)
	if err != nil {
		logging.Log.Errorf("Failed to load repositories for schedules: %v", err)
		return 0
	}

	created := 0
	for _, s := range schedules {
		if s.ScheduleID != "" {
			_, err := repo.GetScheduleByCode(ctx, s.ScheduleID)
			if err == nil {
				logging.Log.Infof("Skipping schedule: '%s' already exists.", s.ScheduleID)
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				logging.Log.Errorf("Failed to check if schedule '%s' exists: %v", s.ScheduleID, err)
				continue
			}
		}
		if _, _, err := shared.ParseClockTime(s.Time); err != nil {
			logging.Log.Errorf("Skipping schedule '%s': %v", s.Name, err)
			continue
		}
		record := &models.BackupSchedule{
			ScheduleID: s.ScheduleID,
			Name:       s.Name,
			Type:       orDefault(s.Type, models.BackupFull),
			Frequency:  orDefault(s.Frequency, models.FrequencyDaily),
			Time:       s.Time,
			Retention:  s.Retention,
			Status:     orDefault(s.Status, models.ScheduleActive),
			Scope:      models.SelectedRepositories(lookupIDs(repoIDs, s.Repositories)),
		}
		if _, err := repo.CreateSchedule(ctx, record); err != nil {
			logging.Log.Errorf("Failed to create schedule '%s': %v", s.Name, err)
			continue
		}
		created++
	}
	logging.Log.Infof("Created %d sample backup schedule(s)", created)
	return created
}

func userIDsByName(ctx context.Context, repo *repository.Repository) (map[string]int64, error) {
	users, err := repo.ListUsers(ctx, models.UserFilter{})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(users))
	for _, u := range users {
		ids[u.Username] = u.ID
	}
	return ids, nil
}

func repositoryIDsByName(ctx context.Context, repo *repository.Repository) (map[string]int64, error) {
	repos, err := repo.ListRepositories(ctx, models.RepositoryFilter{})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(repos))
	for _, r := range repos {
		ids[r.Name] = r.ID
	}
	return ids, nil
}

func lookupIDs(byName map[string]int64, names []string) []int64 {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
		} else {
			logging.Log.Warnf("Unknown repository '%s' ignored.", name)
		}
	}
	return ids
}

// ago turns a relative duration into an absolute time; empty means unset.
func ago(now time.Time, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid relative time %q: %w", s, err)
	}
	t := now.Add(-d)
	return &t, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// clearPasswords attempts to overwrite the config file with passwords removed.
func clearPasswords(config *InitConfig, configPath string) {
	logging.Log.Info("Attempting to clear passwords from init config file...")

	buf := new(bytes.Buffer)
	for i := range config.Accounts {
		config.Accounts[i].Password = ""
	}

	if err := toml.NewEncoder(buf).Encode(config); err != nil {
		logging.Log.Warnf("Could not re-encode config to clear passwords: %v", err)
		logging.Log.Warnf("SECURITY: Please manually remove passwords from '%s'", configPath)
		return
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0600); err != nil {
		logging.Log.Warnf("Failed to write back to config file to clear passwords: %v", err)
		logging.Log.Warnf("SECURITY: Please manually remove passwords from '%s'", configPath)
		return
	}

	logging.Log.Info("Successfully cleared passwords from init config file.")
}
