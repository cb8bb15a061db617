// filepath: internal/initconfig/git.go
package initconfig

import (
	"context"
	"strings"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
)

func processGitUsers(ctx context.Context, repo *repository.Repository, users []InitGitUser) int {
	created := 0
	for _, u := range users {
		if u.EmployeeID == "" || u.Username == "" {
			logging.Log.Warnf("Skipping git user with empty employee id or username.")
			continue
		}
		idTaken, err := repo.GitEmployeeIDTaken(ctx, u.EmployeeID, 0)
		if err != nil {
			logging.Log.Errorf("Failed to check if git user '%s' exists: %v", u.Username, err)
			continue
		}
		nameTaken, err := repo.GitUsernameTaken(ctx, u.Username, 0)
		if err != nil {
			logging.Log.Errorf("Failed to check if git user '%s' exists: %v", u.Username, err)
			continue
		}
		if idTaken || nameTaken {
			logging.Log.Infof("Skipping git user: '%s' already exists.", u.Username)
			continue
		}
		if _, err := repo.CreateGitUser(ctx, &models.GitUser{
			EmployeeID: u.EmployeeID,
			Username:   u.Username,
			GroupName:  u.GroupName,
			Role:       orDefault(strings.ToUpper(u.Role), models.GitRoleDeveloper),
		}); err != nil {
			logging.Log.Errorf("Failed to create git user '%s': %v", u.Username, err)
			continue
		}
		created++
	}
	logging.Log.Infof("Created %d sample git user(s)", created)
	return created
}

// processGitRepositories creates repositories matched by project name, then
// the backup record of each new repository that names a backup status.
func processGitRepositories(ctx context.Context, repo *repository.Repository, repos []InitGitRepository, now time.Time) (int, int) {
	existing, err := repo.ListGitRepositories(ctx, "")
	if err != nil {
		logging.Log.Errorf("Failed to load existing git repositories: %v", err)
		return 0, 0
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.ProjectName] = true
	}

	created, backups := 0, 0
	for _, r := range repos {
		if r.ProjectName == "" || seen[r.ProjectName] {
			continue
		}
		record := &models.GitRepository{
			ProjectName:       r.ProjectName,
			Department:        r.Department,
			GitURL:            r.GitURL,
			SSHURL:            r.SSHURL,
			CreatedByUsername: r.CreatedBy,
			Members:           r.Members,
		}
		if record.CreatedDate, err = ago(now, r.Created); err != nil {
			logging.Log.Errorf("Skipping git repository '%s': %v", r.ProjectName, err)
			continue
		}
		lastBackup, err := ago(now, r.LastBackup)
		if err != nil {
			logging.Log.Errorf("Skipping git repository '%s': %v", r.ProjectName, err)
			continue
		}

		saved, err := repo.CreateGitRepository(ctx, record)
		if err != nil {
			logging.Log.Errorf("Failed to create git repository '%s': %v", r.ProjectName, err)
			continue
		}
		seen[r.ProjectName] = true
		created++

		if r.BackupStatus == "" {
			continue
		}
		if _, err := repo.CreateGitBackup(ctx, &models.GitBackup{
			RepositoryID:   saved.ID,
			BackupStatus:   strings.ToUpper(r.BackupStatus),
			LastBackupTime: lastBackup,
		}); err != nil {
			logging.Log.Errorf("Failed to create backup of git repository '%s': %v", r.ProjectName, err)
			continue
		}
		backups++
	}
	logging.Log.Infof("Created %d sample git repositories and %d git backup(s)", created, backups)
	return created, backups
}
