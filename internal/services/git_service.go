// filepath: internal/services/git_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
)

var _ GitService = (*gitService)(nil)

// gitService handles the Git hosting inventory.
type gitService struct {
	Repo    *repository.Repository
	Auditor Auditor
}

// NewGitService creates a new GitService.
func NewGitService(repo *repository.Repository, auditor Auditor) *gitService {
	return &gitService{Repo: repo, Auditor: auditor}
}

func (s *gitService) ListUsers(ctx context.Context) ([]models.GitUser, error) {
	return s.Repo.ListGitUsers(ctx)
}

func (s *gitService) GetUser(ctx context.Context, id int64) (*models.GitUser, error) {
	u, err := s.Repo.GetGitUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return u, nil
}

// checkGitUnique rejects an employee id or username that another Git user already holds.
func (s *gitService) checkGitUnique(ctx context.Context, p models.GitUserPayload, exceptID int64) error {
	taken, err := s.Repo.GitEmployeeIDTaken(ctx, p.EmployeeID, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("Employee ID already exists: " + p.EmployeeID)
	}
	taken, err = s.Repo.GitUsernameTaken(ctx, p.Username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("Username already exists: " + p.Username)
	}
	return nil
}

func gitUserFrom(p models.GitUserPayload) *models.GitUser {
	return &models.GitUser{
		EmployeeID: p.EmployeeID,
		Username:   p.Username,
		GroupName:  p.GroupName,
		Role:       p.Role,
	}
}

func (s *gitService) CreateUser(ctx context.Context, p models.GitUserPayload) (*models.GitUser, error) {
	if err := s.checkGitUnique(ctx, p, 0); err != nil {
		return nil, err
	}
	created, err := s.Repo.CreateGitUser(ctx, gitUserFrom(p))
	if err != nil {
		logging.Log.Errorf("GitService: Failed to create user '%s': %v", p.Username, err)
		return nil, fmt.Errorf("failed to create git user: %w", err)
	}
	s.Auditor.Log(ctx, "git.user.create", ActorFrom(ctx), created.Username, map[string]interface{}{"role": created.Role})
	return created, nil
}

func (s *gitService) UpdateUser(ctx context.Context, id int64, p models.GitUserPayload) (*models.GitUser, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkGitUnique(ctx, p, id); err != nil {
		return nil, err
	}
	u := gitUserFrom(p)
	u.ID = id
	updated, err := s.Repo.UpdateGitUser(ctx, u)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	s.Auditor.Log(ctx, "git.user.update", ActorFrom(ctx), updated.Username, nil)
	return updated, nil
}

func (s *gitService) DeleteUser(ctx context.Context, id int64) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteGitUser(ctx, id); err != nil {
		return notFound(err, "User", id)
	}
	s.Auditor.Log(ctx, "git.user.delete", ActorFrom(ctx), u.Username, nil)
	return nil
}

// withZeros fills every key from keys that counts lacks with 0.
func withZeros(counts map[string]int, keys []string) map[string]int {
	for _, k := range keys {
		if _, ok := counts[k]; !ok {
			counts[k] = 0
		}
	}
	return counts
}

// UserCountsByRole reports every role, including those nobody holds.
func (s *gitService) UserCountsByRole(ctx context.Context) (map[string]int, error) {
	counts, err := s.Repo.CountGitUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	return withZeros(counts, models.GitRoles), nil
}

func (s *gitService) ListRepositories(ctx context.Context, search string) ([]models.GitRepository, error) {
	return s.Repo.ListGitRepositories(ctx, strings.TrimSpace(search))
}

func (s *gitService) GetRepository(ctx context.Context, id int64) (*models.GitRepository, error) {
	r, err := s.Repo.GetGitRepository(ctx, id)
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	return r, nil
}

func gitRepositoryFrom(p models.GitRepositoryPayload) *models.GitRepository {
	return &models.GitRepository{
		ProjectName:       p.ProjectName,
		Department:        p.Department,
		GitURL:            p.GitURL,
		SSHURL:            p.SSHURL,
		CreatedDate:       p.CreatedDate,
		CreatedByUsername: p.CreatedByUsername,
		Members:           p.Members,
	}
}

func (s *gitService) CreateRepository(ctx context.Context, p models.GitRepositoryPayload) (*models.GitRepository, error) {
	created, err := s.Repo.CreateGitRepository(ctx, gitRepositoryFrom(p))
	if err != nil {
		logging.Log.Errorf("GitService: Failed to create repository '%s': %v", p.ProjectName, err)
		return nil, fmt.Errorf("failed to create git repository: %w", err)
	}
	s.Auditor.Log(ctx, "git.repository.create", ActorFrom(ctx), created.ProjectName,
		map[string]interface{}{"department": created.Department})
	return created, nil
}

func (s *gitService) UpdateRepository(ctx context.Context, id int64, p models.GitRepositoryPayload) (*models.GitRepository, error) {
	r := gitRepositoryFrom(p)
	r.ID = id
	updated, err := s.Repo.UpdateGitRepository(ctx, r)
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "git.repository.update", ActorFrom(ctx), updated.ProjectName, nil)
	return updated, nil
}

func (s *gitService) DeleteRepository(ctx context.Context, id int64) error {
	r, err := s.GetRepository(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteGitRepository(ctx, id); err != nil {
		return notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "git.repository.delete", ActorFrom(ctx), r.ProjectName, nil)
	return nil
}

func (s *gitService) RepositoryCountsByDepartment(ctx context.Context) (map[string]int, error) {
	return s.Repo.CountGitRepositoriesByDepartment(ctx)
}

// normalizeBackupStatus accepts a state in any case.
func normalizeBackupStatus(status string) (string, error) {
	up := strings.ToUpper(strings.TrimSpace(status))
	switch up {
	case models.GitBackupComplete, models.GitBackupPending:
		return up, nil
	}
	return "", invalid("Invalid backup status: " + status)
}

// ListBackups returns every backup, or only those in status when it is set.
func (s *gitService) ListBackups(ctx context.Context, status string) ([]models.GitBackup, error) {
	if status != "" {
		var err error
		if status, err = normalizeBackupStatus(status); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListGitBackups(ctx, status)
}

func (s *gitService) GetBackup(ctx context.Context, id int64) (*models.GitBackup, error) {
	b, err := s.Repo.GetGitBackup(ctx, id)
	if err != nil {
		return nil, notFound(err, "Backup", id)
	}
	return b, nil
}

func (s *gitService) GetBackupByRepository(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	b, err := s.Repo.GetGitBackupByRepository(ctx, repoID)
	if err != nil {
		return nil, notFound(err, "Backup for repository", repoID)
	}
	return b, nil
}

// BackupCountsByStatus reports every state, including those no backup is in.
func (s *gitService) BackupCountsByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.Repo.CountGitBackupsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return withZeros(counts, models.GitBackupStatuses), nil
}

func (s *gitService) backupFrom(ctx context.Context, p models.GitBackupPayload) (*models.GitBackup, error) {
	if _, err := s.GetRepository(ctx, p.RepositoryID); err != nil {
		return nil, err
	}
	status, err := normalizeBackupStatus(p.BackupStatus)
	if err != nil {
		return nil, err
	}
	return &models.GitBackup{
		RepositoryID:   p.RepositoryID,
		BackupStatus:   status,
		LastBackupTime: p.LastBackupTime,
	}, nil
}

func backupConflict(err error, repoID int64) error {
	if errors.Is(err, repository.ErrBackupExists) {
		return fmt.Errorf("%w: repository %d already has a backup record", ErrConflict, repoID)
	}
	return err
}

func (s *gitService) CreateBackup(ctx context.Context, p models.GitBackupPayload) (*models.GitBackup, error) {
	b, err := s.backupFrom(ctx, p)
	if err != nil {
		return nil, err
	}
	created, err := s.Repo.CreateGitBackup(ctx, b)
	if err != nil {
		return nil, backupConflict(err, p.RepositoryID)
	}
	s.Auditor.Log(ctx, "git.backup.create", ActorFrom(ctx), created.RepositoryName,
		map[string]interface{}{"status": created.BackupStatus})
	return created, nil
}

func (s *gitService) UpdateBackup(ctx context.Context, id int64, p models.GitBackupPayload) (*models.GitBackup, error) {
	if _, err := s.GetBackup(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.backupFrom(ctx, p)
	if err != nil {
		return nil, err
	}
	b.ID = id
	updated, err := s.Repo.UpdateGitBackup(ctx, b)
	if err != nil {
		return nil, notFound(backupConflict(err, p.RepositoryID), "Backup", id)
	}
	s.Auditor.Log(ctx, "git.backup.update", ActorFrom(ctx), updated.RepositoryName,
		map[string]interface{}{"status": updated.BackupStatus})
	return updated, nil
}

// RunBackup marks the backup of a repository complete now, creating it on first run.
func (s *gitService) RunBackup(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	r, err := s.GetRepository(ctx, repoID)
	if err != nil {
		return nil, err
	}
	b, err := s.Repo.RecordGitBackupRun(ctx, repoID)
	if err != nil {
		logging.Log.Errorf("GitService: Failed to run backup for '%s': %v", r.ProjectName, err)
		return nil, fmt.Errorf("failed to run git backup: %w", err)
	}
	s.Auditor.Log(ctx, "git.backup.run", ActorFrom(ctx), r.ProjectName, nil)
	return b, nil
}

// Summary aggregates the Git inventory. The completion rate is the share of
// repositories with a COMPLETE backup, in percent with two decimals.
func (s *gitService) Summary(ctx context.Context) (*models.GitDashboardSummary, error) {
	users, repos, err := s.Repo.CountGit(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.UserCountsByRole(ctx)
	if err != nil {
		return nil, err
	}
	byDept, err := s.RepositoryCountsByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.BackupCountsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	sum := &models.GitDashboardSummary{
		TotalUsers:            users,
		TotalRepositories:     repos,
		TotalBackupsCompleted: byStatus[models.GitBackupComplete],
		UsersByRole:           byRole,
		ReposByDepartment:     byDept,
		BackupsByStatus:       byStatus,
	}
	if repos > 0 {
		rate := float64(sum.TotalBackupsCompleted) / float64(repos) * 100
		sum.BackupCompletionRate = math.Round(rate*100) / 100
	}
	return sum, nil
}
