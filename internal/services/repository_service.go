// filepath: internal/services/repository_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/shared"
)

var _ RepositoryService = (*repositoryService)(nil)

// repositoryService handles business logic for tracked SCM repositories.
type repositoryService struct {
	Repo    *repository.Repository
	Auditor Auditor
}

// NewRepositoryService creates a new RepositoryService.
func NewRepositoryService(repo *repository.Repository, auditor Auditor) *repositoryService {
	return &repositoryService{Repo: repo, Auditor: auditor}
}

func (s *repositoryService) List(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error) {
	return s.Repo.ListRepositories(ctx, f)
}

func (s *repositoryService) Get(ctx context.Context, id int64) (*models.Repository, error) {
	r, err := s.Repo.GetRepository(ctx, id)
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	return r, nil
}

func (s *repositoryService) checkName(ctx context.Context, name string, exceptID int64) error {
	taken, err := s.Repo.RepositoryNameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("Repository name already exists: " + name)
	}
	return nil
}

func (s *repositoryService) checkMembers(ctx context.Context, memberIDs []int64) error {
	missing, err := s.Repo.MissingUserIDs(ctx, memberIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return invalid(fmt.Sprintf("User not found with id: %d", missing[0]))
	}
	return nil
}

func (s *repositoryService) Create(ctx context.Context, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	if err := s.checkName(ctx, p.Name, 0); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, memberIDs); err != nil {
		return nil, err
	}

	status := p.MigrationStatus
	if status == "" {
		status = models.StatusNotStarted
	}
	now := time.Now().UTC()
	r := &models.Repository{
		Name:              p.Name,
		Description:       p.Description,
		Size:              p.Size,
		BackupStatus:      p.BackupStatus,
		MigrationStatus:   status,
		MigrationProgress: coupledProgress(status, p.MigrationProgress, 0),
		LastCommit:        &now,
		ColorCode:         p.ColorCode,
	}
	if r.ColorCode == "" {
		r.ColorCode = shared.ColorFor(p.Name)
	}

	created, err := s.Repo.CreateRepository(ctx, r, memberIDs)
	if err != nil {
		logging.Log.Errorf("RepositoryService: Failed to create repository '%s': %v", p.Name, err)
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	s.Auditor.Log(ctx, "repository.create", ActorFrom(ctx), created.Name, map[string]interface{}{"members": len(memberIDs)})
	return created, nil
}

// Update overwrites a repository. A nil memberIDs keeps the current members.
func (s *repositoryService) Update(ctx context.Context, id int64, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, p.Name, id); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, memberIDs); err != nil {
		return nil, err
	}

	status := p.MigrationStatus
	if status == "" {
		status = existing.MigrationStatus
	}
	now := time.Now().UTC()
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Size = p.Size
	if p.BackupStatus != "" {
		existing.BackupStatus = p.BackupStatus
	}
	existing.MigrationProgress = coupledProgress(status, p.MigrationProgress, existing.MigrationProgress)
	existing.MigrationStatus = status
	existing.LastCommit = &now
	existing.LastCommitBy = ActorFrom(ctx)
	if p.ColorCode != "" {
		existing.ColorCode = p.ColorCode
	}

	updated, err := s.Repo.UpdateRepository(ctx, existing, memberIDs)
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "repository.update", ActorFrom(ctx), updated.Name, nil)
	return updated, nil
}

func (s *repositoryService) Delete(ctx context.Context, id int64) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteRepository(ctx, id); err != nil {
		return notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "repository.delete", ActorFrom(ctx), r.Name, nil)
	return nil
}

func (s *repositoryService) UpdateMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error) {
	if err := s.checkMembers(ctx, memberIDs); err != nil {
		return nil, err
	}
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	updated, err := s.Repo.SetRepositoryMembers(ctx, id, memberIDs)
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "repository.members", ActorFrom(ctx), updated.Name, map[string]interface{}{"members": len(memberIDs)})
	return updated, nil
}

// UpdateMigrationStatus sets the migration track of a repository that has no
// linked migration record. Linked repositories follow their migration.
func (s *repositoryService) UpdateMigrationStatus(ctx context.Context, id int64, status string, progress *int) (*models.Repository, error) {
	switch status {
	case models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted, models.StatusArchived:
	default:
		return nil, invalid("Invalid migration status: " + status)
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	linked, err := s.Repo.LinkedMigrationExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if linked {
		return nil, fmt.Errorf("%w: repository '%s' is tracked by a migration record; update the migration instead", ErrConflict, existing.Name)
	}

	updated, err := s.Repo.SetRepositoryMigration(ctx, id, status, coupledProgress(status, progress, existing.MigrationProgress))
	if err != nil {
		return nil, notFound(err, "Repository", id)
	}
	s.Auditor.Log(ctx, "repository.migration_status", ActorFrom(ctx), updated.Name, map[string]interface{}{
		"status":   updated.MigrationStatus,
		"progress": updated.MigrationProgress,
	})
	return updated, nil
}
