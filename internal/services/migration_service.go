// filepath: internal/services/migration_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/shared"
)

var _ MigrationService = (*migrationService)(nil)

// migrationService owns migration records and their state machine. Every
// write is mirrored onto the linked repository by the repository layer.
type migrationService struct {
	Repo    *repository.Repository
	Auditor Auditor
}

// NewMigrationService creates a new MigrationService.
func NewMigrationService(repo *repository.Repository, auditor Auditor) *migrationService {
	return &migrationService{Repo: repo, Auditor: auditor}
}

func (s *migrationService) List(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error) {
	return s.Repo.ListMigrations(ctx, f)
}

func (s *migrationService) Get(ctx context.Context, id int64) (*models.Migration, error) {
	m, err := s.Repo.GetMigration(ctx, id)
	if err != nil {
		return nil, notFound(err, "Migration", id)
	}
	return m, nil
}

func (s *migrationService) checkRepository(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetRepository(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid(fmt.Sprintf("Repository not found with id: %d", *id))
		}
		return err
	}
	return nil
}

// stampDates sets started/completed dates for a status reached by create or update.
func stampDates(m *models.Migration, now time.Time) {
	switch m.Status {
	case models.StatusNotStarted:
		m.StartedDate = nil
		m.CompletedDate = nil
	case models.StatusInProgress:
		if m.StartedDate == nil {
			m.StartedDate = &now
		}
		m.CompletedDate = nil
	case models.StatusCompleted:
		if m.StartedDate == nil {
			m.StartedDate = &now
		}
		m.CompletedDate = &now
	case models.StatusFailed:
		m.CompletedDate = nil
	}
}

func (s *migrationService) Create(ctx context.Context, p models.MigrationPayload) (*models.Migration, error) {
	if err := s.checkRepository(ctx, p.RepositoryID); err != nil {
		return nil, err
	}
	m := &models.Migration{
		Name:          p.Name,
		Description:   p.Description,
		Size:          p.Size,
		Status:        p.Status,
		Progress:      derivedProgress(p.Status, p.Progress, 0),
		EstimatedTime: p.EstimatedTime,
		AssignedTo:    p.AssignedTo,
		ColorCode:     p.ColorCode,
		RepositoryID:  p.RepositoryID,
	}
	if m.ColorCode == "" {
		m.ColorCode = shared.ColorFor(p.Name)
	}
	stampDates(m, time.Now().UTC())

	created, err := s.Repo.CreateMigration(ctx, m)
	if err != nil {
		logging.Log.Errorf("MigrationService: Failed to create migration '%s': %v", p.Name, err)
		return nil, fmt.Errorf("failed to create migration: %w", err)
	}
	s.Auditor.Log(ctx, "migration.create", ActorFrom(ctx), created.Name, map[string]interface{}{"status": created.Status})
	return created, nil
}

func (s *migrationService) Update(ctx context.Context, id int64, p models.MigrationPayload) (*models.Migration, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.RepositoryID != nil {
		if err := s.checkRepository(ctx, p.RepositoryID); err != nil {
			return nil, err
		}
		m.RepositoryID = p.RepositoryID
	}

	statusChanged := m.Status != p.Status
	m.Name = p.Name
	m.Description = p.Description
	m.Size = p.Size
	m.Progress = derivedProgress(p.Status, p.Progress, m.Progress)
	m.Status = p.Status
	m.EstimatedTime = p.EstimatedTime
	m.AssignedTo = p.AssignedTo
	if p.ColorCode != "" {
		m.ColorCode = p.ColorCode
	}
	if statusChanged {
		stampDates(m, time.Now().UTC())
	}

	return s.save(ctx, "migration.update", m)
}

func (s *migrationService) Delete(ctx context.Context, id int64) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteMigration(ctx, id); err != nil {
		return notFound(err, "Migration", id)
	}
	s.Auditor.Log(ctx, "migration.delete", ActorFrom(ctx), m.Name, nil)
	return nil
}

// transition loads a migration, checks its current status is one of from,
// then applies fn and saves it.
func (s *migrationService) transition(ctx context.Context, id int64, verb string, from []string, fn func(m *models.Migration, now time.Time)) (*models.Migration, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, st := range from {
		if m.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot %s a migration that is %s", ErrInvalidTransition, verb, m.Status)
	}
	fn(m, time.Now().UTC())
	return s.save(ctx, "migration."+verb, m)
}

func (s *migrationService) save(ctx context.Context, action string, m *models.Migration) (*models.Migration, error) {
	saved, err := s.Repo.SaveMigration(ctx, m)
	if err != nil {
		return nil, notFound(err, "Migration", m.ID)
	}
	s.Auditor.Log(ctx, action, ActorFrom(ctx), saved.Name, map[string]interface{}{
		"status":   saved.Status,
		"progress": saved.Progress,
	})
	return saved, nil
}

func (s *migrationService) Start(ctx context.Context, id int64) (*models.Migration, error) {
	return s.transition(ctx, id, "start", []string{models.StatusNotStarted}, func(m *models.Migration, now time.Time) {
		m.Status = models.StatusInProgress
		m.StartedDate = &now
		m.CompletedDate = nil
		m.Progress = max(m.Progress, 1)
	})
}

// Pause leaves the record untouched; there is no paused status.
func (s *migrationService) Pause(ctx context.Context, id int64) (*models.Migration, error) {
	return s.transition(ctx, id, "pause", []string{models.StatusInProgress}, func(*models.Migration, time.Time) {})
}

func (s *migrationService) Complete(ctx context.Context, id int64) (*models.Migration, error) {
	return s.transition(ctx, id, "complete", []string{models.StatusInProgress}, func(m *models.Migration, now time.Time) {
		m.Status = models.StatusCompleted
		m.Progress = 100
		m.CompletedDate = &now
	})
}

func (s *migrationService) Retry(ctx context.Context, id int64) (*models.Migration, error) {
	return s.transition(ctx, id, "retry", []string{models.StatusFailed}, func(m *models.Migration, now time.Time) {
		m.Status = models.StatusInProgress
		m.StartedDate = &now
		m.CompletedDate = nil
		m.Progress = max(1, m.Progress-10)
	})
}
