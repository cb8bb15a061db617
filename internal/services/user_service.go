// filepath: internal/services/user_service.go
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

var _ UserService = (*userService)(nil)

// userService handles business logic for SCM user management.
type userService struct {
	Repo    *repository.Repository
	Auditor Auditor
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, auditor Auditor) *userService {
	return &userService{Repo: repo, Auditor: auditor}
}

func (s *userService) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, f)
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return u, nil
}

// checkUnique rejects a username or email that another user already holds.
func (s *userService) checkUnique(ctx context.Context, p models.UserPayload, exceptID int64) error {
	taken, err := s.Repo.UserUsernameTaken(ctx, p.Username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("Username already exists: " + p.Username)
	}
	taken, err = s.Repo.UserEmailTaken(ctx, p.Email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("Email already exists: " + p.Email)
	}
	return nil
}

func applyUserPayload(u *models.User, p models.UserPayload) {
	u.Username = p.Username
	u.FullName = p.FullName
	u.Email = p.Email
	u.Role = p.Role
	u.Status = p.Status
	u.Group = p.Group
	u.Initials = p.Initials
	if u.Initials == "" {
		u.Initials = shared.Initials(p.FullName)
	}
	if p.ColorCode != "" {
		u.ColorCode = p.ColorCode
	}
	if u.ColorCode == "" {
		u.ColorCode = shared.ColorFor(p.Username)
	}
}

func (s *userService) Create(ctx context.Context, p models.UserPayload) (*models.User, error) {
	if err := s.checkUnique(ctx, p, 0); err != nil {
		return nil, err
	}
	u := &models.User{}
	applyUserPayload(u, p)

	created, err := s.Repo.CreateUser(ctx, u)
	if err != nil {
		logging.Log.Errorf("UserService: Failed to create user '%s': %v", p.Username, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.Auditor.Log(ctx, "user.create", ActorFrom(ctx), created.Username, map[string]interface{}{"role": created.Role})
	return created, nil
}

func (s *userService) Update(ctx context.Context, id int64, p models.UserPayload) (*models.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, p, id); err != nil {
		return nil, err
	}
	applyUserPayload(existing, p)
	now := time.Now().UTC()
	existing.LastActivity = &now

	updated, err := s.Repo.UpdateUser(ctx, existing)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	s.Auditor.Log(ctx, "user.update", ActorFrom(ctx), updated.Username, nil)
	return updated, nil
}

func (s *userService) UpdateStatus(ctx context.Context, id int64, status string) (*models.User, error) {
	switch status {
	case models.UserActive, models.UserInactive, models.UserLocked:
	default:
		return nil, invalid("Invalid status: " + status)
	}
	updated, err := s.Repo.UpdateUserStatus(ctx, id, status)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	s.Auditor.Log(ctx, "user.status", ActorFrom(ctx), updated.Username, map[string]interface{}{"status": status})
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "User", id)
	}
	s.Auditor.Log(ctx, "user.delete", ActorFrom(ctx), u.Username, nil)
	return nil
}
