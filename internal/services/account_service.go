// filepath: internal/services/account_service.go
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"scmdash/internal/config"
	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
)

var _ AccountService = (*accountService)(nil)

// accountService handles business logic for console operator accounts.
type accountService struct {
	Repo    *repository.Repository
	Auditor Auditor
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, auditor Auditor) *accountService {
	return &accountService{Repo: repo, Auditor: auditor}
}

// GetAccountByUsername retrieves an account by its username.
func (s *accountService) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.Repo.GetAccountByUsername(ctx, username)
}

// GetAccountByID retrieves an account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return s.Repo.GetAccountByID(ctx, id)
}

// GetAccounts retrieves all accounts.
func (s *accountService) GetAccounts(ctx context.Context) ([]models.Account, error) {
	return s.Repo.GetAccounts(ctx)
}

// UpdateAccountPassword updates a single account's password.
func (s *accountService) UpdateAccountPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return invalid("password is required")
	}
	if err := s.Repo.UpdateAccountPassword(ctx, username, password); err != nil {
		return err
	}
	s.Auditor.Log(ctx, "account.password", ActorFrom(ctx), username, nil)
	return nil
}

// CreateAccount handles the logic for creating a new account.
func (s *accountService) CreateAccount(ctx context.Context, args repository.AccountCreateArgs) (*models.Account, error) {
	if args.Username == "" || args.Password == "" {
		return nil, invalid("username and password are required")
	}
	logging.Log.Debugf("AccountService: Attempting to create account '%s'", args.Username)
	created, err := s.Repo.CreateAccount(ctx, &args)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, fmt.Errorf("%w: account '%s' already exists", ErrConflict, args.Username)
		}
		logging.Log.Errorf("AccountService: Failed to create account '%s': %v", args.Username, err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.Auditor.Log(ctx, "account.create", ActorFrom(ctx), created.Username, map[string]interface{}{"is_admin": created.IsAdmin})
	return created, nil
}

// UpdateAccount changes an account's roles and, when newPassword is set, its password.
func (s *accountService) UpdateAccount(ctx context.Context, id int64, req models.Account, newPassword *string) (*models.Account, error) {
	logging.Log.Debugf("AccountService: Updating account ID %d", id)

	original, err := s.Repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{What: "Account", ID: id}
	}

	if !req.IsAdmin && original.IsAdmin {
		admins, err := s.Repo.GetAdminAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check for other admins: %w", err)
		}
		if len(admins) == 1 && admins[0].ID == original.ID {
			return nil, fmt.Errorf("%w: cannot remove the last admin's admin role", ErrForbidden)
		}
	}

	update := &models.Account{
		ID:       id,
		Username: original.Username,
		CanView:  req.CanView,
		CanEdit:  req.CanEdit,
		IsAdmin:  req.IsAdmin,
	}
	// The repository hashes a non-empty PasswordHash; empty skips the password.
	if newPassword != nil {
		update.PasswordHash = *newPassword
	}

	if err := s.Repo.UpdateAccount(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	s.Auditor.Log(ctx, "account.update", ActorFrom(ctx), original.Username, map[string]interface{}{
		"is_admin":         req.IsAdmin,
		"password_changed": newPassword != nil,
	})
	return s.Repo.GetAccountByID(ctx, id)
}

// DeleteAccount removes an account unless it is the last admin.
func (s *accountService) DeleteAccount(ctx context.Context, id int64) error {
	logging.Log.Debugf("AccountService: Deleting account ID %d", id)

	account, err := s.Repo.GetAccountByID(ctx, id)
	if err != nil {
		return &NotFoundError{What: "Account", ID: id}
	}

	if account.IsAdmin {
		admins, err := s.Repo.GetAdminAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for other admins: %w", err)
		}
		if len(admins) == 1 {
			return fmt.Errorf("%w: cannot delete the last admin account", ErrForbidden)
		}
	}

	if err := s.Repo.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.Auditor.Log(ctx, "account.delete", ActorFrom(ctx), account.Username, nil)
	return nil
}

// InitializeAdminAccount ensures the 'admin' account exists on startup and handles password resets.
func (s *accountService) InitializeAdminAccount(ctx context.Context, cfg *config.Config) error {
	exists, err := s.Repo.AccountExists(ctx, "admin")
	if err != nil {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	if !exists {
		return s.createAdminAccount(ctx, cfg.AdminPassword)
	}

	if cfg.ResetAdminPassword {
		return s.resetAdminPassword(ctx, cfg.AdminPassword)
	}

	return nil
}

func (s *accountService) createAdminAccount(ctx context.Context, password string) error {
	if password == "" {
		password = generateRandomPassword(10)
		logging.Log.Infof("No admin password provided. Generated a random password for 'admin': %s", password)
	}

	args := &repository.AccountCreateArgs{
		Username: "admin",
		Password: password,
		CanView:  true,
		CanEdit:  true,
		IsAdmin:  true,
	}
	if _, err := s.Repo.CreateAccount(ctx, args); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	logging.Log.Info("Admin account created successfully.")
	return nil
}

func (s *accountService) resetAdminPassword(ctx context.Context, password string) error {
	if password == "" {
		return fmt.Errorf("cannot reset admin password: --reset_pw is true but no --password or SCMDASH_PASSWORD was provided")
	}
	if err := s.Repo.UpdateAccountPassword(ctx, "admin", password); err != nil {
		return fmt.Errorf("failed to reset admin password: %w", err)
	}
	logging.Log.Info("Admin password has been reset.")
	return nil
}

// generateRandomPassword creates a cryptographically secure random password.
func generateRandomPassword(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		logging.Log.Fatalf("Failed to generate random password: %v", err)
	}
	for i := range b {
		b[i] = chars[int(b[i])%len(chars)]
	}
	return string(b)
}
