// filepath: internal/repository/account_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/shared"

	"golang.org/x/crypto/bcrypt"
)

// AccountCreateArgs carries the plaintext password for account creation.
type AccountCreateArgs struct {
	Username string
	Password string
	CanView  bool
	CanEdit  bool
	IsAdmin  bool
}

const accountColumns = "id, username, password_hash, can_view, can_edit, is_admin"

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CanView, &a.CanEdit, &a.IsAdmin); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Repository) cacheAccount(a *models.Account) {
	s.Cache.Set(fmt.Sprintf("account_by_name_%s", a.Username), a, 5*time.Minute)
	s.Cache.Set(fmt.Sprintf("account_by_id_%d", a.ID), a, 5*time.Minute)
}

func (s *Repository) evictAccount(a *models.Account) {
	s.Cache.Delete(fmt.Sprintf("account_by_name_%s", a.Username))
	s.Cache.Delete(fmt.Sprintf("account_by_id_%d", a.ID))
}

// GetAccountByUsername retrieves an account by username, using a cache for performance.
func (s *Repository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	cacheKey := fmt.Sprintf("account_by_name_%s", username)
	if a, found := s.Cache.Get(cacheKey); found {
		return a.(*models.Account), nil
	}

	logging.Log.Debugf("GetAccountByUsername: CACHE MISS for '%s'. Querying DB.", username)
	row := s.DB.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE username = ?", username)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}

	s.cacheAccount(a)
	return a, nil
}

// GetAccountByID retrieves an account by id, using a cache for performance.
func (s *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	cacheKey := fmt.Sprintf("account_by_id_%d", id)
	if a, found := s.Cache.Get(cacheKey); found {
		return a.(*models.Account), nil
	}

	logging.Log.Debugf("GetAccountByID: CACHE MISS for ID %d. Querying DB.", id)
	row := s.DB.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}

	s.cacheAccount(a)
	return a, nil
}

// AccountExists checks if an account with the given username exists.
func (s *Repository) AccountExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Repository) queryAccounts(ctx context.Context, where string) ([]models.Account, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts"+where+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// GetAccounts retrieves all accounts.
func (s *Repository) GetAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(ctx, "")
}

// GetAdminAccounts retrieves all accounts with the IsAdmin role.
func (s *Repository) GetAdminAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(ctx, " WHERE is_admin = 1")
}

// CreateAccount hashes the password and inserts a new account.
func (s *Repository) CreateAccount(ctx context.Context, args *AccountCreateArgs) (*models.Account, error) {
	logging.Log.Debugf("CreateAccount: Hashing password for '%s'", args.Username)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(args.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	result, err := s.DB.ExecContext(ctx,
		"INSERT INTO accounts (username, password_hash, can_view, can_edit, is_admin) VALUES (?, ?, ?, ?, ?)",
		args.Username, string(hashedPassword), args.CanView, args.CanEdit, args.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	logging.Log.Debugf("CreateAccount: Account '%s' created with ID %d", args.Username, id)

	return &models.Account{
		ID:           id,
		Username:     args.Username,
		PasswordHash: string(hashedPassword),
		CanView:      args.CanView,
		CanEdit:      args.CanEdit,
		IsAdmin:      args.IsAdmin,
	}, nil
}

// UpdateAccount updates an account's roles and, when PasswordHash carries a
// new plaintext password, its password.
func (s *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE accounts SET can_view = ?, can_edit = ?, is_admin = ? WHERE id = ?",
			account.CanView, account.CanEdit, account.IsAdmin, account.ID); err != nil {
			return err
		}

		if account.PasswordHash == "" {
			logging.Log.Debugf("UpdateAccount: No new password for '%s'. Skipping password update.", account.Username)
			return nil
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE accounts SET password_hash = ? WHERE id = ?", string(hashedPassword), account.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.evictAccount(account)
	return nil
}

// UpdateAccountPassword replaces a single account's password.
func (s *Repository) UpdateAccountPassword(ctx context.Context, username, password string) error {
	account, err := s.GetAccountByUsername(ctx, username)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, "UPDATE accounts SET password_hash = ? WHERE id = ?", string(hashedPassword), account.ID); err != nil {
		return err
	}

	s.evictAccount(account)
	return nil
}

// DeleteAccount deletes an account by id.
func (s *Repository) DeleteAccount(ctx context.Context, id int64) error {
	account, err := s.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return err
	}

	logging.Log.Debugf("DeleteAccount: Invalidating cache for account '%s' (ID: %d)", account.Username, account.ID)
	s.evictAccount(account)
	return nil
}
