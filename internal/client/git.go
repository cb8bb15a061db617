// filepath: internal/client/git.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"scmdash/internal/models"
)

const gitBase = "/api/git"

func gitPath(parts ...any) string {
	var b strings.Builder
	b.WriteString(gitBase)
	for _, p := range parts {
		fmt.Fprintf(&b, "/%v", p)
	}
	return b.String()
}

func (c *Client) GitSummary(ctx context.Context) (*models.GitDashboardSummary, error) {
	var s models.GitDashboardSummary
	if err := c.Do(ctx, http.MethodGet, gitPath("dashboard", "summary"), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- Git users ----

func (c *Client) ListGitUsers(ctx context.Context) ([]models.GitUser, error) {
	list := []models.GitUser{}
	if err := c.Do(ctx, http.MethodGet, gitPath("users"), nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GitUserRoles(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if err := c.Do(ctx, http.MethodGet, gitPath("users", "roles"), nil, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) CreateGitUser(ctx context.Context, p models.GitUserPayload) (*models.GitUser, error) {
	var u models.GitUser
	if err := c.Do(ctx, http.MethodPost, gitPath("users"), nil, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateGitUser(ctx context.Context, id int64, p models.GitUserPayload) (*models.GitUser, error) {
	var u models.GitUser
	if err := c.Do(ctx, http.MethodPut, gitPath("users", id), nil, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteGitUser expects an empty 204 answer.
func (c *Client) DeleteGitUser(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, gitPath("users", id), nil, nil, nil)
}

// ---- Git repositories ----

// ListGitRepositories uses the search endpoint when query is set.
func (c *Client) ListGitRepositories(ctx context.Context, query string) ([]models.GitRepository, error) {
	path := gitPath("repositories")
	var q url.Values
	if query != "" {
		path = gitPath("repositories", "search")
		q = BuildQuery(map[string]any{"query": query})
	}
	list := []models.GitRepository{}
	if err := c.Do(ctx, http.MethodGet, path, q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GitRepositoryDepartments(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if err := c.Do(ctx, http.MethodGet, gitPath("repositories", "departments"), nil, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) CreateGitRepository(ctx context.Context, p models.GitRepositoryPayload) (*models.GitRepository, error) {
	var r models.GitRepository
	if err := c.Do(ctx, http.MethodPost, gitPath("repositories"), nil, p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteGitRepository(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, gitPath("repositories", id), nil, nil, nil)
}

// ---- Git backups ----

// ListGitBackups narrows to one state when status is set.
func (c *Client) ListGitBackups(ctx context.Context, status string) ([]models.GitBackup, error) {
	path := gitPath("backups")
	if status != "" {
		path = gitPath("backups", "status", url.PathEscape(status))
	}
	list := []models.GitBackup{}
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GitBackupCounts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if err := c.Do(ctx, http.MethodGet, gitPath("backups", "count"), nil, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) RunGitBackup(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	var b models.GitBackup
	if err := c.Do(ctx, http.MethodPost, gitPath("backups", "run", repoID), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
