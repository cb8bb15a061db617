// filepath: internal/client/endpoints.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"scmdash/internal/models"
)

const svnBase = "/api/svn"

func idPath(resource string, id int64, suffix ...string) string {
	p := fmt.Sprintf("%s/%s/%d", svnBase, resource, id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// Deleted is the acknowledgement returned by every DELETE.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

func (c *Client) del(ctx context.Context, path string) error {
	var ack Deleted
	return c.Do(ctx, http.MethodDelete, path, nil, nil, &ack)
}

// ---- Users ----

func (c *Client) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	q := BuildQuery(map[string]any{"role": f.Role, "status": f.Status, "group": f.Group, "search": f.Search})
	list := []models.User{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/users", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.Do(ctx, http.MethodGet, idPath("users", id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, p models.UserPayload) (*models.User, error) {
	var u models.User
	if err := c.Do(ctx, http.MethodPost, svnBase+"/users", nil, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, p models.UserPayload) (*models.User, error) {
	var u models.User
	if err := c.Do(ctx, http.MethodPut, idPath("users", id), nil, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUserStatus(ctx context.Context, id int64, status string) (*models.User, error) {
	var u models.User
	q := BuildQuery(map[string]any{"status": status})
	if err := c.Do(ctx, http.MethodPatch, idPath("users", id, "status"), q, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.del(ctx, idPath("users", id))
}

// ---- Repositories ----

func (c *Client) ListRepositories(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error) {
	q := BuildQuery(map[string]any{"backupStatus": f.BackupStatus, "migrationStatus": f.MigrationStatus, "search": f.Search})
	list := []models.Repository{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/repositories", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetRepository(ctx context.Context, id int64) (*models.Repository, error) {
	var r models.Repository
	if err := c.Do(ctx, http.MethodGet, idPath("repositories", id), nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateRepository(ctx context.Context, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	var r models.Repository
	q := BuildQuery(map[string]any{"memberIds": memberIDs})
	if err := c.Do(ctx, http.MethodPost, svnBase+"/repositories", q, p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRepository replaces the repository fields. A nil memberIDs keeps the
// current members.
func (c *Client) UpdateRepository(ctx context.Context, id int64, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	var r models.Repository
	q := BuildQuery(map[string]any{"memberIds": memberIDs})
	if err := c.Do(ctx, http.MethodPut, idPath("repositories", id), q, p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteRepository(ctx context.Context, id int64) error {
	return c.del(ctx, idPath("repositories", id))
}

func (c *Client) UpdateRepositoryMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error) {
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	var r models.Repository
	body := models.MembersPayload{MemberIDs: memberIDs}
	if err := c.Do(ctx, http.MethodPut, idPath("repositories", id, "members"), nil, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateRepositoryMigrationStatus(ctx context.Context, id int64, status string, progress *int) (*models.Repository, error) {
	var r models.Repository
	q := BuildQuery(map[string]any{"status": status, "progress": progress})
	if err := c.Do(ctx, http.MethodPatch, idPath("repositories", id, "migration-status"), q, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ---- Migrations ----

func (c *Client) ListMigrations(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error) {
	params := map[string]any{"status": f.Status, "assignedTo": f.AssignedTo}
	if f.RepositoryID > 0 {
		params["repositoryId"] = f.RepositoryID
	}
	list := []models.Migration{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/migrations", BuildQuery(params), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetMigration(ctx context.Context, id int64) (*models.Migration, error) {
	var m models.Migration
	if err := c.Do(ctx, http.MethodGet, idPath("migrations", id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMigration(ctx context.Context, p models.MigrationPayload) (*models.Migration, error) {
	var m models.Migration
	q := BuildQuery(map[string]any{"repositoryId": p.RepositoryID})
	if err := c.Do(ctx, http.MethodPost, svnBase+"/migrations", q, p, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateMigration(ctx context.Context, id int64, p models.MigrationPayload) (*models.Migration, error) {
	var m models.Migration
	if err := c.Do(ctx, http.MethodPut, idPath("migrations", id), nil, p, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMigration(ctx context.Context, id int64) error {
	return c.del(ctx, idPath("migrations", id))
}

// TransitionMigration posts one of start, pause, complete or retry.
func (c *Client) TransitionMigration(ctx context.Context, id int64, action string) (*models.Migration, error) {
	var m models.Migration
	if err := c.Do(ctx, http.MethodPost, idPath("migrations", id, action), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ---- Backups ----

func (c *Client) ListBackups(ctx context.Context, f models.BackupFilter) ([]models.Backup, error) {
	params := map[string]any{"type": f.Type, "status": f.Status}
	if f.RepositoryID > 0 {
		params["repositoryId"] = f.RepositoryID
	}
	list := []models.Backup{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/backups", BuildQuery(params), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetBackup(ctx context.Context, id int64) (*models.Backup, error) {
	var b models.Backup
	if err := c.Do(ctx, http.MethodGet, idPath("backups", id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) GetBackupByCode(ctx context.Context, code string) (*models.Backup, error) {
	var b models.Backup
	path := svnBase + "/backups/backup-id/" + url.PathEscape(code)
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBackup starts a backup. An empty repositoryIDs covers every repository.
func (c *Client) CreateBackup(ctx context.Context, p models.BackupPayload, repositoryIDs []int64) (*models.Backup, error) {
	var b models.Backup
	q := BuildQuery(map[string]any{"repositoryIds": repositoryIDs})
	if err := c.Do(ctx, http.MethodPost, svnBase+"/backups", q, p, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) DeleteBackup(ctx context.Context, id int64) error {
	return c.del(ctx, idPath("backups", id))
}

func (c *Client) RetryBackup(ctx context.Context, id int64) (*models.Backup, error) {
	var b models.Backup
	if err := c.Do(ctx, http.MethodPost, idPath("backups", id, "retry"), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) BackupStatistics(ctx context.Context) (*models.BackupStatistics, error) {
	var s models.BackupStatistics
	if err := c.Do(ctx, http.MethodGet, svnBase+"/backups/statistics", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) LastFullBackup(ctx context.Context) (*models.Backup, error) {
	var b models.Backup
	if err := c.Do(ctx, http.MethodGet, svnBase+"/backups/last-full", nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ---- Schedules ----

func (c *Client) ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error) {
	q := BuildQuery(map[string]any{"type": f.Type, "frequency": f.Frequency, "status": f.Status})
	list := []models.BackupSchedule{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/backup-schedules", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetSchedule(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	if err := c.Do(ctx, http.MethodGet, idPath("backup-schedules", id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetScheduleByCode(ctx context.Context, code string) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	path := svnBase + "/backup-schedules/schedule-id/" + url.PathEscape(code)
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) NextSchedule(ctx context.Context) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	if err := c.Do(ctx, http.MethodGet, svnBase+"/backup-schedules/next", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) CreateSchedule(ctx context.Context, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	q := BuildQuery(map[string]any{"repositoryIds": repositoryIDs})
	if err := c.Do(ctx, http.MethodPost, svnBase+"/backup-schedules", q, p, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, id int64, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	q := BuildQuery(map[string]any{"repositoryIds": repositoryIDs})
	if err := c.Do(ctx, http.MethodPut, idPath("backup-schedules", id), q, p, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	return c.del(ctx, idPath("backup-schedules", id))
}

func (c *Client) ToggleScheduleStatus(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	if err := c.Do(ctx, http.MethodPost, idPath("backup-schedules", id, "toggle-status"), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- Dashboard ----

func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var m models.DashboardMetrics
	if err := c.Do(ctx, http.MethodGet, svnBase+"/dashboard/metrics", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) RecentActivity(ctx context.Context) ([]models.Activity, error) {
	list := []models.Activity{}
	if err := c.Do(ctx, http.MethodGet, svnBase+"/dashboard/recent-activity", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) MigrationProgress(ctx context.Context) (*models.MigrationProgress, error) {
	var m models.MigrationProgress
	if err := c.Do(ctx, http.MethodGet, svnBase+"/dashboard/migration-progress", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) BackupSummary(ctx context.Context) (*models.BackupSummary, error) {
	var s models.BackupSummary
	if err := c.Do(ctx, http.MethodGet, svnBase+"/dashboard/backup-summary", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- Accounts, BI and operations ----

// AccountRequest is the body of account create and update calls. On update,
// nil fields are left unchanged.
type AccountRequest struct {
	Username string  `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	CanView  *bool   `json:"canView,omitempty"`
	CanEdit  *bool   `json:"canEdit,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}

func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	list := []models.Account{}
	if err := c.Do(ctx, http.MethodGet, "/api/accounts", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateAccount(ctx context.Context, req AccountRequest) (*models.Account, error) {
	var a models.Account
	if err := c.Do(ctx, http.MethodPost, "/api/accounts", nil, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id int64, req AccountRequest) (*models.Account, error) {
	var a models.Account
	req.Username = ""
	if err := c.Do(ctx, http.MethodPut, "/api/accounts/"+strconv.FormatInt(id, 10), nil, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return c.del(ctx, "/api/accounts/"+strconv.FormatInt(id, 10))
}

// SupersetGuestToken exchanges a dashboard id for an embed token.
func (c *Client) SupersetGuestToken(ctx context.Context, dashboardID string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"dashboardId": dashboardID}
	if err := c.Do(ctx, http.MethodPost, "/api/superset/guest-token", nil, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) TriggerHousekeeping(ctx context.Context, dryRun bool) (*models.HousekeepingReport, error) {
	var rep models.HousekeepingReport
	q := url.Values{"dryRun": {strconv.FormatBool(dryRun)}}
	if err := c.Do(ctx, http.MethodPost, "/api/admin/housekeeping", q, nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
