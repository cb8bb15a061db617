package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"scmdash/internal/config"
	"scmdash/internal/models"
	"scmdash/internal/repository"

	"github.com/stretchr/testify/require"
)

type auditEvent struct {
	Action   string
	Actor    string
	Resource string
}

// recordingAuditor keeps every event for assertions.
type recordingAuditor struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *recordingAuditor) Log(_ context.Context, action, actor, resource string, _ map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{action, actor, resource})
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

func setupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "services.db")}}
	repo, err := repository.NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchemaBootstrapped())
	return repo
}

func intPtr(v int) *int         { return &v }
func idPtr(v int64) *int64      { return &v }
func actorCtx() context.Context { return WithActor(context.Background(), "admin") }

func mustUser(t *testing.T, svc UserService, username, fullName string) *models.User {
	t.Helper()
	u, err := svc.Create(actorCtx(), models.UserPayload{
		Username: username,
		FullName: fullName,
		Email:    username + "@example.com",
		Role:     models.RoleDeveloper,
		Status:   models.UserActive,
		Group:    "Development",
	})
	require.NoError(t, err)
	return u
}

func mustRepository(t *testing.T, svc RepositoryService, name string, memberIDs ...int64) *models.Repository {
	t.Helper()
	r, err := svc.Create(actorCtx(), models.RepositoryPayload{
		Name:         name,
		Description:  name + " sources",
		Size:         "256 MB",
		BackupStatus: models.BackupComplete,
	}, memberIDs)
	require.NoError(t, err)
	return r
}
