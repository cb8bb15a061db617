// filepath: internal/api/handlers/migration_handler_test.go
package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListMigrations_Filters(t *testing.T) {
	env := newTestEnv(t)
	f := models.MigrationFilter{Status: models.StatusFailed, AssignedTo: "Jane Doe", RepositoryID: 5}
	env.migrations.On("List", mock.Anything, f).Return([]models.Migration{}, nil)

	rr := serve(env.h.ListMigrations, newRequest(http.MethodGet,
		"/api/svn/migrations?status=Failed&assignedTo=Jane%20Doe&repositoryId=5", "", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestCreateMigration_RepositoryIDFromQuery(t *testing.T) {
	env := newTestEnv(t)
	env.migrations.On("Create", mock.Anything, mock.MatchedBy(func(p models.MigrationPayload) bool {
		return p.RepositoryID != nil && *p.RepositoryID == 8
	})).Return(&models.Migration{ID: 1, Status: models.StatusNotStarted}, nil)

	rr := serve(env.h.CreateMigration, newRequest(http.MethodPost, "/api/svn/migrations?repositoryId=8",
		`{"name":"project-alpha","status":"Not Started","repositoryId":3}`, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestMigrationTransitions(t *testing.T) {
	tests := []struct {
		method string
		run    func(h *Handlers) http.HandlerFunc
		verb   string
	}{
		{"Start", func(h *Handlers) http.HandlerFunc { return h.StartMigration }, "start"},
		{"Pause", func(h *Handlers) http.HandlerFunc { return h.PauseMigration }, "pause"},
		{"Complete", func(h *Handlers) http.HandlerFunc { return h.CompleteMigration }, "complete"},
		{"Retry", func(h *Handlers) http.HandlerFunc { return h.RetryMigration }, "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" succeeds", func(t *testing.T) {
			env := newTestEnv(t)
			echo := &models.Migration{ID: 3, Status: models.StatusInProgress, Progress: 0}
			env.migrations.On(tt.method, mock.Anything, int64(3)).Return(echo, nil)

			rr := serve(tt.run(env.h), newRequest(http.MethodPost, "/api/svn/migrations/3/"+tt.verb, "", id("3")))

			require.Equal(t, http.StatusOK, rr.Code)
			var got models.Migration
			decodeData(t, rr, &got)
			assert.Equal(t, *echo, got)
		})

		t.Run(tt.method+" rejected", func(t *testing.T) {
			env := newTestEnv(t)
			env.migrations.On(tt.method, mock.Anything, int64(3)).
				Return(nil, fmt.Errorf("%w: cannot %s a Completed migration", services.ErrInvalidTransition, tt.verb))

			rr := serve(tt.run(env.h), newRequest(http.MethodPost, "/api/svn/migrations/3/"+tt.verb, "", id("3")))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr), "cannot "+tt.verb)
		})
	}
}
