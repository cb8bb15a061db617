// filepath: internal/api/handlers/main_test.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scmdash/internal/services/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// testEnv holds a Handlers instance wired to mocks only.
type testEnv struct {
	h            *Handlers
	info         *mocks.MockInfoService
	accounts     *mocks.MockAccountService
	token        *mocks.MockTokenService
	users        *mocks.MockUserService
	repositories *mocks.MockRepositoryService
	migrations   *mocks.MockMigrationService
	backups      *mocks.MockBackupService
	schedules    *mocks.MockScheduleService
	dashboard    *mocks.MockDashboardService
	superset     *mocks.MockSupersetService
	housekeeping *mocks.MockHousekeepingService
	git          *mocks.MockGitService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		info:         new(mocks.MockInfoService),
		accounts:     new(mocks.MockAccountService),
		token:        new(mocks.MockTokenService),
		users:        new(mocks.MockUserService),
		repositories: new(mocks.MockRepositoryService),
		migrations:   new(mocks.MockMigrationService),
		backups:      new(mocks.MockBackupService),
		schedules:    new(mocks.MockScheduleService),
		dashboard:    new(mocks.MockDashboardService),
		superset:     new(mocks.MockSupersetService),
		housekeeping: new(mocks.MockHousekeepingService),
		git:          new(mocks.MockGitService),
	}
	env.h = NewHandlers(Services{
		Info:         env.info,
		Accounts:     env.accounts,
		Token:        env.token,
		Users:        env.users,
		Repositories: env.repositories,
		Migrations:   env.migrations,
		Backups:      env.backups,
		Schedules:    env.schedules,
		Dashboard:    env.dashboard,
		Superset:     env.superset,
		Housekeeping: env.housekeeping,
		Git:          env.git,
	}, nil)
	t.Cleanup(func() {
		env.info.AssertExpectations(t)
		env.accounts.AssertExpectations(t)
		env.token.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.repositories.AssertExpectations(t)
		env.migrations.AssertExpectations(t)
		env.backups.AssertExpectations(t)
		env.schedules.AssertExpectations(t)
		env.dashboard.AssertExpectations(t)
		env.superset.AssertExpectations(t)
		env.housekeeping.AssertExpectations(t)
		env.git.AssertExpectations(t)
	})
	return env
}

// newRequest builds a request with optional JSON body and mux route variables.
func newRequest(method, target, body string, vars map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// decodeData unwraps {"data": ...} into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func id(n string) map[string]string { return map[string]string{"id": n} }
