// filepath: internal/httpserver/router_test.go
package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scmdash/internal/api/handlers"
	"scmdash/internal/models"
	"scmdash/internal/services/auth"
	"scmdash/internal/services/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type routerEnv struct {
	router   *mux.Router
	users    *mocks.MockUserService
	backups  *mocks.MockBackupService
	accounts *mocks.MockAccountService
	git      *mocks.MockGitService
}

func newRouterEnv(t *testing.T, loginPerMinute int) *routerEnv {
	t.Helper()
	token := new(mocks.MockTokenService)
	token.On("ValidateAccessToken", mock.Anything, "viewer").Return(&models.Account{ID: 1, Username: "viewer", CanView: true}, nil).Maybe()
	token.On("ValidateAccessToken", mock.Anything, "editor").Return(&models.Account{ID: 2, Username: "editor", CanView: true, CanEdit: true}, nil).Maybe()
	token.On("ValidateAccessToken", mock.Anything, "admin").Return(&models.Account{ID: 3, Username: "admin", CanView: true, CanEdit: true, IsAdmin: true}, nil).Maybe()
	token.On("ValidateAccessToken", mock.Anything, mock.Anything).Return(nil, errors.New("token is malformed")).Maybe()

	env := &routerEnv{
		users:    new(mocks.MockUserService),
		backups:  new(mocks.MockBackupService),
		accounts: new(mocks.MockAccountService),
		git:      new(mocks.MockGitService),
	}
	info := new(mocks.MockInfoService)
	info.On("GetInfo").Return(models.Info{ServiceName: "SCM Dashboard API"}).Maybe()

	h := handlers.NewHandlers(handlers.Services{
		Info:     info,
		Accounts: env.accounts,
		Token:    token,
		Users:    env.users,
		Backups:  env.backups,
		Git:      env.git,
	}, nil)

	limiter := NewRateLimiter(loginPerMinute)
	t.Cleanup(limiter.Stop)
	env.router = SetupRouter(h, auth.NewMiddleware(env.accounts, token), RouterOptions{MaxBodySize: 1 << 20, LoginLimiter: limiter})
	return env
}

func (e *routerEnv) do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestPublicEndpoints(t *testing.T) {
	env := newRouterEnv(t, 10)

	rr := env.do("GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	rr = env.do("GET", "/api/info", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do("GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoleEnforcement(t *testing.T) {
	env := newRouterEnv(t, 10)
	env.users.On("List", mock.Anything, models.UserFilter{}).Return([]models.User{}, nil)
	env.accounts.On("GetAccounts", mock.Anything).Return([]models.Account{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		body   string
		want   int
	}{
		{"No credentials", "GET", "/api/svn/users", "", "", http.StatusUnauthorized},
		{"Bad token", "GET", "/api/svn/users", "garbage", "", http.StatusUnauthorized},
		{"Viewer can list", "GET", "/api/svn/users", "viewer", "", http.StatusOK},
		{"Viewer cannot create", "POST", "/api/svn/users", "viewer", `{}`, http.StatusForbidden},
		{"Editor cannot manage accounts", "GET", "/api/accounts", "editor", "", http.StatusForbidden},
		{"Admin manages accounts", "GET", "/api/accounts", "admin", "", http.StatusOK},
		{"Unknown route", "GET", "/api/svn/nothing-here", "admin", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(tt.method, tt.path, tt.bearer, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestStaticBackupRoutesWinOverIDs(t *testing.T) {
	env := newRouterEnv(t, 10)
	env.backups.On("Statistics", mock.Anything).Return(&models.BackupStatistics{LastFullBackupDate: "None"}, nil)
	env.backups.On("Get", mock.Anything, int64(12)).Return(&models.Backup{ID: 12}, nil)

	rr := env.do("GET", "/api/svn/backups/statistics", "viewer", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "lastFullBackupDate")

	rr = env.do("GET", "/api/svn/backups/12", "viewer", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	env.backups.AssertExpectations(t)
}

func TestGitRoutes(t *testing.T) {
	env := newRouterEnv(t, 10)
	env.git.On("UserCountsByRole", mock.Anything).Return(map[string]int{"ADMIN": 1}, nil)
	env.git.On("GetUser", mock.Anything, int64(4)).Return(&models.GitUser{ID: 4}, nil)
	env.git.On("ListRepositories", mock.Anything, "core").Return([]models.GitRepository{}, nil)
	env.git.On("ListBackups", mock.Anything, "PENDING").Return([]models.GitBackup{}, nil)
	env.git.On("GetBackupByRepository", mock.Anything, int64(3)).Return(&models.GitBackup{ID: 1, RepositoryID: 3}, nil)
	env.git.On("RunBackup", mock.Anything, int64(3)).Return(&models.GitBackup{ID: 1, RepositoryID: 3}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		want   int
	}{
		{"Role counts before id", "GET", "/api/git/users/roles", "viewer", http.StatusOK},
		{"User by id", "GET", "/api/git/users/4", "viewer", http.StatusOK},
		{"Search", "GET", "/api/git/repositories/search?query=core", "viewer", http.StatusOK},
		{"Status path any case", "GET", "/api/git/backups/status/pending", "viewer", http.StatusOK},
		{"Backup by repository", "GET", "/api/git/backups/repository/3", "viewer", http.StatusOK},
		{"Viewer cannot run", "POST", "/api/git/backups/run/3", "viewer", http.StatusForbidden},
		{"Editor runs", "POST", "/api/git/backups/run/3", "editor", http.StatusOK},
		{"No credentials", "GET", "/api/git/dashboard/summary", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(tt.method, tt.path, tt.bearer, "")
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
	env.git.AssertExpectations(t)
}

func TestLoginRateLimit(t *testing.T) {
	env := newRouterEnv(t, 2)
	env.accounts.On("GetAccountByUsername", mock.Anything, "admin").Return(nil, errors.New("account not found"))

	for i := 0; i < 2; i++ {
		rr := env.do("POST", "/api/auth/login", "", `{"username":"admin","password":"x"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := env.do("POST", "/api/auth/login", "", `{"username":"admin","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestRequestIDPropagation(t *testing.T) {
	env := newRouterEnv(t, 10)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", realIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", realIP(req))
}
