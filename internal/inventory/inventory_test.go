// filepath: internal/inventory/inventory_test.go
package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverByName(t *testing.T, s *Store, name string) Server {
	t.Helper()
	list := s.ListServers(name)
	require.Len(t, list, 1)
	return list[0]
}

func TestSeededStore(t *testing.T) {
	s := NewSeededStore()
	assert.Len(t, s.ListServers(""), 3)
	assert.Len(t, s.ListApplications(""), 3)

	sum := s.Summary()
	assert.Equal(t, Summary{Servers: 3, RunningServers: 2, Applications: 3, HealthyApps: 2, Issues: 2}, sum)

	api := serverByName(t, s, "api-prod-east")
	_, err := uuid.Parse(api.ID)
	assert.NoError(t, err)

	apps, err := s.ApplicationsOnServer(api.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestSearch(t *testing.T) {
	s := NewSeededStore()
	assert.Len(t, s.ListServers("PRODUCTION"), 3)
	assert.Len(t, s.ListServers("10.0.8"), 1)
	assert.Len(t, s.ListServers("centos"), 1)

	assert.Len(t, s.ListApplications("spring"), 1)
	assert.Len(t, s.ListApplications("team"), 3, "owner is searchable")
	assert.Empty(t, s.ListApplications("kafka"))
}

func TestServerCRUD(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	_, err := s.CreateServer(Server{Name: "bad", IPAddress: "not-an-ip", Status: ServerRunning})
	assert.ErrorIs(t, err, ErrValidation)

	created, err := s.CreateServer(Server{Name: "ci-runner", IPAddress: "10.1.0.4", Status: ServerStopped,
		Hardware: Hardware{Storage: []Disk{{Name: "/dev/nvme0", Capacity: 256}}}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fixed, created.CreatedAt)

	created.Hardware.Storage[0].Name = "mutated"
	got, err := s.GetServer(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/dev/nvme0", got.Hardware.Storage[0].Name, "callers get copies")

	later := fixed.Add(time.Hour)
	s.now = func() time.Time { return later }
	got.Status = ServerRunning
	updated, err := s.UpdateServer(created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, fixed, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = s.UpdateServer("missing", got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteServer("missing"), ErrNotFound)
}

func TestDeleteServerCascades(t *testing.T) {
	s := NewSeededStore()
	api := serverByName(t, s, "api-prod-east")
	web := serverByName(t, s, "web-prod-west")

	require.NoError(t, s.DeleteServer(api.ID))
	_, err := s.GetServer(api.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, a := range s.ListApplications("") {
		assert.NotContains(t, a.DeployedOn, api.ID)
	}
	auth := s.ListApplications("Authentication")
	require.Len(t, auth, 1)
	assert.Equal(t, []string{web.ID}, auth[0].DeployedOn)

	payment := s.ListApplications("Payment API")
	require.Len(t, payment, 1)
	assert.Empty(t, payment[0].DeployedOn, "applications survive with an empty deployment list")
}

func TestApplicationCRUD(t *testing.T) {
	s := NewSeededStore()
	db := serverByName(t, s, "db-prod")

	_, err := s.CreateApplication(Application{Name: "Reports", Status: AppHealthy, DeployedOn: []string{"nowhere"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CreateApplication(Application{Name: "Reports", Status: "sleeping"})
	assert.ErrorIs(t, err, ErrValidation)

	app, err := s.CreateApplication(Application{Name: "Reports", Status: AppHealthy, DeployedOn: []string{db.ID},
		EnvironmentVariables: map[string]string{"B": "2", "A": "1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, SortedEnv(app))
	assert.NotNil(t, app.Dependencies)

	app.Status = AppDown
	updated, err := s.UpdateApplication(app.ID, app)
	require.NoError(t, err)
	assert.Equal(t, AppDown, updated.Status)
	assert.Equal(t, app.DeployedAt, updated.DeployedAt)

	onDB, err := s.ApplicationsOnServer(db.ID)
	require.NoError(t, err)
	assert.Len(t, onDB, 2)

	require.NoError(t, s.DeleteApplication(app.ID))
	assert.ErrorIs(t, s.DeleteApplication(app.ID), ErrNotFound)

	_, err = s.ApplicationsOnServer("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
