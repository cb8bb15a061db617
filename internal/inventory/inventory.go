// filepath: internal/inventory/inventory.go
// Package inventory is the in-memory server and application inventory. It is
// seeded with sample data and never persisted.
package inventory

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"scmdash/internal/listview"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// Server and application status values.
const (
	ServerRunning     = "running"
	ServerStopped     = "stopped"
	ServerMaintenance = "maintenance"

	AppHealthy  = "healthy"
	AppDegraded = "degraded"
	AppDown     = "down"
)

type CPU struct {
	Model string `json:"model"`
	Cores int    `json:"cores" validate:"gte=0"`
	Speed string `json:"speed"`
}

// Memory is measured in GB.
type Memory struct {
	Total float64 `json:"total" validate:"gte=0"`
	Used  float64 `json:"used" validate:"gte=0"`
}

// Disk capacity and usage are measured in GB.
type Disk struct {
	Name     string  `json:"name" validate:"required"`
	Capacity float64 `json:"capacity" validate:"gte=0"`
	Type     string  `json:"type"`
	Used     float64 `json:"used" validate:"gte=0"`
}

type NetworkInterface struct {
	Name      string `json:"name" validate:"required"`
	Bandwidth string `json:"bandwidth"`
	PublicIP  string `json:"publicIP"`
	PrivateIP string `json:"privateIP"`
}

type Hardware struct {
	CPU               CPU                `json:"cpu"`
	Memory            Memory             `json:"memory"`
	Storage           []Disk             `json:"storage" validate:"dive"`
	NetworkInterfaces []NetworkInterface `json:"networkInterfaces" validate:"dive"`
}

type Server struct {
	ID              string    `json:"id"`
	Name            string    `json:"name" validate:"required"`
	IPAddress       string    `json:"ipAddress" validate:"required,ip"`
	Status          string    `json:"status" validate:"required,oneof=running stopped maintenance"`
	Environment     string    `json:"environment"`
	Region          string    `json:"region"`
	ServerType      string    `json:"serverType"`
	OperatingSystem string    `json:"operatingSystem"`
	OSVersion       string    `json:"osVersion"`
	Hardware        Hardware  `json:"hardware"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Application struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name" validate:"required"`
	Type                 string            `json:"type"`
	Description          string            `json:"description"`
	TechStack            string            `json:"techStack"`
	RepositoryURL        string            `json:"repositoryUrl"`
	Owner                string            `json:"owner"`
	Version              string            `json:"version"`
	Status               string            `json:"status" validate:"required,oneof=healthy degraded down"`
	DeployedOn           []string          `json:"deployedOn"`
	DeployedAt           time.Time         `json:"deployedAt"`
	Dependencies         []string          `json:"dependencies"`
	EnvironmentVariables map[string]string `json:"environmentVariables"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// Summary is the inventory headline.
type Summary struct {
	Servers        int
	RunningServers int
	Applications   int
	HealthyApps    int
	// Issues counts unhealthy applications plus servers that are not running.
	Issues int
}

// Store holds the inventory. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	servers  []Server
	apps     []Application
	validate *validator.Validate
	now      func() time.Time
}

// NewStore returns an empty inventory.
func NewStore() *Store {
	return &Store{validate: validator.New(), now: time.Now}
}

func (s *Store) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func cloneServer(sv Server) Server {
	sv.Hardware.Storage = slices.Clone(sv.Hardware.Storage)
	sv.Hardware.NetworkInterfaces = slices.Clone(sv.Hardware.NetworkInterfaces)
	return sv
}

func cloneApp(a Application) Application {
	a.DeployedOn = slices.Clone(a.DeployedOn)
	a.Dependencies = slices.Clone(a.Dependencies)
	a.EnvironmentVariables = maps.Clone(a.EnvironmentVariables)
	return a
}

// ---- servers ----

// ListServers returns servers whose name, IP, environment, region or
// operating system contains query.
func (s *Store) ListServers(query string) []Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Server{}
	for _, sv := range s.servers {
		if listview.MatchesQuery(query, sv.Name, sv.IPAddress, sv.Environment, sv.Region, sv.OperatingSystem) {
			out = append(out, cloneServer(sv))
		}
	}
	return out
}

func (s *Store) GetServer(id string) (Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.serverIndex(id)
	if i < 0 {
		return Server{}, fmt.Errorf("server %s: %w", id, ErrNotFound)
	}
	return cloneServer(s.servers[i]), nil
}

func (s *Store) serverIndex(id string) int {
	return slices.IndexFunc(s.servers, func(sv Server) bool { return sv.ID == id })
}

// CreateServer assigns an id and timestamps and appends the server.
func (s *Store) CreateServer(sv Server) (Server, error) {
	if err := s.check(sv); err != nil {
		return Server{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	sv.ID = uuid.NewString()
	sv.CreatedAt, sv.UpdatedAt = now, now
	sv = cloneServer(sv)
	s.servers = append(s.servers, sv)
	return cloneServer(sv), nil
}

// UpdateServer replaces a server, keeping its id and creation time.
func (s *Store) UpdateServer(id string, sv Server) (Server, error) {
	if err := s.check(sv); err != nil {
		return Server{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.serverIndex(id)
	if i < 0 {
		return Server{}, fmt.Errorf("server %s: %w", id, ErrNotFound)
	}
	sv.ID = id
	sv.CreatedAt = s.servers[i].CreatedAt
	sv.UpdatedAt = s.now().UTC()
	s.servers[i] = cloneServer(sv)
	return cloneServer(sv), nil
}

// DeleteServer removes a server and drops it from every application's
// deployedOn list.
func (s *Store) DeleteServer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.serverIndex(id)
	if i < 0 {
		return fmt.Errorf("server %s: %w", id, ErrNotFound)
	}
	s.servers = slices.Delete(s.servers, i, i+1)
	for j := range s.apps {
		s.apps[j].DeployedOn = slices.DeleteFunc(slices.Clone(s.apps[j].DeployedOn), func(sid string) bool { return sid == id })
	}
	return nil
}

// ---- applications ----

// ListApplications returns applications whose name, type, tech stack, owner
// or description contains query.
func (s *Store) ListApplications(query string) []Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Application{}
	for _, a := range s.apps {
		if listview.MatchesQuery(query, a.Name, a.Type, a.TechStack, a.Owner, a.Description) {
			out = append(out, cloneApp(a))
		}
	}
	return out
}

func (s *Store) GetApplication(id string) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.appIndex(id)
	if i < 0 {
		return Application{}, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return cloneApp(s.apps[i]), nil
}

func (s *Store) appIndex(id string) int {
	return slices.IndexFunc(s.apps, func(a Application) bool { return a.ID == id })
}

// checkServers requires every deployedOn entry to name a known server.
// Callers hold mu.
func (s *Store) checkServers(a Application) error {
	for _, sid := range a.DeployedOn {
		if s.serverIndex(sid) < 0 {
			return fmt.Errorf("%w: unknown server %s", ErrValidation, sid)
		}
	}
	return nil
}

func (s *Store) CreateApplication(a Application) (Application, error) {
	if err := s.check(a); err != nil {
		return Application{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkServers(a); err != nil {
		return Application{}, err
	}
	now := s.now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt, a.DeployedAt = now, now, now
	a = normalizeApp(a)
	s.apps = append(s.apps, a)
	return cloneApp(a), nil
}

func (s *Store) UpdateApplication(id string, a Application) (Application, error) {
	if err := s.check(a); err != nil {
		return Application{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.appIndex(id)
	if i < 0 {
		return Application{}, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	if err := s.checkServers(a); err != nil {
		return Application{}, err
	}
	prev := s.apps[i]
	a.ID = id
	a.CreatedAt = prev.CreatedAt
	if a.DeployedAt.IsZero() {
		a.DeployedAt = prev.DeployedAt
	}
	a.UpdatedAt = s.now().UTC()
	a = normalizeApp(a)
	s.apps[i] = a
	return cloneApp(a), nil
}

func (s *Store) DeleteApplication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.appIndex(id)
	if i < 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	s.apps = slices.Delete(s.apps, i, i+1)
	return nil
}

func normalizeApp(a Application) Application {
	a = cloneApp(a)
	if a.DeployedOn == nil {
		a.DeployedOn = []string{}
	}
	if a.Dependencies == nil {
		a.Dependencies = []string{}
	}
	if a.EnvironmentVariables == nil {
		a.EnvironmentVariables = map[string]string{}
	}
	return a
}

// ApplicationsOnServer lists the applications deployed on a server.
func (s *Store) ApplicationsOnServer(serverID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.serverIndex(serverID) < 0 {
		return nil, fmt.Errorf("server %s: %w", serverID, ErrNotFound)
	}
	out := []Application{}
	for _, a := range s.apps {
		if slices.Contains(a.DeployedOn, serverID) {
			out = append(out, cloneApp(a))
		}
	}
	return out, nil
}

// Summary counts servers, applications and open issues.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := Summary{Servers: len(s.servers), Applications: len(s.apps)}
	for _, sv := range s.servers {
		if sv.Status == ServerRunning {
			sum.RunningServers++
		} else {
			sum.Issues++
		}
	}
	for _, a := range s.apps {
		if a.Status == AppHealthy {
			sum.HealthyApps++
		} else {
			sum.Issues++
		}
	}
	return sum
}

// SortedEnv returns environment variable names in order, for stable output.
func SortedEnv(a Application) []string {
	return slices.Sorted(maps.Keys(a.EnvironmentVariables))
}
