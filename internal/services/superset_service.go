// filepath: internal/services/superset_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scmdash/internal/config"
	"scmdash/internal/logging"
)

var _ SupersetService = (*supersetService)(nil)

// supersetService exchanges the configured Superset credentials for embedded
// dashboard guest tokens.
type supersetService struct {
	cfg    config.SupersetConfig
	client *http.Client
}

// NewSupersetService creates a new SupersetService.
func NewSupersetService(cfg config.SupersetConfig) *supersetService {
	return &supersetService{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type supersetLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Provider string `json:"provider"`
	Refresh  bool   `json:"refresh"`
}

type supersetGuestUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type supersetResource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type supersetGuestTokenRequest struct {
	User      supersetGuestUser  `json:"user"`
	Resources []supersetResource `json:"resources"`
	RLS       []any              `json:"rls"`
}

// GuestToken logs into Superset and requests a guest token for one dashboard.
func (s *supersetService) GuestToken(ctx context.Context, dashboardID string) (string, error) {
	if strings.TrimSpace(dashboardID) == "" {
		return "", invalid("dashboardId is required")
	}
	if s.cfg.URL == "" {
		return "", fmt.Errorf("%w: superset url is not configured", ErrUnavailable)
	}
	base := strings.TrimRight(s.cfg.URL, "/")

	var login struct {
		AccessToken string `json:"access_token"`
	}
	err := s.post(ctx, base+"/api/v1/security/login", "", supersetLoginRequest{
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		Provider: s.cfg.Provider,
		Refresh:  true,
	}, &login)
	if err != nil {
		return "", fmt.Errorf("superset login failed: %w", err)
	}

	var guest struct {
		Token string `json:"token"`
	}
	err = s.post(ctx, base+"/api/v1/security/guest_token/", login.AccessToken, supersetGuestTokenRequest{
		User:      supersetGuestUser{Username: "guest", FirstName: "Guest", LastName: "User", Email: "guest@gmail.com"},
		Resources: []supersetResource{{Type: "dashboard", ID: dashboardID}},
		RLS:       []any{},
	}, &guest)
	if err != nil {
		return "", fmt.Errorf("superset guest token request failed: %w", err)
	}
	logging.Log.Debugf("SupersetService: issued guest token for dashboard %s", dashboardID)
	return guest.Token, nil
}

func (s *supersetService) post(ctx context.Context, url, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
