package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scmdash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeSuperset(t *testing.T, guestStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/security/login", func(w http.ResponseWriter, r *http.Request) {
		var body supersetLoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Username != "superset" || body.Password != "secret" {
			http.Error(w, `{"message":"Not authorized"}`, http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "db", body.Provider)
		assert.True(t, body.Refresh)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "access-123"})
	})
	mux.HandleFunc("/api/v1/security/guest_token/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
		var body supersetGuestTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Resources, 1)
		assert.Equal(t, "dashboard", body.Resources[0].Type)
		assert.Equal(t, "guest", body.User.Username)
		assert.NotNil(t, body.RLS)
		if guestStatus != http.StatusOK {
			w.WriteHeader(guestStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "guest-" + body.Resources[0].ID})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSupersetService_GuestToken(t *testing.T) {
	srv := newFakeSuperset(t, http.StatusOK)
	svc := NewSupersetService(config.SupersetConfig{URL: srv.URL + "/", Username: "superset", Password: "secret", Provider: "db"})

	token, err := svc.GuestToken(context.Background(), "abc-42")
	require.NoError(t, err)
	assert.Equal(t, "guest-abc-42", token)

	_, err = svc.GuestToken(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSupersetService_Failures(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		srv := newFakeSuperset(t, http.StatusOK)
		svc := NewSupersetService(config.SupersetConfig{URL: srv.URL, Username: "superset", Password: "wrong", Provider: "db"})
		_, err := svc.GuestToken(context.Background(), "1")
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.Contains(t, err.Error(), "login")
	})

	t.Run("guest token rejected", func(t *testing.T) {
		srv := newFakeSuperset(t, http.StatusForbidden)
		svc := NewSupersetService(config.SupersetConfig{URL: srv.URL, Username: "superset", Password: "secret", Provider: "db"})
		_, err := svc.GuestToken(context.Background(), "1")
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewSupersetService(config.SupersetConfig{})
		_, err := svc.GuestToken(context.Background(), "1")
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		svc := NewSupersetService(config.SupersetConfig{URL: srv.URL, Provider: "db"})
		_, err := svc.GuestToken(context.Background(), "1")
		assert.True(t, errors.Is(err, ErrUnavailable))
	})
}
