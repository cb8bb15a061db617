// filepath: internal/client/auth.go
package client

import (
	"context"
	"net/http"
)

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	IsAdmin      bool   `json:"isAdmin"`
}

// Login exchanges credentials for a session and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var pair tokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.Do(ctx, http.MethodPost, loginPath, nil, body, &pair); err != nil {
		return nil, err
	}
	s := &Session{
		BaseURL:      c.baseURL,
		Username:     pair.Username,
		IsAdmin:      pair.IsAdmin,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if s.Username == "" {
		s.Username = username
	}
	if err := c.store.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rotates the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	current, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if current == nil || current.RefreshToken == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Kind: ErrUnauthorized, Message: MsgUnauthorized}
	}
	return c.refresh(ctx, current)
}

func (c *Client) refresh(ctx context.Context, current *Session) (*Session, error) {
	var pair tokenPair
	body := map[string]string{"refreshToken": current.RefreshToken}
	if err := c.Do(ctx, http.MethodPost, refreshPath, nil, body, &pair); err != nil {
		return nil, err
	}
	renewed := *current
	renewed.AccessToken = pair.AccessToken
	renewed.RefreshToken = pair.RefreshToken
	if pair.Username != "" {
		renewed.Username = pair.Username
		renewed.IsAdmin = pair.IsAdmin
	}
	if err := c.store.Save(&renewed); err != nil {
		return nil, err
	}
	return &renewed, nil
}

// Logout revokes the refresh token and forgets the session. The local
// session is cleared even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	current, err := c.store.Load()
	if err != nil || current == nil {
		return c.store.Clear()
	}
	callErr := c.Do(ctx, http.MethodPost, logoutPath, nil, map[string]string{"refreshToken": current.RefreshToken}, nil)
	if err := c.store.Clear(); err != nil {
		return err
	}
	return callErr
}
