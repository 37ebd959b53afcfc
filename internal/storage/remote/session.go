package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sergis-author/internal/model"

	"go.uber.org/zap"
)

// login обменивает имя и пароль на токен сессии.
func (b *Backend) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(model.LoginRequest{Username: b.cfg.Username, Password: b.cfg.Password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	endpoint := strings.TrimRight(b.cfg.ServerURL, "/") + "/api/session"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp model.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if resp.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("login as %q: %w", b.cfg.Username, model.ErrInvalidCredentials)
		}
		return "", fmt.Errorf("login failed with status %d: %s", resp.StatusCode, errResp.Error)
	}

	var tokenResp model.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", fmt.Errorf("login response has no token: %w", model.ErrTokenInvalid)
	}
	b.logger.Info("Logged in", zap.String("username", b.cfg.Username))
	return tokenResp.Token, nil
}

// websocketURL строит адрес /ws с токеном по адресу HTTP-сервера.
func websocketURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
