package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artshoppe/storefront/internal/core/domain"
)

const defaultHostedTimeout = 5 * time.Second

// HostedConfig points the provider at the hosted auth service.
type HostedConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HostedProvider signs users in with the hosted auth service and asks it
// who owns an access token.
type HostedProvider struct {
	userURL  string
	tokenURL string
	apiKey   string
	client   *http.Client
}

func NewHostedProvider(cfg HostedConfig) (*HostedProvider, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("hosted identity: base url and api key are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHostedTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &HostedProvider{
		userURL:  base + "/auth/v1/user",
		tokenURL: base + "/auth/v1/token?grant_type=password",
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type hostedUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	User        hostedUser `json:"user"`
}

func (u hostedUser) toDomain() *domain.User {
	return &domain.User{ID: u.ID, Email: u.Email, DisplayName: u.UserMetadata.FullName}
}

// Login exchanges credentials for a hosted access token with the password
// grant. Rejected credentials map to domain.ErrInvalidCredentials.
func (p *HostedProvider) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	body, err := json.Marshal(passwordGrant{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return "", nil, fmt.Errorf("hosted login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("hosted login: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("hosted login: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", nil, domain.ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", nil, fmt.Errorf("hosted login: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return "", nil, fmt.Errorf("hosted login: decode: %w", err)
	}
	if tr.AccessToken == "" || tr.User.ID == "" {
		return "", nil, fmt.Errorf("hosted login: token response missing access token or user")
	}
	return tr.AccessToken, tr.User.toDomain(), nil
}

func (p *HostedProvider) CurrentUser(ctx context.Context, r *http.Request) (*domain.User, error) {
	raw := accessToken(r)
	if raw == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hosted identity: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+raw)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hosted identity: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("hosted identity: unexpected status %d", resp.StatusCode)
	}

	var hu hostedUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&hu); err != nil {
		return nil, fmt.Errorf("hosted identity: decode: %w", err)
	}
	if hu.ID == "" {
		return nil, nil
	}
	return hu.toDomain(), nil
}
