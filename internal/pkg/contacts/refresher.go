package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"gtacts/app/repository"
)

// TokenRefresher exchanges a stored refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, identityKey string) (string, error)
}

// OAuthRefresher performs the refresh-token grant against the provider's
// token endpoint and persists the new access token through the credential
// store. It never retries; the caller owns the retry decision.
type OAuthRefresher struct {
	store        repository.CredentialRepository
	clientID     string
	clientSecret string
	tokenURL     string
	client       *http.Client
}

// RefresherOption customizes an OAuthRefresher.
type RefresherOption func(*OAuthRefresher)

// WithTokenURL overrides the provider token endpoint (used by tests and
// non-Google deployments).
func WithTokenURL(tokenURL string) RefresherOption {
	return func(r *OAuthRefresher) {
		r.tokenURL = tokenURL
	}
}

// WithRefreshHTTPClient overrides the HTTP client used for the exchange.
func WithRefreshHTTPClient(client *http.Client) RefresherOption {
	return func(r *OAuthRefresher) {
		r.client = client
	}
}

// NewOAuthRefresher creates a refresher for the given OAuth client pair.
func NewOAuthRefresher(store repository.CredentialRepository, clientID, clientSecret string, opts ...RefresherOption) *OAuthRefresher {
	r := &OAuthRefresher{
		store:        store,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     google.Endpoint.TokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

// Refresh performs a single token exchange for identityKey. It returns
// ErrNoRefreshToken when the store holds no refresh token,
// ErrTokenUnchanged when the provider handed back the token already stored,
// and ErrProviderRejected for transport or provider errors. A successful
// exchange that cannot be persisted is reported as a failure so callers
// never act on a token that was not durably saved.
func (r *OAuthRefresher) Refresh(ctx context.Context, identityKey string) (string, error) {
	cred, err := r.store.GetByIdentityKey(identityKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoRefreshToken
		}
		return "", fmt.Errorf("load credential: %w", err)
	}
	if !cred.HasRefreshToken() {
		return "", ErrNoRefreshToken
	}

	form := url.Values{
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
		"refresh_token": {cred.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	if token.AccessToken == "" {
		if token.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrProviderRejected, token.Error)
		}
		return "", fmt.Errorf("%w: status %d without access_token", ErrProviderRejected, resp.StatusCode)
	}

	if token.AccessToken == cred.AccessToken {
		return "", ErrTokenUnchanged
	}

	if err := r.store.Upsert(identityKey, repository.CredentialFields{
		AccessToken: repository.StringPtr(token.AccessToken),
	}); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	log.Printf("Refreshed access token for user %s", identityKey)
	return token.AccessToken, nil
}
