package contacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"gtacts/app/repository"
)

// DefaultFeedURL is the Google contacts feed in its alt=json form. The
// max-results parameter mirrors the historical deployment: fetch everything,
// paging was never used.
const DefaultFeedURL = "https://www.google.com/m8/feeds/contacts/default/full?max-results=75000&alt=json"

// fetchState names the steps of the fetch pipeline. The flow is strictly
// sequential: the refresh exchange never overlaps the feed request.
type fetchState int

const (
	stateRequesting fetchState = iota
	stateRefreshing
	stateParsing
)

// Fetcher retrieves and normalizes the contacts feed for one identity.
// On an auth-rejected feed response it invokes the refresher and re-issues
// the request exactly once; a second rejection is terminal.
type Fetcher struct {
	store      repository.CredentialRepository
	refresher  TokenRefresher
	normalizer Normalizer
	client     *http.Client
	feedURL    string
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithFeedURL overrides the contacts feed endpoint.
func WithFeedURL(feedURL string) FetcherOption {
	return func(f *Fetcher) {
		f.feedURL = feedURL
	}
}

// WithFetchHTTPClient overrides the HTTP client used for feed requests.
func WithFetchHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a contacts fetcher from its collaborators.
func NewFetcher(store repository.CredentialRepository, refresher TokenRefresher, normalizer Normalizer, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		store:      store,
		refresher:  refresher,
		normalizer: normalizer,
		client:     &http.Client{Timeout: 10 * time.Second},
		feedURL:    DefaultFeedURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchContacts runs the fetch state machine for identityKey and returns the
// normalized records. Terminal failures are ErrAuthExpired, ErrTransport and
// ErrMalformedFeed; an unknown identity surfaces as gorm.ErrRecordNotFound.
func (f *Fetcher) FetchContacts(ctx context.Context, identityKey string) ([]ContactRecord, error) {
	cred, err := f.store.GetByIdentityKey(identityKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	var (
		token     = cred.AccessToken
		body      []byte
		refreshed bool
	)

	state := stateRequesting
	for {
		switch state {
		case stateRequesting:
			status, payload, err := f.request(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTransport, err)
			}
			switch {
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				if refreshed {
					// the token we just refreshed was rejected too,
					// never issue a third feed request
					return nil, ErrAuthExpired
				}
				state = stateRefreshing
			case status == http.StatusOK:
				body = payload
				state = stateParsing
			default:
				return nil, fmt.Errorf("%w: unexpected feed status %d", ErrTransport, status)
			}

		case stateRefreshing:
			newToken, err := f.refresher.Refresh(ctx, identityKey)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrAuthExpired, err)
			}
			token = newToken
			refreshed = true
			state = stateRequesting

		case stateParsing:
			records, err := f.normalizer.Normalize(body)
			if err != nil {
				return nil, err
			}
			return records, nil
		}
	}
}

func (f *Fetcher) request(ctx context.Context, accessToken string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("GData-Version", "3.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
