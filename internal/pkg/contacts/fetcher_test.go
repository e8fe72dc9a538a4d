package contacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gtacts/app/repository"
)

// stubRefresher counts invocations and either installs a new token in the
// store or fails.
type stubRefresher struct {
	calls    int32
	newToken string
	err      error
	store    repository.CredentialRepository
	identity string
}

func (r *stubRefresher) Refresh(ctx context.Context, identityKey string) (string, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.err != nil {
		return "", r.err
	}
	if r.store != nil {
		if err := r.store.Upsert(identityKey, repository.CredentialFields{
			AccessToken: repository.StringPtr(r.newToken),
		}); err != nil {
			return "", err
		}
	}
	return r.newToken, nil
}

const minimalJSONFeed = `{"feed": {"entry": [{"title": {"$t": "Ada"}, "gd$email": [{"address": "ada@example.com"}]}]}}`

func newFeedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(store repository.CredentialRepository, refresher TokenRefresher, feedURL string) *Fetcher {
	return NewFetcher(store, refresher, NewJSONNormalizer(), WithFeedURL(feedURL))
}

func TestFetchContactsHappyPath(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "token-1", "refresh-1")

	var requests int32
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "3.0", r.Header.Get("GData-Version"))
		w.Write([]byte(minimalJSONFeed))
	})

	refresher := &stubRefresher{}
	fetcher := newTestFetcher(store, refresher, server.URL)

	records, err := fetcher.FetchContacts(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(0), atomic.LoadInt32(&refresher.calls))
}

func TestFetchContactsRefreshThenSuccess(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "stale-token", "refresh-1")

	var requests int32
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(minimalJSONFeed))
	})

	refresher := &stubRefresher{newToken: "fresh-token", store: store}
	fetcher := newTestFetcher(store, refresher, server.URL)

	records, err := fetcher.FetchContacts(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestFetchContactsSecondRejectionIsTerminal(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "stale-token", "refresh-1")

	var requests int32
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	refresher := &stubRefresher{newToken: "fresh-token", store: store}
	fetcher := newTestFetcher(store, refresher, server.URL)

	_, err := fetcher.FetchContacts(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrAuthExpired)

	// exactly two feed requests and one refresh, never a third request
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestFetchContactsRefreshFailure(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "stale-token", "")

	var requests int32
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	refresher := &stubRefresher{err: ErrNoRefreshToken}
	fetcher := newTestFetcher(store, refresher, server.URL)

	_, err := fetcher.FetchContacts(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestFetchContactsTransportFailure(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "token-1", "refresh-1")

	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {})
	feedURL := server.URL
	server.Close()

	refresher := &stubRefresher{}
	fetcher := newTestFetcher(store, refresher, feedURL)

	_, err := fetcher.FetchContacts(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, int32(0), atomic.LoadInt32(&refresher.calls))
}

func TestFetchContactsUnexpectedStatus(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "token-1", "refresh-1")

	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	fetcher := newTestFetcher(store, &stubRefresher{}, server.URL)

	_, err := fetcher.FetchContacts(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFetchContactsMalformedFeed(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	seedCredential(t, store, "user-1", "token-1", "refresh-1")

	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not a feed</html>`))
	})

	fetcher := newTestFetcher(store, &stubRefresher{}, server.URL)

	_, err := fetcher.FetchContacts(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrMalformedFeed)
}

func TestFetchContactsUnknownIdentity(t *testing.T) {
	store := repository.NewMemoryCredentialRepository()
	fetcher := newTestFetcher(store, &stubRefresher{}, "http://127.0.0.1:0")

	_, err := fetcher.FetchContacts(context.Background(), "ghost")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
