package contacts

import "errors"

// Refresh failures.
var (
	// ErrNoRefreshToken means no refresh token is stored for the identity,
	// so a new access token cannot be minted without user interaction.
	ErrNoRefreshToken = errors.New("contacts: no refresh token stored")
	// ErrTokenUnchanged means the provider returned the same access token
	// that was already stored; the exchange had no effect.
	ErrTokenUnchanged = errors.New("contacts: provider returned unchanged access token")
	// ErrProviderRejected covers transport errors and error bodies from the
	// token endpoint.
	ErrProviderRejected = errors.New("contacts: token endpoint rejected refresh")
)

// Fetch failures.
var (
	// ErrAuthExpired means the feed rejected the access token and the single
	// permitted refresh attempt could not recover; the user has to
	// re-authenticate.
	ErrAuthExpired = errors.New("contacts: access token expired and could not be refreshed")
	// ErrTransport covers network failures and unexpected feed status codes.
	ErrTransport = errors.New("contacts: feed request failed")
	// ErrMalformedFeed means the feed payload could not be parsed.
	ErrMalformedFeed = errors.New("contacts: malformed feed payload")
)
