// Package contacts implements the authenticated contacts-fetch pipeline:
// feed retrieval with a single bounded token-refresh retry, and the
// normalization of Google contact feeds (JSON or XML) into a flat record list.
package contacts

// UnnamedContact is the display name used when an entry carries neither a
// title nor an email address.
const UnnamedContact = "<unnamed contact>"

// ContactRecord is one normalized entry of the contacts feed. The JSON field
// names match the wire shape served on /api/contacts.
type ContactRecord struct {
	Name   string   `json:"name"`
	Emails []string `json:"email"`
	Phones []string `json:"phone"`
}
