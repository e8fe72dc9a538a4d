package contacts

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
)

// Normalizer turns a raw feed payload into the uniform record list. Both
// implementations reduce their format to feedEntry before applying the same
// field rules, so the fallback behavior is identical for JSON and XML feeds.
type Normalizer interface {
	Normalize(payload []byte) ([]ContactRecord, error)
}

// feedEntry is the common reduced shape of one raw feed entry. Emails and
// phones may contain nil values where the feed carried a null field; those
// are skipped during normalization, never emitted as empty strings.
type feedEntry struct {
	title  string
	emails []*string
	phones []*string
}

func normalizeEntries(entries []feedEntry) []ContactRecord {
	records := make([]ContactRecord, 0, len(entries))
	for _, entry := range entries {
		record := ContactRecord{
			Emails: []string{},
			Phones: []string{},
		}
		for _, email := range entry.emails {
			if email != nil {
				record.Emails = append(record.Emails, *email)
			}
		}
		for _, phone := range entry.phones {
			if phone != nil {
				record.Phones = append(record.Phones, *phone)
			}
		}

		// name fallback chain: title, first email, placeholder
		switch {
		case entry.title != "":
			record.Name = entry.title
		case len(record.Emails) > 0:
			record.Name = record.Emails[0]
		default:
			record.Name = UnnamedContact
		}

		records = append(records, record)
	}
	return records
}

// JSONNormalizer parses the GData alt=json contacts feed.
type JSONNormalizer struct{}

// NewJSONNormalizer returns a normalizer for alt=json feed payloads.
func NewJSONNormalizer() *JSONNormalizer {
	return &JSONNormalizer{}
}

// jsonFeed mirrors the GData alt=json object graph:
// {"feed":{"entry":[{"title":{"$t":...},"gd$email":[{"address":...}],"gd$phoneNumber":[{"$t":...}]}]}}
type jsonFeed struct {
	Feed struct {
		Entry []jsonEntry `json:"entry"`
	} `json:"feed"`
}

type jsonEntry struct {
	Title *struct {
		Text *string `json:"$t"`
	} `json:"title"`
	Emails []struct {
		Address *string `json:"address"`
	} `json:"gd$email"`
	Phones []struct {
		Text *string `json:"$t"`
	} `json:"gd$phoneNumber"`
}

func (n *JSONNormalizer) Normalize(payload []byte) ([]ContactRecord, error) {
	var feed jsonFeed
	if err := json.Unmarshal(payload, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	entries := make([]feedEntry, 0, len(feed.Feed.Entry))
	for _, raw := range feed.Feed.Entry {
		entry := feedEntry{}
		if raw.Title != nil && raw.Title.Text != nil {
			entry.title = *raw.Title.Text
		}
		for _, email := range raw.Emails {
			entry.emails = append(entry.emails, email.Address)
		}
		for _, phone := range raw.Phones {
			entry.phones = append(entry.phones, phone.Text)
		}
		entries = append(entries, entry)
	}
	return normalizeEntries(entries), nil
}

// XMLNormalizer parses the Atom/GData XML contacts feed.
type XMLNormalizer struct{}

// NewXMLNormalizer returns a normalizer for XML feed payloads.
func NewXMLNormalizer() *XMLNormalizer {
	return &XMLNormalizer{}
}

type xmlFeed struct {
	XMLName xml.Name   `xml:"feed"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Title  string     `xml:"title"`
	Emails []xmlEmail `xml:"email"`
	Phones []xmlPhone `xml:"phoneNumber"`
}

type xmlEmail struct {
	Address string `xml:"address,attr"`
}

type xmlPhone struct {
	Value string `xml:",chardata"`
}

func (n *XMLNormalizer) Normalize(payload []byte) ([]ContactRecord, error) {
	var feed xmlFeed
	if err := xml.Unmarshal(payload, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	entries := make([]feedEntry, 0, len(feed.Entries))
	for _, raw := range feed.Entries {
		entry := feedEntry{title: raw.Title}
		for _, email := range raw.Emails {
			// an absent address attribute decodes as "", the XML analogue
			// of a null address in the JSON feed
			if email.Address == "" {
				entry.emails = append(entry.emails, nil)
				continue
			}
			address := email.Address
			entry.emails = append(entry.emails, &address)
		}
		for _, phone := range raw.Phones {
			value := strings.TrimSpace(phone.Value)
			if value == "" {
				entry.phones = append(entry.phones, nil)
				continue
			}
			entry.phones = append(entry.phones, &value)
		}
		entries = append(entries, entry)
	}
	return normalizeEntries(entries), nil
}
