// Package threat defines the strongly typed record model shared by the
// DragonsEye intelligence layer, its repositories, and its serving boundary.
// Raw feed payloads are converted to these shapes exactly once, at the
// ingestion boundary (see adapter.go); the correlation layer never sees
// loose maps or fallback field chains.
package threat

import (
	"bytes"
	"encoding/json"

	"github.com/frknaykc/dragonseye/pkg/types/common"
)

// Victim is a single victim post scraped from a leak site.
type Victim struct {
	PostTitle    string           `json:"post_title"`
	GroupName    string           `json:"group_name"`
	Country      string           `json:"country"`
	Activity     string           `json:"activity"`
	Website      string           `json:"website,omitempty"`
	Description  string           `json:"description,omitempty"`
	PostURL      string           `json:"post_url,omitempty"`
	Screenshot   string           `json:"screenshot,omitempty"`
	PublishedAt  common.Timestamp `json:"published"`
	DiscoveredAt common.Timestamp `json:"discovered"`

	// Index is the victim's position within a sorted, filtered result set.
	// It is annotated by the query service per response, never stored.
	Index int `json:"_index,omitempty"`
}

// GroupLocation is one onion/clearnet mirror operated by a group.
type GroupLocation struct {
	FQDN       string           `json:"fqdn"`
	Title      string           `json:"title,omitempty"`
	Slug       string           `json:"slug,omitempty"`
	Version    int              `json:"version,omitempty"`
	Available  bool             `json:"available"`
	Enabled    bool             `json:"enabled"`
	Updated    common.Timestamp `json:"updated,omitempty"`
	LastScrape common.Timestamp `json:"lastscrape,omitempty"`
}

// GroupProfile is the metadata record for a ransomware group.
type GroupProfile struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Meta        string          `json:"meta,omitempty"`
	URL         string          `json:"url,omitempty"`
	Profiles    []string        `json:"profiles,omitempty"`
	Locations   []GroupLocation `json:"locations,omitempty"`
}

// IsActive reports whether the group has at least one available location.
func (g GroupProfile) IsActive() bool {
	for _, loc := range g.Locations {
		if loc.Available {
			return true
		}
	}
	return false
}

// RansomNote is a ransom note observation attributed to a group. Extensions
// lists the encrypted-file extensions the note was seen alongside.
type RansomNote struct {
	GroupName  string           `json:"group_name"`
	Filename   string           `json:"filename"`
	Extensions []string         `json:"extensions,omitempty"`
	Content    string           `json:"content,omitempty"`
	AddedAt    common.Timestamp `json:"added,omitempty"`
}

// Decryptor is a published decryption tool for a group's encryptor.
type Decryptor struct {
	GroupName  string           `json:"group_name"`
	Name       string           `json:"name"`
	Vendor     string           `json:"vendor,omitempty"`
	URL        string           `json:"url,omitempty"`
	ReleasedAt common.Timestamp `json:"released,omitempty"`
}

// ChatMessage is a single message in a captured negotiation transcript.
type ChatMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Timestamp common.Timestamp `json:"timestamp,omitempty"`
}

// NegotiationChat is one captured ransom negotiation.
type NegotiationChat struct {
	ChatID           string        `json:"chat_id"`
	GroupName        string        `json:"group_name"`
	Paid             PaidFlag      `json:"paid"`
	InitialRansom    float64       `json:"initial_ransom,omitempty"`
	NegotiatedRansom float64       `json:"negotiated_ransom,omitempty"`
	Messages         []ChatMessage `json:"messages,omitempty"`
}

// MessageCount returns the number of messages in the transcript.
func (c NegotiationChat) MessageCount() int {
	return len(c.Messages)
}

// ─────────────────────────────────────────────────────────────────────────────
// PaidFlag — bool-or-"true" paid field
// ─────────────────────────────────────────────────────────────────────────────

// PaidFlag preserves the source feed's inconsistent encoding of the paid
// field. Boolean true and the exact string "true" mean paid; every other
// value ("True", 1, null, arbitrary strings) does not. The original raw
// encoding is retained so records round-trip unchanged.
type PaidFlag struct {
	raw  json.RawMessage
	paid bool
}

// PaidFromBool constructs a PaidFlag with canonical boolean encoding.
func PaidFromBool(b bool) PaidFlag {
	raw := json.RawMessage("false")
	if b {
		raw = json.RawMessage("true")
	}
	return PaidFlag{raw: raw, paid: b}
}

// PaidFromString constructs a PaidFlag carrying a string-encoded value as
// observed in historical feed data.
func PaidFromString(s string) PaidFlag {
	raw, _ := json.Marshal(s)
	return PaidFlag{raw: raw, paid: s == "true"}
}

// Bool reports whether the record counts as paid.
func (p PaidFlag) Bool() bool {
	return p.paid
}

// MarshalJSON re-emits the original raw encoding; flags never observed from
// a feed marshal as boolean false.
func (p PaidFlag) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("false"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PaidFlag) UnmarshalJSON(data []byte) error {
	p.raw = append(json.RawMessage(nil), data...)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		p.paid = b
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.paid = s == "true"
		return nil
	}
	// Numbers, null, and objects are tolerated but never count as paid.
	p.paid = false
	return nil
}

// Equal reports whether two flags carry the same raw encoding.
func (p PaidFlag) Equal(other PaidFlag) bool {
	return bytes.Equal(p.raw, other.raw)
}
