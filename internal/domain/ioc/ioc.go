// Package ioc derives typed Indicators of Compromise from ransom-note
// records and deduplicates them by (type, value, source group).  The same
// value attributed to two different groups is two distinct indicators.
package ioc

import (
	"strings"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// Type classifies an indicator.
type Type string

const (
	TypeFileExtension Type = "file_extension"
	TypeFilename      Type = "filename"
	TypeDomain        Type = "domain"
	TypeURL           Type = "url"
	TypeHash          Type = "hash"
	TypeEmail         Type = "email"
)

// IsValid checks if the Type is one of the known indicator classes.
func (t Type) IsValid() bool {
	switch t {
	case TypeFileExtension, TypeFilename, TypeDomain, TypeURL, TypeHash, TypeEmail:
		return true
	default:
		return false
	}
}

// Record is a single deduplicated indicator.
type Record struct {
	Type        Type   `json:"type"`
	Value       string `json:"value"`
	SourceGroup string `json:"source_group"`
	Description string `json:"description"`
}

// dedupKey is the identity of a Record.  Description is deliberately not
// part of the key: when the same group+value pair arrives from multiple
// notes, the first-seen description wins.
type dedupKey struct {
	typ   Type
	value string
	group string
}

// Extract derives indicators from ransom notes: one file_extension Record
// per listed extension and one filename Record per non-empty filename, each
// attributed to the note's owning group.  Output preserves the insertion
// order of first occurrence; Extract makes no further ordering guarantee;
// callers needing a stable sort order sort separately.
//
// Extract is idempotent over its input: extracting from a duplicated note
// list yields the identical result.
func Extract(notes []threat.RansomNote) []Record {
	seen := make(map[dedupKey]struct{})
	out := make([]Record, 0, len(notes)*2)

	add := func(r Record) {
		k := dedupKey{typ: r.Type, value: r.Value, group: r.SourceGroup}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	for _, note := range notes {
		for _, ext := range note.Extensions {
			if ext == "" {
				continue
			}
			add(Record{
				Type:        TypeFileExtension,
				Value:       ext,
				SourceGroup: note.GroupName,
				Description: "Encrypted file extension used by " + note.GroupName,
			})
		}
		if note.Filename != "" {
			add(Record{
				Type:        TypeFilename,
				Value:       note.Filename,
				SourceGroup: note.GroupName,
				Description: "Ransom note filename for " + note.GroupName,
			})
		}
	}
	return out
}

// Filter applies a pure predicate composition over an indicator set.  All
// supplied filters AND together; zero-valued filters are skipped.  The text
// query matches case-insensitively against Value or SourceGroup; the group
// filter is case-insensitive equality; the type filter is exact.
func Filter(records []Record, query string, typeFilter Type, groupFilter string) []Record {
	q := strings.ToLower(query)
	g := strings.ToLower(groupFilter)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Value), q) &&
			!strings.Contains(strings.ToLower(r.SourceGroup), q) {
			continue
		}
		if typeFilter != "" && r.Type != typeFilter {
			continue
		}
		if g != "" && strings.ToLower(r.SourceGroup) != g {
			continue
		}
		out = append(out, r)
	}
	return out
}
