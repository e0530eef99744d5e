// Package country canonicalizes the many spellings and codes a country
// arrives under (ISO alpha-2 codes from the statistics feed, free-text
// labels from scraped posts, and the geometry dataset's own names) onto a
// single identity per country.  The resolver is built once at process start
// and is immutable thereafter, so concurrent reads need no synchronization.
package country

import (
	"fmt"
	"sort"
	"strings"
)

// Identity is the canonical representation of one country.
type Identity struct {
	// Code is the ISO alpha-2 code, uppercase.
	Code string `json:"code"`

	// DisplayName is the canonical human-readable name.
	DisplayName string `json:"display_name"`

	// Aliases lists every known spelling, including the geometry dataset's
	// variants.  The display name is always present.
	Aliases []string `json:"aliases"`
}

// sentinel tokens that never resolve, regardless of table contents.
var excludedTokens = map[string]struct{}{
	"":          {},
	"unknown":   {},
	"n/a":       {},
	"not found": {},
}

// IsExcludedToken reports whether token is one of the sentinel values the
// data sources use for "no country".  Comparison is case-insensitive.
func IsExcludedToken(token string) bool {
	_, ok := excludedTokens[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Resolver maps country tokens to identities.  All lookups are
// case-insensitive.  A Resolver is immutable after construction.
type Resolver struct {
	byToken map[string]Identity
	byCode  map[string]Identity
	codes   []string
}

// NewResolver builds a Resolver over the built-in alias table.
func NewResolver() *Resolver {
	r, err := NewResolverWithTable(defaultTable)
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic(err)
	}
	return r
}

// NewResolverWithTable builds a Resolver from a code → names table.  The
// first name per code becomes the identity's display name.  Construction
// fails when an alias (or code) would be owned by more than one identity,
// since alias ownership must be unambiguous for resolution to be a function.
func NewResolverWithTable(table map[string][]string) (*Resolver, error) {
	r := &Resolver{
		byToken: make(map[string]Identity, len(table)*3),
		byCode:  make(map[string]Identity, len(table)),
		codes:   make([]string, 0, len(table)),
	}

	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		names := table[code]
		if len(names) == 0 {
			return nil, fmt.Errorf("country: code %q has no names", code)
		}
		upper := strings.ToUpper(code)
		id := Identity{
			Code:        upper,
			DisplayName: names[0],
			Aliases:     append([]string(nil), names...),
		}

		if err := r.claim(strings.ToLower(upper), id); err != nil {
			return nil, err
		}
		for _, name := range names {
			if err := r.claim(strings.ToLower(name), id); err != nil {
				return nil, err
			}
		}
		r.byCode[upper] = id
		r.codes = append(r.codes, upper)
	}
	return r, nil
}

func (r *Resolver) claim(token string, id Identity) error {
	if owner, taken := r.byToken[token]; taken && owner.Code != id.Code {
		return fmt.Errorf("country: alias %q claimed by both %s and %s", token, owner.Code, id.Code)
	}
	r.byToken[token] = id
	return nil
}

// Resolve maps a token (ISO2 code or any known name) to its Identity.
// Sentinel tokens ("", "Unknown", "N/A", "Not Found") and unrecognized
// tokens report ok == false; callers skip such records rather than fail.
func (r *Resolver) Resolve(token string) (Identity, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	if _, excluded := excludedTokens[key]; excluded {
		return Identity{}, false
	}
	id, ok := r.byToken[key]
	return id, ok
}

// AliasesFor returns the known names for an ISO2 code, or nil when the code
// is not registered.  Used to test whether a geometry-polygon name belongs
// to a given country.
func (r *Resolver) AliasesFor(code string) []string {
	id, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	return append([]string(nil), id.Aliases...)
}

// Codes returns all registered ISO2 codes in ascending order.
func (r *Resolver) Codes() []string {
	return append([]string(nil), r.codes...)
}
