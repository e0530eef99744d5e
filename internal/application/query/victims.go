// Package query implements the victim listing and lookup services.
//
// A victim post carries no stable upstream identifier, so the service
// assigns positional identifiers inside the sorted, filtered result
// set and resolves single-victim lookups against them.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frknaykc/dragonseye/internal/domain/country"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MinLimit and MaxLimit bound the page size for victim listings.
	MinLimit = 1
	MaxLimit = 100

	// SortAsc and SortDesc order results by discovery timestamp.
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ─────────────────────────────────────────────────────────────────────────────
// Types
// ─────────────────────────────────────────────────────────────────────────────

// VictimFilter narrows a victim listing. Zero-valued fields are ignored.
type VictimFilter struct {
	// Group matches the group name, case-insensitively and exactly.
	Group string
	// Country is resolved through the identity table and matched
	// against each victim's resolved country code. A token that
	// resolves to nothing matches no victims.
	Country string
	// Sector is a case-insensitive substring match on the activity.
	Sector string
	// Search is a case-insensitive substring match over the post
	// title and website.
	Search string
	// Sort orders by discovery timestamp: SortAsc or SortDesc.
	// Empty defaults to SortDesc.
	Sort string
}

// VictimPage is one page of a filtered, sorted victim listing.
type VictimPage struct {
	Victims    []threat.Victim `json:"victims"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// VictimService answers listing, search and positional lookups over
// an in-memory victim snapshot.
type VictimService struct {
	resolver *country.Resolver
	logger   logging.Logger
}

// NewVictimService builds a VictimService. A nil logger is replaced
// with a no-op logger.
func NewVictimService(resolver *country.Resolver, logger logging.Logger) *VictimService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VictimService{resolver: resolver, logger: logger}
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// List filters and sorts victims, then returns the requested page.
// Victims in the page carry a 1-based positional index that is stable
// for the given filter and sort, so the first victim on page 2 with
// limit 25 has index 26. The input slice is not mutated.
func (s *VictimService) List(victims []threat.Victim, filter VictimFilter, page, limit int) (VictimPage, error) {
	if limit < MinLimit || limit > MaxLimit {
		return VictimPage{}, errors.InvalidLimit(limit, MinLimit, MaxLimit)
	}
	if page < 1 {
		return VictimPage{}, errors.InvalidParam("page must be at least 1")
	}

	matched := s.apply(victims, filter)
	total := len(matched)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start >= total {
		s.logger.Debug("victim page out of range",
			logging.Int("page", page),
			logging.Int("total", total))
		return VictimPage{Victims: []threat.Victim{}, Total: total, Page: page, PageSize: limit, TotalPages: totalPages}, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]threat.Victim, end-start)
	copy(out, matched[start:end])
	for i := range out {
		out[i].Index = start + i + 1
	}
	return VictimPage{Victims: out, Total: total, Page: page, PageSize: limit, TotalPages: totalPages}, nil
}

// ByIndex returns the victim at the given 1-based positional index
// within the filtered, sorted set that List pages over.
func (s *VictimService) ByIndex(victims []threat.Victim, filter VictimFilter, index int) (threat.Victim, error) {
	if index < 1 {
		return threat.Victim{}, errors.New(errors.ErrCodeVictimIndexInvalid, "victim index must be at least 1")
	}
	matched := s.apply(victims, filter)
	if index > len(matched) {
		return threat.Victim{}, errors.New(errors.ErrCodeVictimNotFound, "no victim at the requested index").
			WithDetail(fmt.Sprintf("index=%d", index))
	}
	v := matched[index-1]
	v.Index = index
	return v, nil
}

// Search is List with a free-text query and no other filters.
func (s *VictimService) Search(victims []threat.Victim, query string, page, limit int) (VictimPage, error) {
	return s.List(victims, VictimFilter{Search: query}, page, limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal
// ─────────────────────────────────────────────────────────────────────────────

// apply returns a new slice holding the victims that pass the filter,
// sorted by discovery timestamp.
func (s *VictimService) apply(victims []threat.Victim, filter VictimFilter) []threat.Victim {
	var countryCode string
	countryFiltered := filter.Country != ""
	if countryFiltered {
		if id, ok := s.resolver.Resolve(filter.Country); ok {
			countryCode = id.Code
		}
	}

	group := strings.ToLower(strings.TrimSpace(filter.Group))
	sector := strings.ToLower(strings.TrimSpace(filter.Sector))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]threat.Victim, 0, len(victims))
	for _, v := range victims {
		if group != "" && strings.ToLower(v.GroupName) != group {
			continue
		}
		if countryFiltered {
			if countryCode == "" {
				continue
			}
			id, ok := s.resolver.Resolve(v.Country)
			if !ok || id.Code != countryCode {
				continue
			}
		}
		if sector != "" && !strings.Contains(strings.ToLower(v.Activity), sector) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(v.PostTitle), search) &&
			!strings.Contains(strings.ToLower(v.Website), search) {
			continue
		}
		matched = append(matched, v)
	}

	asc := filter.Sort == SortAsc
	sort.SliceStable(matched, func(i, j int) bool {
		ti, tj := matched[i].DiscoveredAt.Time(), matched[j].DiscoveredAt.Time()
		if asc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	return matched
}
