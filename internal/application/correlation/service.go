// Package correlation composes the country resolver and the rollup engine
// into the cross-cutting views the product serves: ranked distributions by
// country/sector/group, per-country detail, choropleth fill values, and the
// dashboard summary.  This package serves as the interface between HTTP
// handlers and domain logic; it performs no I/O of its own.
package correlation

import (
	"time"

	"github.com/frknaykc/dragonseye/internal/domain/country"
	"github.com/frknaykc/dragonseye/internal/domain/rollup"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// Per-view limit ceilings, matching the product's list sizes.  Limits are
// validated at this boundary and never clamped.
const (
	MaxCountryLimit = 100
	MaxSectorLimit  = 50
	MaxGroupLimit   = 100
)

// Trend window bounds in days.
const (
	MinTrendDays = 7
	MaxTrendDays = 365
)

// Service is the correlation facade.  It is stateless apart from the
// immutable resolver and safe for concurrent use.
type Service struct {
	resolver *country.Resolver
	logger   logging.Logger
	now      func() time.Time
}

// NewService constructs the facade around an alias resolver.
func NewService(resolver *country.Resolver, logger logging.Logger) *Service {
	return &Service{
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolver exposes the underlying country resolver for callers that need
// direct token resolution (e.g. the victim query service).
func (s *Service) Resolver() *country.Resolver {
	return s.resolver
}

// ─────────────────────────────────────────────────────────────────────────────
// Key extractors
// ─────────────────────────────────────────────────────────────────────────────

// CountryKey resolves a victim's country token to its canonical ISO2 code.
// Unresolved tokens map to "" and are therefore excluded from rollups.
func (s *Service) CountryKey(v threat.Victim) string {
	id, ok := s.resolver.Resolve(v.Country)
	if !ok {
		return ""
	}
	return id.Code
}

// SectorKey extracts a victim's sector label.
func SectorKey(v threat.Victim) string { return v.Activity }

// GroupKey extracts a victim's group name.
func GroupKey(v threat.Victim) string { return v.GroupName }

// ─────────────────────────────────────────────────────────────────────────────
// Rollup views
// ─────────────────────────────────────────────────────────────────────────────

// CountriesRollup ranks victims by resolved country code.
func (s *Service) CountriesRollup(victims []threat.Victim, limit int) ([]rollup.Bucket, error) {
	if limit < 1 || limit > MaxCountryLimit {
		return nil, errors.InvalidLimit(limit, 1, MaxCountryLimit)
	}
	return rollup.Top(rollup.Compute(victims, s.CountryKey), limit)
}

// SectorsRollup ranks victims by sector label.
func (s *Service) SectorsRollup(victims []threat.Victim, limit int) ([]rollup.Bucket, error) {
	if limit < 1 || limit > MaxSectorLimit {
		return nil, errors.InvalidLimit(limit, 1, MaxSectorLimit)
	}
	return rollup.Top(rollup.Compute(victims, SectorKey), limit)
}

// GroupsRollup ranks victims by group name.
func (s *Service) GroupsRollup(victims []threat.Victim, limit int) ([]rollup.Bucket, error) {
	if limit < 1 || limit > MaxGroupLimit {
		return nil, errors.InvalidLimit(limit, 1, MaxGroupLimit)
	}
	return rollup.Top(rollup.Compute(victims, GroupKey), limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Country detail
// ─────────────────────────────────────────────────────────────────────────────

// CountryDetailView is the per-country drill-down: which groups attack the
// country, which sectors they hit, and the matching victim records.
type CountryDetailView struct {
	Identity country.Identity `json:"identity"`
	Groups   []rollup.Bucket  `json:"groups"`
	Sectors  []rollup.Bucket  `json:"sectors"`
	Victims  []threat.Victim  `json:"victims"`
}

// CountryDetail filters victims to those whose resolved country matches
// isoCode, then rolls the filtered subset up by group and by sector.  An
// unknown isoCode yields an unresolved-identity error (not-found class).
func (s *Service) CountryDetail(isoCode string, victims []threat.Victim) (CountryDetailView, error) {
	id, ok := s.resolver.Resolve(isoCode)
	if !ok {
		return CountryDetailView{}, errors.New(errors.ErrCodeUnresolvedIdentity,
			"no country registered for token").WithDetail("token=" + isoCode)
	}

	matching := make([]threat.Victim, 0)
	for _, v := range victims {
		if s.CountryKey(v) == id.Code {
			matching = append(matching, v)
		}
	}

	return CountryDetailView{
		Identity: id,
		Groups:   rollup.Compute(matching, GroupKey),
		Sectors:  rollup.Compute(matching, SectorKey),
		Victims:  matching,
	}, nil
}

// MapFillValue resolves a geometry-polygon name (the boundaries dataset uses
// its own naming convention) and looks its code up in a pre-computed country
// rollup.  A missing match yields 0, never an error: the map renders an
// explicit "no data" state.
func (s *Service) MapFillValue(geometryName string, countryBuckets []rollup.Bucket) int {
	id, ok := s.resolver.Resolve(geometryName)
	if !ok {
		return 0
	}
	for _, b := range countryBuckets {
		if b.Key == id.Code {
			return b.Count
		}
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Summary and trend
// ─────────────────────────────────────────────────────────────────────────────

// TopGroup names the most active group and its victim count.
type TopGroup struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the dashboard headline view.
type Summary struct {
	TotalVictims int      `json:"total_victims"`
	TotalGroups  int      `json:"total_groups"`
	ActiveGroups int      `json:"active_groups"`
	Countries    int      `json:"countries"`
	VictimsToday int      `json:"victims_today"`
	TopGroup     TopGroup `json:"top_group"`
}

// Summarize computes the dashboard summary over the full record sets.
func (s *Service) Summarize(victims []threat.Victim, groups []threat.GroupProfile) Summary {
	sum := Summary{
		TotalVictims: len(victims),
		TotalGroups:  len(groups),
	}
	for _, g := range groups {
		if g.IsActive() {
			sum.ActiveGroups++
		}
	}

	sum.Countries = len(rollup.Compute(victims, s.CountryKey))

	today := s.now().UTC().Format("2006-01-02")
	for _, v := range victims {
		if v.DiscoveredAt.Time().UTC().Format("2006-01-02") == today {
			sum.VictimsToday++
		}
	}

	byGroup := rollup.Compute(victims, GroupKey)
	if len(byGroup) > 0 {
		sum.TopGroup = TopGroup{Name: byGroup[0].Key, Count: byGroup[0].Count}
	}
	return sum
}

// TrendPoint is one day of the victim-discovery trend.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Trend returns per-day victim counts for the trailing window ending today,
// zero-filled and sorted by date ascending.  The window length must lie in
// [MinTrendDays, MaxTrendDays].
func (s *Service) Trend(victims []threat.Victim, days int) ([]TrendPoint, error) {
	if days < MinTrendDays || days > MaxTrendDays {
		return nil, errors.InvalidLimit(days, MinTrendDays, MaxTrendDays)
	}

	counts := make(map[string]int, days)
	for _, v := range victims {
		if v.DiscoveredAt.IsZero() {
			continue
		}
		counts[v.DiscoveredAt.Time().UTC().Format("2006-01-02")]++
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, TrendPoint{Date: date, Count: counts[date]})
	}
	return points, nil
}
