package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// StatsClient exposes the statistics and map endpoints.
type StatsClient struct {
	client *Client
}

// Bucket is one slice of a rollup: the grouping key, its record count,
// and its share of the denominator.
type Bucket struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TopGroup is the most active group in the summary window.
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

// TrendPoint is one day of the victim trend series.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CountryIdentity is a resolved country.
type CountryIdentity struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases,omitempty"`
}

// CountryDetail is the per-country drill-down view.
type CountryDetail struct {
	Identity CountryIdentity `json:"identity"`
	Groups   []Bucket        `json:"groups"`
	Sectors  []Bucket        `json:"sectors"`
	Victims  []threat.Victim `json:"victims"`
}

// Summary fetches the dashboard summary.
func (s *StatsClient) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := s.client.get(ctx, "/api/v1/stats/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Countries fetches the per-country victim rollup. limit <= 0 uses the
// server default.
func (s *StatsClient) Countries(ctx context.Context, limit int) ([]Bucket, error) {
	return s.buckets(ctx, "/api/v1/stats/countries", limit)
}

// Sectors fetches the per-sector victim rollup.
func (s *StatsClient) Sectors(ctx context.Context, limit int) ([]Bucket, error) {
	return s.buckets(ctx, "/api/v1/stats/sectors", limit)
}

// Groups fetches the per-group victim rollup.
func (s *StatsClient) Groups(ctx context.Context, limit int) ([]Bucket, error) {
	return s.buckets(ctx, "/api/v1/stats/groups", limit)
}

func (s *StatsClient) buckets(ctx context.Context, path string, limit int) ([]Bucket, error) {
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out []Bucket
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trend fetches the daily victim counts for the trailing window.
// days <= 0 uses the server default.
func (s *StatsClient) Trend(ctx context.Context, days int) ([]TrendPoint, error) {
	path := "/api/v1/stats/trend"
	if days > 0 {
		path = fmt.Sprintf("%s?days=%d", path, days)
	}
	var out []TrendPoint
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Country resolves a country token (ISO code, name or alias) and
// returns its drill-down view.
func (s *StatsClient) Country(ctx context.Context, token string) (*CountryDetail, error) {
	var out CountryDetail
	if err := s.client.get(ctx, "/api/v1/country/"+url.PathEscape(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MapFill fetches map fill counts. With names, the result is keyed by
// each requested geometry name; without, by ISO country code.
func (s *StatsClient) MapFill(ctx context.Context, names []string) (map[string]int, error) {
	path := "/api/v1/map/fill"
	if len(names) > 0 {
		q := url.Values{}
		q.Set("names", strings.Join(names, ","))
		path += "?" + q.Encode()
	}
	var out map[string]int
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
