// Package rollup turns a record set into a ranked, percentage-annotated
// distribution over a caller-chosen key (country, sector, group).  The
// engine is pure: it holds no state and performs no I/O.
package rollup

import (
	"math"
	"sort"

	"github.com/frknaykc/dragonseye/pkg/errors"
)

// Bucket is one entry of a ranked distribution.  Percentage carries full
// precision; rounding to one decimal happens at presentation time only.
type Bucket struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// KeyFunc extracts the raw grouping key from a record.  Returning one of the
// excluded sentinel values (or "") drops the record from both the numerator
// and the denominator.
type KeyFunc[T any] func(T) string

// FilterFunc restricts which records participate in a rollup.
type FilterFunc[T any] func(T) bool

// Limit bounds for Top.  Out-of-range limits are rejected, never clamped:
// silently clamping would mask caller bugs.
const (
	MinLimit = 1
	MaxLimit = 100
)

// excludedKeys are the sentinel labels the data sources use for "no value".
var excludedKeys = map[string]struct{}{
	"":          {},
	"Unknown":   {},
	"N/A":       {},
	"Not Found": {},
}

// Excluded reports whether key is dropped from rollups entirely.
func Excluded(key string) bool {
	_, ok := excludedKeys[key]
	return ok
}

// Compute aggregates records into buckets keyed by key(record), ordered by
// count descending with ties broken by key ascending.  Records with excluded
// keys do not count toward the total, so percentages always sum to 100 over
// the emitted buckets (up to float precision).  An empty or entirely
// excluded record set yields an empty slice, never an error.
func Compute[T any](records []T, key KeyFunc[T]) []Bucket {
	return ComputeFiltered(records, key, nil)
}

// ComputeFiltered is Compute restricted to records for which filter returns
// true.  A nil filter admits every record.
func ComputeFiltered[T any](records []T, key KeyFunc[T], filter FilterFunc[T]) []Bucket {
	counts := make(map[string]int)
	total := 0
	for _, rec := range records {
		if filter != nil && !filter(rec) {
			continue
		}
		k := key(rec)
		if Excluded(k) {
			continue
		}
		counts[k]++
		total++
	}
	if total == 0 {
		return []Bucket{}
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, c := range counts {
		buckets = append(buckets, Bucket{
			Key:        k,
			Count:      c,
			Percentage: 100 * float64(c) / float64(total),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

// Top truncates a sorted bucket sequence to the first limit entries.
// The limit must lie in [MinLimit, MaxLimit].
func Top(buckets []Bucket, limit int) ([]Bucket, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, errors.InvalidLimit(limit, MinLimit, MaxLimit)
	}
	if limit > len(buckets) {
		limit = len(buckets)
	}
	return buckets[:limit], nil
}

// RoundPercentage rounds to one decimal for presentation.
func RoundPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}

// Total returns the sum of counts across buckets.
func Total(buckets []Bucket) int {
	sum := 0
	for _, b := range buckets {
		sum += b.Count
	}
	return sum
}
