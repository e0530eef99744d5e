// Package negotiation partitions captured ransom negotiations by group,
// computes per-group aggregate stats, and serves stable, independently
// paginated slices per group.
package negotiation

import (
	"sort"

	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// Stats aggregates one group's negotiation partition.
type Stats struct {
	Total         int `json:"total"`
	PaidCount     int `json:"paid_count"`
	TotalMessages int `json:"total_messages"`
}

// GroupView is one group's page of negotiations plus partition-wide stats.
// Views are created per query from the live chat list; nothing is persisted.
type GroupView struct {
	GroupName  string                   `json:"group_name"`
	Chats      []threat.NegotiationChat `json:"chats"`
	Stats      Stats                    `json:"stats"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
}

// Page size bounds.  Rejected, not clamped, when out of range.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// GroupAndPage partitions chats by exact (case-sensitive) group name, sorts
// each partition by chat ID in reverse lexicographic order (chat IDs are
// opaque strings, never numeric), and returns one GroupView per group
// holding the requested page.  pageByGroup supplies each group's 1-based
// page number; groups absent from the map serve page 1.  Each group's page
// cursor is independent: advancing one group never affects another's slice.
//
// Pages are sliced as [start, min(start+pageSize, total)) with
// start = (page-1) × pageSize; any out-of-range page yields an empty slice,
// not an error.
func GroupAndPage(chats []threat.NegotiationChat, pageSize int, pageByGroup map[string]int) (map[string]GroupView, error) {
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, errors.InvalidLimit(pageSize, MinPageSize, MaxPageSize)
	}

	partitions := Partition(chats)

	views := make(map[string]GroupView, len(partitions))
	for group, members := range partitions {
		page := 1
		if p, ok := pageByGroup[group]; ok {
			page = p
		}

		stats := Stats{Total: len(members)}
		for _, c := range members {
			if c.Paid.Bool() {
				stats.PaidCount++
			}
			stats.TotalMessages += c.MessageCount()
		}

		totalPages := (len(members) + pageSize - 1) / pageSize

		slice := []threat.NegotiationChat{}
		if page >= 1 {
			start := (page - 1) * pageSize
			if start < len(members) {
				end := start + pageSize
				if end > len(members) {
					end = len(members)
				}
				slice = members[start:end]
			}
		}

		views[group] = GroupView{
			GroupName:  group,
			Chats:      slice,
			Stats:      stats,
			Page:       page,
			TotalPages: totalPages,
		}
	}
	return views, nil
}

// Partition splits chats by exact group name and sorts each partition by
// chat ID descending (reverse lexicographic).  The input slice is not
// modified.
func Partition(chats []threat.NegotiationChat) map[string][]threat.NegotiationChat {
	partitions := make(map[string][]threat.NegotiationChat)
	for _, c := range chats {
		partitions[c.GroupName] = append(partitions[c.GroupName], c)
	}
	for group, members := range partitions {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].ChatID > members[j].ChatID
		})
		partitions[group] = members
	}
	return partitions
}
