// Package pipeline merges extracted rows into deduplicating accumulators
// and writes the final tables to disk.
package pipeline

import (
	"database/sql"
	"sort"

	"auction-etl/models"
)

// Accumulator holds the process-wide row sets for the four tables.
// Identical rows collapse to one entry; everything else about input
// order is discarded. The transform is single-threaded, so no locking
// is needed.
type Accumulator struct {
	users      map[models.User]struct{}
	items      map[models.Item]struct{}
	categories map[models.Category]struct{}
	bids       map[models.Bid]struct{}

	stats stats
}

// NewAccumulator builds an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		users:      make(map[models.User]struct{}),
		items:      make(map[models.Item]struct{}),
		categories: make(map[models.Category]struct{}),
		bids:       make(map[models.Bid]struct{}),
	}
}

// Merge unions one record's batch into the accumulator.
func (a *Accumulator) Merge(b *models.Batch) {
	for _, u := range b.Users {
		if _, ok := a.users[u]; ok {
			a.stats.duplicate("users")
			continue
		}
		a.users[u] = struct{}{}
	}
	for _, i := range b.Items {
		if _, ok := a.items[i]; ok {
			a.stats.duplicate("items")
			continue
		}
		a.items[i] = struct{}{}
	}
	for _, c := range b.Categories {
		if _, ok := a.categories[c]; ok {
			a.stats.duplicate("item_categories")
			continue
		}
		a.categories[c] = struct{}{}
	}
	for _, bd := range b.Bids {
		if _, ok := a.bids[bd]; ok {
			a.stats.duplicate("bids")
			continue
		}
		a.bids[bd] = struct{}{}
	}
	a.stats.records++
}

// Snapshot returns the accumulated rows sorted field-wise. The load
// contract leaves row order unspecified; sorting makes repeated runs
// byte-identical.
func (a *Accumulator) Snapshot() *models.Batch {
	out := &models.Batch{
		Users:      make([]models.User, 0, len(a.users)),
		Items:      make([]models.Item, 0, len(a.items)),
		Categories: make([]models.Category, 0, len(a.categories)),
		Bids:       make([]models.Bid, 0, len(a.bids)),
	}
	for u := range a.users {
		out.Users = append(out.Users, u)
	}
	for i := range a.items {
		out.Items = append(out.Items, i)
	}
	for c := range a.categories {
		out.Categories = append(out.Categories, c)
	}
	for b := range a.bids {
		out.Bids = append(out.Bids, b)
	}

	sort.Slice(out.Users, func(i, j int) bool {
		return fieldsLess(out.Users[i].Fields(), out.Users[j].Fields())
	})
	sort.Slice(out.Items, func(i, j int) bool {
		return fieldsLess(out.Items[i].Fields(), out.Items[j].Fields())
	})
	sort.Slice(out.Categories, func(i, j int) bool {
		return fieldsLess(out.Categories[i].Fields(), out.Categories[j].Fields())
	})
	sort.Slice(out.Bids, func(i, j int) bool {
		return fieldsLess(out.Bids[i].Fields(), out.Bids[j].Fields())
	})
	return out
}

// Counts returns the number of distinct rows per table.
func (a *Accumulator) Counts() map[string]int {
	return map[string]int{
		"users":           len(a.users),
		"items":           len(a.items),
		"item_categories": len(a.categories),
		"bids":            len(a.bids),
	}
}

// GetMetrics returns a snapshot of the internal counters.
func (a *Accumulator) GetMetrics() map[string]interface{} {
	return a.stats.snapshot()
}

// fieldsLess orders rows lexicographically over their columns, with null
// sorting before any value.
func fieldsLess(a, b []sql.NullString) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if a[i].Valid != b[i].Valid {
			return !a[i].Valid
		}
		return a[i].String < b[i].String
	}
	return false
}

type stats struct {
	records    int64
	duplicates map[string]int
}

func (s *stats) duplicate(table string) {
	if s.duplicates == nil {
		s.duplicates = make(map[string]int)
	}
	s.duplicates[table]++
}

func (s *stats) snapshot() map[string]interface{} {
	copyDuplicates := make(map[string]int, len(s.duplicates))
	for k, v := range s.duplicates {
		copyDuplicates[k] = v
	}
	return map[string]interface{}{
		"merged_records": s.records,
		"duplicates":     copyDuplicates,
	}
}
