// Package recency restricts time-stamped records to those on the latest day.
package recency

import (
	"time"

	"github.com/gyeh/clinsum/internal/normalize"
)

// Selection is the result of a recency selection: every row on the latest
// calendar day, in input order.
type Selection[T any] struct {
	Rows    []T
	Date    time.Time
	Skipped int // rows excluded because their date did not parse
}

// DateString renders the selected day as YYYY-MM-DD.
func (s Selection[T]) DateString() string {
	return normalize.FormatDay(s.Date)
}

// MostRecent keeps the rows whose date equals the maximum date. ok is false
// when no row has a usable date, which callers treat as "no data".
func MostRecent[T any](rows []T, dateOf func(T) string) (sel Selection[T], ok bool) {
	days := make([]time.Time, len(rows))
	valid := make([]bool, len(rows))
	var latest time.Time
	for i, r := range rows {
		d, parsed := normalize.ParseDay(dateOf(r))
		if !parsed {
			sel.Skipped++
			continue
		}
		days[i], valid[i] = d, true
		if !ok || d.After(latest) {
			latest, ok = d, true
		}
	}
	if !ok {
		return sel, false
	}

	sel.Date = latest
	for i, r := range rows {
		if valid[i] && days[i].Equal(latest) {
			sel.Rows = append(sel.Rows, r)
		}
	}
	return sel, true
}

// GroupBy partitions rows by key. keys lists each key once, in order of
// first appearance, so iteration over the groups is deterministic.
func GroupBy[T any, K comparable](rows []T, keyOf func(T) K) (groups map[K][]T, keys []K) {
	groups = make(map[K][]T)
	for _, r := range rows {
		k := keyOf(r)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return groups, keys
}

// LatestByKey groups rows by key and applies MostRecent to each group. Groups
// without a usable date are left out.
func LatestByKey[T any, K comparable](rows []T, keyOf func(T) K, dateOf func(T) string) map[K]Selection[T] {
	groups, keys := GroupBy(rows, keyOf)
	out := make(map[K]Selection[T], len(keys))
	for _, k := range keys {
		if sel, ok := MostRecent(groups[k], dateOf); ok {
			out[k] = sel
		}
	}
	return out
}
