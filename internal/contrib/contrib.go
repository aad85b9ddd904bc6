// Package contrib holds the transform policies applied to contributor
// records extracted from page-data chunks.
package contrib

import (
	"fmt"
	"sort"
)

// Record is one contributor entry. `name` is the dedup key and `commits` the
// ordering key; all other fields are opaque and preserved per-record.
type Record map[string]any

// Name returns the dedup key, or "" when absent.
func (r Record) Name() string {
	s, _ := r["name"].(string)
	return s
}

// Commits returns the commit count. JSON numbers decode as float64; an
// absent or non-numeric field counts as zero.
func (r Record) Commits() float64 {
	switch v := r["commits"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// FromPayload converts the raw decoded list into records. Every entry must
// be a JSON object.
func FromPayload(list []any) ([]Record, error) {
	records := make([]Record, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("contributor %d is not an object", i)
		}
		records = append(records, Record(m))
	}
	return records, nil
}

// ToPayload converts records back into the shape the codec embeds.
func ToPayload(records []Record) []any {
	list := make([]any, len(records))
	for i, r := range records {
		list[i] = map[string]any(r)
	}
	return list
}

// Dedupe collapses records sharing a name down to one entry each. Among
// duplicates the earliest record in input order is the one retained, with
// all its fields. The scan runs in reverse: each newly seen name claims a
// slot, and any earlier occurrence found later in the scan overwrites that
// slot in place. The slots are then reversed, so the output is ordered by
// the position of each name's last occurrence. For an input with no
// duplicates this is the identity, which makes Dedupe idempotent.
//
// The ordering is a compatibility requirement inherited from the tool this
// replaces, not a deliberate policy; do not "fix" it.
func Dedupe(records []Record) []Record {
	if len(records) <= 1 {
		return records
	}
	slot := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		name := rec.Name()
		if at, ok := slot[name]; ok {
			// Earlier occurrence wins; its slot position does not move.
			out[at] = rec
			continue
		}
		slot[name] = len(out)
		out = append(out, rec)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// SortByCommits returns a copy of records in ascending commit order. Ties
// keep their relative input order. Available as a standalone transform; the
// default pipeline does not call it.
func SortByCommits(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Commits() < sorted[j].Commits()
	})
	return sorted
}
