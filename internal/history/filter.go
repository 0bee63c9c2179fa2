package history

import "slices"

// Filter selects entries for display. Zero fields match everything.
type Filter struct {
	Feature string // requested feature id
	Status  string
	Limit   int // keep only the newest N matches
}

// Select returns the entries of l matching f, oldest first.
func (l *Log) Select(f Filter) []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Feature != "" && !slices.Contains(e.Features, f.Feature) {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
