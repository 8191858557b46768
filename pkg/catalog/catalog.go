// Package catalog defines the set of CPython versions pyvers knows how to
// build, keyed by short label (e.g. "3.12") with an exact patch version
// (e.g. "3.12.1") behind each label.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VersionEntry maps a user-facing short label to the exact patch version
// that gets fetched and built. Entries are immutable after construction.
type VersionEntry struct {
	Label string `yaml:"label" validate:"required"`
	Full  string `yaml:"full" validate:"required"`
}

// Executable returns the conventional name of the version-suffixed
// interpreter binary for this entry (e.g. "python3.12").
func (e VersionEntry) Executable() string {
	return "python" + e.Label
}

// Catalog is an ordered collection of version entries, ascending by
// semantic version. The order is fixed at construction.
type Catalog struct {
	entries []VersionEntry
}

// Default returns the built-in catalog of supported versions.
func Default() *Catalog {
	c, err := New([]VersionEntry{
		{Label: "3.9", Full: "3.9.18"},
		{Label: "3.10", Full: "3.10.13"},
		{Label: "3.11", Full: "3.11.7"},
		{Label: "3.12", Full: "3.12.1"},
	})
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic(err)
	}
	return c
}

// New builds a catalog from the given entries, sorted ascending by version.
// Labels must be unique and each full version must start with its label.
func New(entries []VersionEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog: no entries")
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Label == "" || e.Full == "" {
			return nil, fmt.Errorf("catalog: entry with empty label or version")
		}
		if _, dup := seen[e.Label]; dup {
			return nil, fmt.Errorf("catalog: duplicate label %s", e.Label)
		}
		seen[e.Label] = struct{}{}
		if !strings.HasPrefix(e.Full, e.Label+".") {
			return nil, fmt.Errorf("catalog: full version %s does not match label %s", e.Full, e.Label)
		}
	}

	sorted := make([]VersionEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i].Full, sorted[j].Full) < 0
	})

	return &Catalog{entries: sorted}, nil
}

// Entries returns the catalog in ascending version order.
func (c *Catalog) Entries() []VersionEntry {
	out := make([]VersionEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for the given short label.
func (c *Catalog) Lookup(label string) (VersionEntry, bool) {
	for _, e := range c.entries {
		if e.Label == label {
			return e, true
		}
	}
	return VersionEntry{}, false
}

// Compare orders two dotted version strings numerically, segment by
// segment. Non-numeric segments fall back to lexical comparison, which is
// good enough for CPython release strings.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var sa, sb string
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		default:
			if sa != sb {
				return strings.Compare(sa, sb)
			}
		}
	}
	return 0
}
