package names

import "strings"

// aliases rewrites historical map names that were renamed upstream without
// keeping the old name queryable.
var aliases = map[string]string{
	"kz_cyberspace_fix": "kz_cybersand",
	"kz_hoist":          "kz_hoist_fix",
	"kz_gus":            "kz_gus_sct2",
}

// Canonical applies the historical alias table to a name.
func Canonical(name string) string {
	if current, ok := aliases[name]; ok {
		return current
	}
	return name
}

// Entry is one row of a name index.
type Entry struct {
	ID   uint32
	Name string
}

// Index resolves fuzzy names against a fixed row set: alias rewrite first,
// then exact match, then substring containment in either direction with the
// first match winning. No scoring.
type Index struct {
	entries []Entry
	exact   map[string]uint32
}

// NewIndex builds an index over the given rows, preserving their order for
// the substring pass.
func NewIndex(entries []Entry) *Index {
	exact := make(map[string]uint32, len(entries))
	for _, e := range entries {
		if _, ok := exact[e.Name]; !ok {
			exact[e.Name] = e.ID
		}
	}

	return &Index{entries: entries, exact: exact}
}

// Lookup resolves a name to a row id. The boolean is false when nothing
// matches; callers drop the referencing record rather than retry.
func (idx *Index) Lookup(name string) (uint32, bool) {
	name = Canonical(name)

	if id, ok := idx.exact[name]; ok {
		return id, true
	}

	for _, e := range idx.entries {
		if strings.Contains(e.Name, name) || strings.Contains(name, e.Name) {
			return e.ID, true
		}
	}

	return 0, false
}
