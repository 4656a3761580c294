// pkg/report/report.go - read-only reports over a catalog.

package report

import (
	"sort"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
)

// UniqueNames returns the set of distinct product names.
func UniqueNames(c catalog.Catalog) map[string]struct{} {
	names := make(map[string]struct{}, len(c))
	for _, p := range c {
		names[p.Name] = struct{}{}
	}
	return names
}

// NamesWithVersions maps each name to its versions in catalog order,
// duplicates included.
func NamesWithVersions(c catalog.Catalog) map[string][]string {
	names := make(map[string][]string)
	for _, p := range c {
		names[p.Name] = append(names[p.Name], p.Version)
	}
	return names
}

// CategoryIndex buckets records by category. Records without a category are
// kept apart in Uncategorized.
type CategoryIndex struct {
	Categories    map[string]catalog.Catalog
	Uncategorized catalog.Catalog
}

// IndexCategories builds the CategoryIndex of c.
func IndexCategories(c catalog.Catalog) CategoryIndex {
	idx := CategoryIndex{Categories: make(map[string]catalog.Catalog)}
	for _, p := range c {
		if p.Category == "" {
			idx.Uncategorized = append(idx.Uncategorized, p)
			continue
		}
		idx.Categories[p.Category] = append(idx.Categories[p.Category], p)
	}
	return idx
}

// Buckets flattens the index, with uncategorized records under
// pkginfo.Uncategorized.
func (idx CategoryIndex) Buckets() map[string]catalog.Catalog {
	out := make(map[string]catalog.Catalog, len(idx.Categories)+1)
	for k, v := range idx.Categories {
		out[k] = v
	}
	if len(idx.Uncategorized) > 0 {
		out[pkginfo.Uncategorized] = idx.Uncategorized
	}
	return out
}

// CategoryCounts returns the number of records per category.
func CategoryCounts(c catalog.Catalog) map[string]int {
	counts := make(map[string]int)
	for name, members := range IndexCategories(c).Buckets() {
		counts[name] = len(members)
	}
	return counts
}

// CategoryMembers returns the records of the requested categories, or of
// every category when none are requested. Requested categories with no
// members are present with an empty catalog.
func CategoryMembers(c catalog.Catalog, categories []string) map[string]catalog.Catalog {
	buckets := IndexCategories(c).Buckets()
	if len(categories) == 0 {
		return buckets
	}
	out := make(map[string]catalog.Catalog, len(categories))
	for _, name := range categories {
		out[name] = buckets[name]
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
