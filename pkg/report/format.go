// pkg/report/format.go - line-oriented rendering of reports.

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/mattn/go-runewidth"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
)

// Report is either NamesOnly or NamesWithVersionsReport.
type Report interface {
	Write(w io.Writer) error
	isReport()
}

// NamesOnly is a set of product names.
type NamesOnly map[string]struct{}

// NamesWithVersionsReport maps names to their versions in catalog order.
type NamesWithVersionsReport map[string][]string

func (NamesOnly) isReport()               {}
func (NamesWithVersionsReport) isReport() {}

// Write prints the names sorted, one per line.
func (r NamesOnly) Write(w io.Writer) error {
	for _, name := range SortedKeys(r) {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// Write prints each name followed by its versions, one tab-indented per
// line, in catalog order.
func (r NamesWithVersionsReport) Write(w io.Writer) error {
	for _, name := range SortedKeys(r) {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
		for _, v := range r[name] {
			if _, err := fmt.Fprintf(w, "\t%s\n", v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Names builds the names report, with versions when requested.
func Names(c catalog.Catalog, withVersions bool) Report {
	if withVersions {
		return NamesWithVersionsReport(NamesWithVersions(c))
	}
	return NamesOnly(UniqueNames(c))
}

// WriteCategoryCounts prints one "category  count" line per category with
// the counts aligned in a column.
func WriteCategoryCounts(w io.Writer, counts map[string]int) error {
	keys := SortedKeys(counts)
	width := 0
	for _, k := range keys {
		if n := runewidth.StringWidth(k); n > width {
			width = n
		}
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s  %d\n", runewidth.FillRight(k, width), counts[k]); err != nil {
			return err
		}
	}
	return nil
}

// WriteCategoryMembers prints each category followed by its members, one
// tab-indented "name version" line each, ordered by name then version.
func WriteCategoryMembers(w io.Writer, members map[string]catalog.Catalog) error {
	for _, k := range SortedKeys(members) {
		if _, err := fmt.Fprintln(w, k); err != nil {
			return err
		}
		items := append(catalog.Catalog(nil), members[k]...)
		SortByNameVersion(items)
		for _, p := range items {
			line := strings.TrimSpace(p.Name + " " + p.Version)
			if _, err := fmt.Fprintf(w, "\t%s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

// SortByNameVersion orders records by name, then by version. Versions that
// parse compare semantically and sort ahead of those that do not, which
// compare as strings.
func SortByNameVersion(items []pkginfo.PkgInfo) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return versionLess(items[i].Version, items[j].Version)
	})
}

func versionLess(a, b string) bool {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.LessThan(vb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
