// pkg/recategorize/recategorize.go - bulk category changes driven by a plist.

package recategorize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Plist maps a category to the product names that belong in it. The
// pkginfo.Uncategorized key means "no category".
type Plist map[string][]string

// Update is one pkginfo whose category changes.
type Update struct {
	Path        string
	Name        string
	Version     string
	OldCategory string
	NewCategory string
}

func (u Update) String() string {
	return fmt.Sprintf("%s: %s -> %s", u.Path, display(u.OldCategory), display(u.NewCategory))
}

func display(c string) string {
	if c == "" {
		return pkginfo.Uncategorized
	}
	return c
}

// ConflictError lists product names assigned to more than one category.
type ConflictError struct {
	Conflicts map[string][]string // name to its categories, sorted
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for name := range e.Conflicts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s in %s", name, strings.Join(e.Conflicts[name], ", ")))
	}
	return "conflicting categories: " + strings.Join(parts, "; ")
}

// targets resolves each name to its single target category.
func targets(p Plist) (map[string]string, error) {
	cats := make(map[string]map[string]struct{})
	for category, names := range p {
		target := pkginfo.NormalizeCategory(category)
		for _, name := range names {
			if cats[name] == nil {
				cats[name] = make(map[string]struct{})
			}
			cats[name][target] = struct{}{}
		}
	}

	out := make(map[string]string, len(cats))
	conflicts := make(map[string][]string)
	for name, set := range cats {
		if len(set) > 1 {
			list := make([]string, 0, len(set))
			for c := range set {
				list = append(list, display(c))
			}
			sort.Strings(list)
			conflicts[name] = list
			continue
		}
		for c := range set {
			out[name] = c
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}
	return out, nil
}

// Plan computes the category updates p implies for c, in catalog order.
// A conflicting plist fails before anything is planned. Records must come
// from a pkgsinfo scan so that they carry their file path.
func Plan(c catalog.Catalog, p Plist) ([]Update, error) {
	want, err := targets(p)
	if err != nil {
		return nil, err
	}

	present := c.Names()
	for _, name := range sortedNames(want) {
		if present[name] == 0 {
			logging.Warn("Product not found in catalog, skipping", "name", name)
		}
	}

	var updates []Update
	for _, rec := range c {
		target, ok := want[rec.Name]
		if !ok || rec.Category == target {
			continue
		}
		if rec.Path == "" {
			return nil, fmt.Errorf("record %s has no pkginfo path", rec)
		}
		updates = append(updates, Update{
			Path:        rec.Path,
			Name:        rec.Name,
			Version:     rec.Version,
			OldCategory: rec.Category,
			NewCategory: target,
		})
	}
	return updates, nil
}

func sortedNames(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Result reports an Apply run.
type Result struct {
	Applied  []Update
	Failures []*repo.FileOperationError
}

// Failed reports whether any write failed.
func (r *Result) Failed() bool { return len(r.Failures) > 0 }

// Apply rewrites the category of each updated pkginfo, re-reading the file
// so that concurrent edits to other keys survive. Writes are independent: a
// failure is recorded and earlier writes stay in place.
func Apply(r *repo.Repo, updates []Update) *Result {
	res := &Result{}
	for _, u := range updates {
		d, err := plist.ReadDict(r.FS, u.Path)
		if err != nil {
			res.Failures = append(res.Failures, &repo.FileOperationError{Op: "read pkginfo", Path: u.Path, Err: err})
			continue
		}
		pkginfo.SetCategory(d, u.NewCategory)
		if err := plist.WriteFile(r.FS, u.Path, d); err != nil {
			res.Failures = append(res.Failures, &repo.FileOperationError{Op: "write pkginfo", Path: u.Path, Err: err})
			logging.Error("Failed to update category", "path", u.Path, "error", err)
			continue
		}
		res.Applied = append(res.Applied, u)
		logging.Info("Recategorized", "path", u.Path, "from", display(u.OldCategory), "to", display(u.NewCategory))
	}
	return res
}

// Prepare groups the current names of c by category. A name whose records
// disagree is listed under the category of its last record, so the output
// is always a valid input to Plan; for a consistently categorized catalog it
// plans no updates.
func Prepare(c catalog.Catalog) Plist {
	last := make(map[string]string)
	for _, rec := range c {
		if prev, ok := last[rec.Name]; ok && prev != rec.DisplayCategory() {
			logging.Warn("Product has records in several categories", "name", rec.Name,
				"categories", prev+", "+rec.DisplayCategory())
		}
		last[rec.Name] = rec.DisplayCategory()
	}
	out := make(Plist)
	for name, cat := range last {
		out[cat] = append(out[cat], name)
	}
	for cat := range out {
		sort.Strings(out[cat])
	}
	return out
}

// LoadPlist reads a recategorization plist.
func LoadPlist(fs billy.Filesystem, path string) (Plist, error) {
	var p Plist
	if err := plist.ReadFile(fs, path, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// SavePlist writes p as a plist.
func SavePlist(fs billy.Filesystem, path string, p Plist) error {
	return plist.WriteFile(fs, path, p)
}

// Encode renders p as plist XML.
func Encode(p Plist) ([]byte, error) {
	return plist.Encode(p)
}
