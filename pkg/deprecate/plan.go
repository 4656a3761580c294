// pkg/deprecate/plan.go - selecting what a deprecation removes.

package deprecate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/icons"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/manifest"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// ErrNoSelection guards against a deprecation that names nothing.
var ErrNoSelection = errors.New("no names or categories given to deprecate")

// Selector picks pkginfos by name or category.
type Selector struct {
	Names      []string
	Categories []string
}

// Empty reports whether the selector names nothing.
func (s Selector) Empty() bool {
	return len(s.Names) == 0 && len(s.Categories) == 0
}

func (s Selector) matcher() func(pkginfo.PkgInfo) bool {
	names := toSet(s.Names)
	cats := toSet(s.Categories)
	return func(p pkginfo.PkgInfo) bool {
		if _, ok := names[p.Name]; ok {
			return true
		}
		_, ok := cats[p.DisplayCategory()]
		return ok
	}
}

// Item is one selected pkginfo and the pkgs that go with it.
type Item struct {
	PkgInfo pkginfo.PkgInfo
	Pkgs    []string
	Bytes   int64
}

// Plan is everything a deprecation will touch, computed without mutating
// the repo.
type Plan struct {
	Items []Item

	// Warnings are pkgs referenced by selected pkginfos that are already
	// missing from disk.
	Warnings []*repo.OrphanReferenceWarning

	// Shared are pkgs of selected pkginfos that unselected pkginfos still
	// use; they stay.
	Shared []string

	// RemovedNames lose every version and are stripped from manifests.
	RemovedNames []string

	// ManifestRefs maps a manifest path to the RemovedNames it references.
	ManifestRefs map[string][]string

	// Icons of the selected products that nothing left will reference.
	Icons []string
}

// Summary counts what a plan affects, for confirmation prompts.
type Summary struct {
	Pkginfos        int
	Pkgs            int
	Icons           int
	Manifests       int
	ManifestEntries int
	Bytes           int64
}

// Summary counts the plan.
func (p *Plan) Summary() Summary {
	s := Summary{Pkginfos: len(p.Items), Icons: len(p.Icons), Manifests: len(p.ManifestRefs)}
	for _, it := range p.Items {
		s.Pkgs += len(it.Pkgs)
		s.Bytes += it.Bytes
	}
	for _, names := range p.ManifestRefs {
		s.ManifestEntries += len(names)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d pkginfos, %d pkgs, %d icons, %d manifest entries in %d manifests",
		s.Pkginfos, s.Pkgs, s.Icons, s.ManifestEntries, s.Manifests)
}

// Empty reports whether the plan removes nothing.
func (p *Plan) Empty() bool {
	return len(p.Items) == 0
}

// NewPlan selects the records of c matching sel. c must come from a
// pkgsinfo scan. Every record with a selected name or category is taken,
// duplicates of the same name and version included.
func NewPlan(r *repo.Repo, c catalog.Catalog, sel Selector) (*Plan, error) {
	if sel.Empty() {
		return nil, ErrNoSelection
	}
	match := sel.matcher()

	var selected, kept catalog.Catalog
	for _, p := range c {
		if match(p) {
			if p.Path == "" {
				return nil, fmt.Errorf("record %s has no pkginfo path", p)
			}
			selected = append(selected, p)
		} else {
			kept = append(kept, p)
		}
	}

	stillUsed := make(map[string]struct{})
	for _, p := range kept {
		for _, pkg := range p.Pkgs() {
			stillUsed[pkg] = struct{}{}
		}
	}

	plan := &Plan{}
	planned := make(map[string]struct{})
	for _, p := range selected {
		item := Item{PkgInfo: p}
		if size, err := fileops.Size(r.FS, p.Path); err == nil {
			item.Bytes += size
		}
		for _, pkg := range p.Pkgs() {
			if _, ok := planned[pkg]; ok {
				continue
			}
			if _, ok := stillUsed[pkg]; ok {
				plan.Shared = append(plan.Shared, pkg)
				logging.Info("Keeping pkg still used by another pkginfo", "pkg", pkg, "pkginfo", p.Path)
				continue
			}
			size, err := fileops.Size(r.FS, pkg)
			if err != nil {
				w := &repo.OrphanReferenceWarning{Path: pkg, Referrer: p.Path}
				plan.Warnings = append(plan.Warnings, w)
				logging.Warn(w.Error())
				continue
			}
			planned[pkg] = struct{}{}
			item.Pkgs = append(item.Pkgs, pkg)
			item.Bytes += size
		}
		plan.Items = append(plan.Items, item)
	}
	plan.Shared = dedupe(plan.Shared)

	remaining := kept.Names()
	removed := make(map[string]struct{})
	for _, p := range selected {
		if remaining[p.Name] == 0 {
			removed[p.Name] = struct{}{}
		}
	}
	plan.RemovedNames = sortedSet(removed)

	refs, err := manifest.FindReferences(r, removed)
	if err != nil {
		return nil, err
	}
	plan.ManifestRefs = refs

	allIcons, err := icons.List(r)
	if err != nil {
		return nil, err
	}
	selectedRefs := icons.NewReferences(selected)
	for _, icon := range icons.Orphaned(allIcons, kept) {
		if selectedRefs.Uses(icon) {
			plan.Icons = append(plan.Icons, icon)
		}
	}

	logging.Debug("Deprecation plan", "summary", plan.Summary().String())
	return plan, nil
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func dedupe(items []string) []string {
	return sortedSet(toSet(items))
}
