// pkg/icons/icons.go - finding and resolving icons no pkginfo uses.

package icons

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// ErrConflictingModes is returned when both delete and archive are requested.
var ErrConflictingModes = errors.New("delete and archive are mutually exclusive")

// CheckMode validates the requested resolution. Neither mode means report
// only.
func CheckMode(del bool, archive string) error {
	if del && archive != "" {
		return ErrConflictingModes
	}
	return nil
}

// List returns every icon file in the repo. Munki's _icon_hashes.plist and
// other "_" or "." prefixed files are not icons. A repo without an icons
// directory has none.
func List(r *repo.Repo) ([]string, error) {
	if !r.Exists(repo.IconsDir) {
		return nil, nil
	}
	files, err := r.Files(repo.IconsDir)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), "_") {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Key is the product name an icon path implies: its file name without the
// extension.
func Key(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// References holds what a set of pkginfos points at in icons/.
type References struct {
	names map[string]struct{}
	paths map[string]struct{} // icon_name values, relative to icons/, with and without extension
}

// NewReferences collects the icon references of items.
func NewReferences(items []pkginfo.PkgInfo) *References {
	refs := &References{names: make(map[string]struct{}), paths: make(map[string]struct{})}
	for _, p := range items {
		refs.names[p.Name] = struct{}{}
		if p.IconName != "" {
			rel := filepath.Clean(filepath.FromSlash(p.IconName))
			refs.paths[rel] = struct{}{}
			refs.paths[strings.TrimSuffix(rel, filepath.Ext(rel))] = struct{}{}
		}
	}
	return refs
}

// Uses reports whether the icon at repo path iconPath is referenced, either
// by the name convention or by an explicit icon_name.
func (refs *References) Uses(iconPath string) bool {
	if _, ok := refs.names[Key(iconPath)]; ok {
		return true
	}
	rel, err := filepath.Rel(repo.IconsDir, iconPath)
	if err != nil {
		return false
	}
	if _, ok := refs.paths[rel]; ok {
		return true
	}
	_, ok := refs.paths[strings.TrimSuffix(rel, filepath.Ext(rel))]
	return ok
}

// Orphaned returns the icons in paths that no record of c references.
func Orphaned(paths []string, c catalog.Catalog) []string {
	refs := NewReferences(c)
	var out []string
	for _, p := range paths {
		if !refs.Uses(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// FindOrphans lists the icons of r that no record of c references. Pass the
// current, post-deprecation catalog.
func FindOrphans(r *repo.Repo, c catalog.Catalog) ([]string, error) {
	all, err := List(r)
	if err != nil {
		return nil, err
	}
	return Orphaned(all, c), nil
}

// Result reports a Resolve run.
type Result struct {
	Removed  []string
	Archived []string
	Warnings []*repo.OrphanReferenceWarning
	Failures []*repo.FileOperationError
}

// Failed reports whether any icon could not be resolved.
func (r *Result) Failed() bool { return len(r.Failures) > 0 }

// Resolve deletes or archives each orphan. Failures are recorded and the
// remaining icons are still processed.
func Resolve(d *fileops.Disposer, orphans []string) *Result {
	res := &Result{}
	for _, path := range orphans {
		out, err := d.Dispose(path)
		var opErr *repo.FileOperationError
		switch {
		case errors.As(err, &opErr):
			res.Failures = append(res.Failures, opErr)
			logging.Error("Failed to resolve icon", "path", path, "error", opErr.Err)
		case err != nil:
			res.Failures = append(res.Failures, &repo.FileOperationError{Op: "resolve", Path: path, Err: err})
		case out == fileops.Missing:
			w := &repo.OrphanReferenceWarning{Path: path}
			res.Warnings = append(res.Warnings, w)
			logging.Warn(w.Error())
		case out == fileops.Archived:
			res.Archived = append(res.Archived, path)
			logging.Info("Archived icon", "path", path)
		default:
			res.Removed = append(res.Removed, path)
			logging.Info("Removed icon", "path", path)
		}
	}
	return res
}
