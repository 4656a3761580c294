// pkg/deprecate/deprecate.go - removing or archiving deprecated products.

package deprecate

import (
	"errors"
	"sort"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/icons"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/manifest"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Result reports what Execute did.
type Result struct {
	Removed  []string
	Archived []string

	// Skipped pkgs are still referenced by a pkginfo that could not be
	// disposed of.
	Skipped []string

	Warnings []*repo.OrphanReferenceWarning
	Failures []*repo.FileOperationError

	// StrippedNames had no versions left and were removed from manifests.
	StrippedNames    []string
	ManifestsUpdated map[string]int
}

// Failed reports whether any file operation failed.
func (r *Result) Failed() bool { return len(r.Failures) > 0 }

// Succeeded lists every path that was removed or archived.
func (r *Result) Succeeded() []string {
	out := append(append([]string(nil), r.Removed...), r.Archived...)
	sort.Strings(out)
	return out
}

func (r *Result) record(path string, out fileops.Outcome, err error) bool {
	if err != nil {
		var opErr *repo.FileOperationError
		if !errors.As(err, &opErr) {
			opErr = &repo.FileOperationError{Op: "dispose", Path: path, Err: err}
		}
		r.Failures = append(r.Failures, opErr)
		logging.Error("File operation failed", "op", opErr.Op, "path", path, "error", opErr.Err)
		return false
	}
	switch out {
	case fileops.Missing:
		w := &repo.OrphanReferenceWarning{Path: path}
		r.Warnings = append(r.Warnings, w)
		logging.Warn(w.Error())
	case fileops.Archived:
		r.Archived = append(r.Archived, path)
		logging.Info("Archived", "path", path)
	default:
		r.Removed = append(r.Removed, path)
		logging.Info("Removed", "path", path)
	}
	return true
}

// Execute carries out plan with d, which deletes or archives.
//
// Every pkginfo goes first, then the pkgs; a pkg referenced by a pkginfo
// that could not be disposed of is left in place. The catalog is then re-scanned from
// disk, and every selected name with no version left is stripped from all
// manifests, along with icons nothing references any more. Per-file
// failures are collected in the result; an error is returned only when the
// repo can no longer be scanned, in which case manifests are not touched.
func Execute(r *repo.Repo, plan *Plan, d *fileops.Disposer) (*Result, error) {
	res := &Result{
		Warnings:         append([]*repo.OrphanReferenceWarning(nil), plan.Warnings...),
		ManifestsUpdated: make(map[string]int),
	}

	// A pkginfo that stays behind keeps every pkg it references, including
	// pkgs the plan assigned to a duplicate record.
	held := make(map[string]struct{})
	for _, item := range plan.Items {
		out, err := d.Dispose(item.PkgInfo.Path)
		if !res.record(item.PkgInfo.Path, out, err) {
			for _, pkg := range item.PkgInfo.Pkgs() {
				held[pkg] = struct{}{}
			}
		}
	}
	for _, item := range plan.Items {
		for _, pkg := range item.Pkgs {
			if _, ok := held[pkg]; ok {
				res.Skipped = append(res.Skipped, pkg)
				continue
			}
			out, err := d.Dispose(pkg)
			res.record(pkg, out, err)
		}
	}

	current, err := catalog.Scan(r)
	if err != nil {
		return res, err
	}
	remaining := current.Names()

	gone := make(map[string]struct{})
	for _, item := range plan.Items {
		if remaining[item.PkgInfo.Name] == 0 {
			gone[item.PkgInfo.Name] = struct{}{}
		}
	}
	res.StrippedNames = sortedSet(gone)

	stripped, err := manifest.StripNames(r, gone)
	if err != nil {
		return res, err
	}
	res.ManifestsUpdated = stripped.Updated
	res.Failures = append(res.Failures, stripped.Failures...)

	for _, icon := range icons.Orphaned(plan.Icons, current) {
		out, err := d.Dispose(icon)
		res.record(icon, out, err)
	}
	return res, nil
}
