// pkg/catalog/catalog.go - loading the catalog view of a Munki repo.

package catalog

import (
	"fmt"
	"path/filepath"

	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Catalog is an ordered sequence of pkginfo records.
type Catalog []pkginfo.PkgInfo

// Source selects where a catalog view is loaded from.
type Source string

const (
	// SourceAll reads catalogs/all.
	SourceAll Source = "all"
	// SourcePkgsinfo scans the pkgsinfo tree. Records carry their file path.
	SourcePkgsinfo Source = "pkgsinfo"
)

// ParseSource validates a configured catalog source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceAll, SourcePkgsinfo:
		return Source(s), nil
	case "":
		return SourceAll, nil
	}
	return "", fmt.Errorf("unknown catalog source %q (want %q or %q)", s, SourceAll, SourcePkgsinfo)
}

// Load returns the catalog from the given source.
func Load(r *repo.Repo, src Source) (Catalog, error) {
	switch src {
	case SourcePkgsinfo:
		return Scan(r)
	case SourceAll, "":
		return LoadAll(r)
	}
	return nil, fmt.Errorf("unknown catalog source %q", src)
}

// LoadAll reads catalogs/all.
func LoadAll(r *repo.Repo) (Catalog, error) {
	path := filepath.Join(repo.CatalogsDir, repo.AllCatalog)
	var items []plist.Dict
	if err := plist.ReadFile(r.FS, path, &items); err != nil {
		return nil, &repo.StructureError{Path: path, Err: err}
	}

	c := make(Catalog, 0, len(items))
	for i, d := range items {
		p, err := pkginfo.FromDict(d, "")
		if err != nil {
			return nil, &repo.StructureError{Path: path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		c = append(c, p)
	}
	logging.Debug("Loaded catalog", "path", path, "items", len(c))
	return c, nil
}

// Scan reads every pkginfo under pkgsinfo/. Any unreadable record aborts the
// scan: a partial view must never drive a mutation.
func Scan(r *repo.Repo) (Catalog, error) {
	files, err := r.Files(repo.PkgsinfoDir)
	if err != nil {
		return nil, err
	}

	c := make(Catalog, 0, len(files))
	for _, path := range files {
		p, err := pkginfo.Read(r, path)
		if err != nil {
			return nil, &repo.StructureError{Path: path, Err: err}
		}
		c = append(c, p)
	}
	logging.Debug("Scanned pkgsinfo", "dir", repo.PkgsinfoDir, "items", len(c))
	return c, nil
}

// Names returns the number of records per name.
func (c Catalog) Names() map[string]int {
	names := make(map[string]int)
	for _, p := range c {
		names[p.Name]++
	}
	return names
}

// Dicts returns the raw dictionaries in catalog order.
func (c Catalog) Dicts() []plist.Dict {
	out := make([]plist.Dict, 0, len(c))
	for _, p := range c {
		out = append(out, p.Dict())
	}
	return out
}
