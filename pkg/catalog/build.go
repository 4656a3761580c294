// pkg/catalog/build.go - rebuilding catalogs/ from the pkgsinfo tree.

package catalog

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Build organizes each record into "all" plus the catalogs it declares.
func Build(c Catalog) map[string]Catalog {
	result := map[string]Catalog{repo.AllCatalog: {}}
	for _, p := range c {
		result[repo.AllCatalog] = append(result[repo.AllCatalog], p)
		for _, name := range p.Catalogs {
			if name == repo.AllCatalog {
				continue
			}
			result[name] = append(result[name], p)
		}
	}
	return result
}

// Write writes each catalog to catalogs/<name> and removes catalog files
// that are not in the new set.
func Write(r *repo.Repo, catalogs map[string]Catalog) error {
	if err := r.FS.MkdirAll(repo.CatalogsDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", repo.CatalogsDir, err)
	}

	entries, err := r.FS.ReadDir(repo.CatalogsDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", repo.CatalogsDir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, keep := catalogs[e.Name()]; keep {
			continue
		}
		stale := filepath.Join(repo.CatalogsDir, e.Name())
		if err := r.FS.Remove(stale); err != nil {
			return fmt.Errorf("remove stale catalog %s: %w", stale, err)
		}
		logging.Info("Removed stale catalog", "path", stale)
	}

	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(repo.CatalogsDir, name)
		items := catalogs[name].Dicts()
		if err := plist.WriteFile(r.FS, path, items); err != nil {
			return fmt.Errorf("write catalog %s: %w", path, err)
		}
		logging.Debug("Wrote catalog", "name", name, "items", len(items))
	}
	return nil
}

// Rebuild scans pkgsinfo/ and rewrites every catalog from it.
func Rebuild(r *repo.Repo) (Catalog, error) {
	c, err := Scan(r)
	if err != nil {
		return nil, err
	}
	if err := Write(r, Build(c)); err != nil {
		return nil, err
	}
	logging.Info("Rebuilt catalogs", "items", len(c))
	return c, nil
}
