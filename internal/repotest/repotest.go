// internal/repotest/repotest.go - throwaway Munki repos in memory for tests.

package repotest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Fixture is an in-memory repo under construction.
type Fixture struct {
	t    testing.TB
	Repo *repo.Repo
}

// New returns an empty repo with the standard top-level directories.
func New(t testing.TB) *Fixture {
	t.Helper()
	fs := memfs.New()
	for _, dir := range []string{repo.PkgsinfoDir, repo.PkgsDir, repo.CatalogsDir, repo.ManifestsDir, repo.IconsDir} {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}
	return &Fixture{t: t, Repo: repo.New(fs, "/repo")}
}

// FS is the fixture filesystem.
func (f *Fixture) FS() billy.Filesystem { return f.Repo.FS }

// PkgInfo writes a pkginfo below pkgsinfo/ and returns its repo path.
func (f *Fixture) PkgInfo(rel string, d plist.Dict) string {
	f.t.Helper()
	path := filepath.Join(repo.PkgsinfoDir, rel)
	require.NoError(f.t, plist.WriteFile(f.FS(), path, d))
	return path
}

// Product writes a pkginfo for name/version/category with an installer item
// at pkgs/<name>-<version>.dmg, and the installer item itself.
func (f *Fixture) Product(name, version, category string) string {
	f.t.Helper()
	loc := name + "-" + version + ".dmg"
	d := plist.Dict{
		"name":                    name,
		"version":                 version,
		"catalogs":                []interface{}{"testing"},
		"installer_item_location": loc,
	}
	if category != "" {
		d["category"] = category
	}
	f.File(filepath.Join(repo.PkgsDir, loc), name+" payload")
	return f.PkgInfo(name+"-"+version+".plist", d)
}

// File writes an arbitrary file.
func (f *Fixture) File(rel, content string) {
	f.t.Helper()
	require.NoError(f.t, f.FS().MkdirAll(filepath.Dir(rel), 0o755))
	require.NoError(f.t, util.WriteFile(f.FS(), rel, []byte(content), 0o644))
}

// Manifest writes a manifest under manifests/.
func (f *Fixture) Manifest(rel string, d plist.Dict) string {
	f.t.Helper()
	path := filepath.Join(repo.ManifestsDir, rel)
	require.NoError(f.t, plist.WriteFile(f.FS(), path, d))
	return path
}

// Icon writes a placeholder icon under icons/.
func (f *Fixture) Icon(rel string) string {
	f.t.Helper()
	path := filepath.Join(repo.IconsDir, rel)
	f.File(path, "icon")
	return path
}

// AllCatalog writes catalogs/all from the given dictionaries.
func (f *Fixture) AllCatalog(items ...plist.Dict) {
	f.t.Helper()
	arr := make([]interface{}, 0, len(items))
	for _, d := range items {
		arr = append(arr, d)
	}
	require.NoError(f.t, plist.WriteFile(f.FS(), filepath.Join(repo.CatalogsDir, repo.AllCatalog), arr))
}

// ReadDict reads back a plist dictionary.
func (f *Fixture) ReadDict(rel string) plist.Dict {
	f.t.Helper()
	d, err := plist.ReadDict(f.FS(), rel)
	require.NoError(f.t, err)
	return d
}

// Exists reports whether rel is present.
func (f *Fixture) Exists(rel string) bool {
	_, err := f.FS().Stat(rel)
	return err == nil
}

// ListFiles returns every regular file in fs, sorted.
func ListFiles(t testing.TB, fs billy.Filesystem) []string {
	t.Helper()
	var files []string
	err := util.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(path))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}
