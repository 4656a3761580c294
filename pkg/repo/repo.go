// pkg/repo/repo.go - handle on a Munki repository root.

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Top-level directories of a Munki repo.
const (
	PkgsinfoDir  = "pkgsinfo"
	PkgsDir      = "pkgs"
	CatalogsDir  = "catalogs"
	ManifestsDir = "manifests"
	IconsDir     = "icons"
)

// AllCatalog is the catalog every pkginfo belongs to.
const AllCatalog = "all"

// Repo is an explicit repository root. All paths handed to and returned by
// the engines are relative to it.
type Repo struct {
	FS   billy.Filesystem
	Root string
}

// New wraps an existing filesystem. Root is informational.
func New(fs billy.Filesystem, root string) *Repo {
	return &Repo{FS: fs, Root: root}
}

// Open returns a Repo backed by the OS filesystem at root.
func Open(root string) (*Repo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path %s: %w", root, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, &StructureError{Path: abs, Err: err}
	}
	if !st.IsDir() {
		return nil, &StructureError{Path: abs, Err: fmt.Errorf("not a directory")}
	}
	return New(osfs.New(abs), abs), nil
}

// AbsPath maps a repo-relative path to a location on disk.
func (r *Repo) AbsPath(rel string) string {
	return filepath.Join(r.Root, rel)
}

// Overlaps reports whether the absolute path abs is the repo root or lies
// inside one of its top-level directories. Such a path cannot hold an
// archive: files moved there would be read back as live repo content.
func (r *Repo) Overlaps(abs string) bool {
	rel, err := filepath.Rel(filepath.Clean(r.Root), filepath.Clean(abs))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	if rel == "." {
		return true
	}
	top := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	switch top {
	case PkgsinfoDir, PkgsDir, CatalogsDir, ManifestsDir, IconsDir:
		return true
	}
	return false
}

// Exists reports whether rel is present.
func (r *Repo) Exists(rel string) bool {
	_, err := r.FS.Stat(rel)
	return err == nil
}

// Files lists regular files below dir in lexical order. Entries whose name
// starts with "." are skipped, as are hidden directories. A missing dir is
// reported as a StructureError.
func (r *Repo) Files(dir string) ([]string, error) {
	st, err := r.FS.Stat(dir)
	if err != nil {
		return nil, &StructureError{Path: dir, Err: err}
	}
	if !st.IsDir() {
		return nil, &StructureError{Path: dir, Err: fmt.Errorf("not a directory")}
	}

	var files []string
	err = util.Walk(r.FS, dir, func(path string, info os.FileInfo, werr error) error {
		if werr != nil {
			return werr
		}
		hidden := strings.HasPrefix(info.Name(), ".")
		if info.IsDir() {
			if hidden && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &StructureError{Path: dir, Err: err}
	}
	sort.Strings(files)
	return files, nil
}
