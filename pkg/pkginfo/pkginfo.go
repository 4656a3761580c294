// pkg/pkginfo/pkginfo.go - typed view over a Munki pkginfo record.

package pkginfo

import (
	"fmt"
	"path/filepath"

	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Uncategorized stands for a pkginfo without a category.
const Uncategorized = "Uncategorized"

// Keys read from a pkginfo dictionary.
const (
	KeyName                    = "name"
	KeyVersion                 = "version"
	KeyCategory                = "category"
	KeyCatalogs                = "catalogs"
	KeyDisplayName             = "display_name"
	KeyIconName                = "icon_name"
	KeyInstallerItemLocation   = "installer_item_location"
	KeyUninstallerItemLocation = "uninstaller_item_location"
)

// PkgInfo describes one installable product version.
type PkgInfo struct {
	Name                    string
	Version                 string
	Category                string
	DisplayName             string
	Catalogs                []string
	IconName                string
	InstallerItemLocation   string
	UninstallerItemLocation string

	// Path is the repo-relative pkginfo file; empty for records that came
	// from catalogs/all.
	Path string

	raw plist.Dict
}

// FromDict builds a PkgInfo from a decoded pkginfo. Only the name is
// required; every other field may be absent.
func FromDict(d plist.Dict, path string) (PkgInfo, error) {
	name := plist.String(d, KeyName)
	if name == "" {
		return PkgInfo{}, fmt.Errorf("pkginfo has no %q key", KeyName)
	}
	return PkgInfo{
		Name:                    name,
		Version:                 plist.String(d, KeyVersion),
		Category:                NormalizeCategory(plist.String(d, KeyCategory)),
		DisplayName:             plist.String(d, KeyDisplayName),
		Catalogs:                plist.Strings(d, KeyCatalogs),
		IconName:                plist.String(d, KeyIconName),
		InstallerItemLocation:   plist.String(d, KeyInstallerItemLocation),
		UninstallerItemLocation: plist.String(d, KeyUninstallerItemLocation),
		Path:                    path,
		raw:                     d,
	}, nil
}

// NormalizeCategory folds the literal Uncategorized into the empty category.
func NormalizeCategory(c string) string {
	if c == Uncategorized {
		return ""
	}
	return c
}

// DisplayCategory is Category, or Uncategorized when there is none.
func (p PkgInfo) DisplayCategory() string {
	if p.Category == "" {
		return Uncategorized
	}
	return p.Category
}

// Dict returns the raw dictionary the record was decoded from.
func (p PkgInfo) Dict() plist.Dict {
	return p.raw
}

// Pkgs returns the repo-relative paths of the installer and uninstaller
// items, in that order, without duplicates.
func (p PkgInfo) Pkgs() []string {
	var out []string
	for _, loc := range []string{p.InstallerItemLocation, p.UninstallerItemLocation} {
		if loc == "" {
			continue
		}
		rel := filepath.Join(repo.PkgsDir, filepath.FromSlash(loc))
		if len(out) == 1 && out[0] == rel {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// String identifies the record in log output.
func (p PkgInfo) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "-" + p.Version
}

// Read loads and parses the pkginfo file at rel.
func Read(r *repo.Repo, rel string) (PkgInfo, error) {
	d, err := plist.ReadDict(r.FS, rel)
	if err != nil {
		return PkgInfo{}, err
	}
	p, err := FromDict(d, rel)
	if err != nil {
		return PkgInfo{}, fmt.Errorf("%s: %w", rel, err)
	}
	return p, nil
}

// SetCategory sets the category key on a raw pkginfo dictionary, removing
// it when category is empty or Uncategorized.
func SetCategory(d plist.Dict, category string) {
	category = NormalizeCategory(category)
	if category == "" {
		delete(d, KeyCategory)
		return
	}
	d[KeyCategory] = category
}
