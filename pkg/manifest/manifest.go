// pkg/manifest/manifest.go - loading and editing the client manifests of a repo.

package manifest

import (
	"sort"

	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Sections are the manifest keys that reference products by name.
var Sections = []string{
	"managed_installs",
	"managed_uninstalls",
	"managed_updates",
	"optional_installs",
	"featured_items",
	"default_installs",
}

// conditionalItems holds nested manifest dictionaries guarded by a predicate.
const conditionalItems = "conditional_items"

// Manifest is a manifest file and its decoded content.
type Manifest struct {
	Path string
	raw  plist.Dict
}

// List returns the repo paths of every manifest. A repo without a
// manifests directory has none.
func List(r *repo.Repo) ([]string, error) {
	if !r.Exists(repo.ManifestsDir) {
		return nil, nil
	}
	return r.Files(repo.ManifestsDir)
}

// Load reads the manifest at rel.
func Load(r *repo.Repo, rel string) (*Manifest, error) {
	d, err := plist.ReadDict(r.FS, rel)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: rel, raw: d}, nil
}

// Save writes the manifest back to its path.
func (m *Manifest) Save(r *repo.Repo) error {
	return plist.WriteFile(r.FS, m.Path, m.raw)
}

// References returns every product name the manifest references, including
// those inside conditional items, sorted and without duplicates.
func (m *Manifest) References() []string {
	seen := make(map[string]struct{})
	collect(m.raw, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collect(d plist.Dict, seen map[string]struct{}) {
	for _, section := range Sections {
		for _, name := range plist.Strings(d, section) {
			seen[name] = struct{}{}
		}
	}
	for _, nested := range conditionals(d) {
		collect(nested, seen)
	}
}

// Remove drops every occurrence of the given names from all sections and
// returns how many entries were removed.
func (m *Manifest) Remove(names map[string]struct{}) int {
	return removeNames(m.raw, names)
}

func removeNames(d plist.Dict, names map[string]struct{}) int {
	removed := 0
	for _, section := range Sections {
		items, ok := d[section].([]interface{})
		if !ok {
			continue
		}
		kept := make([]interface{}, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				if _, drop := names[s]; drop {
					removed++
					continue
				}
			}
			kept = append(kept, item)
		}
		if len(kept) != len(items) {
			d[section] = kept
		}
	}
	for _, nested := range conditionals(d) {
		removed += removeNames(nested, names)
	}
	return removed
}

func conditionals(d plist.Dict) []plist.Dict {
	items, ok := d[conditionalItems].([]interface{})
	if !ok {
		return nil
	}
	out := make([]plist.Dict, 0, len(items))
	for _, item := range items {
		if nested, ok := item.(map[string]interface{}); ok {
			out = append(out, nested)
		}
	}
	return out
}

// FindReferences maps each manifest path to the given names it references.
// Manifests that cannot be parsed are logged and skipped.
func FindReferences(r *repo.Repo, names map[string]struct{}) (map[string][]string, error) {
	paths, err := List(r)
	if err != nil {
		return nil, err
	}
	refs := make(map[string][]string)
	for _, path := range paths {
		m, err := Load(r, path)
		if err != nil {
			logging.Warn("Skipping unreadable manifest", "path", path, "error", err)
			continue
		}
		for _, name := range m.References() {
			if _, ok := names[name]; ok {
				refs[path] = append(refs[path], name)
			}
		}
	}
	return refs, nil
}

// StripResult reports a StripNames run.
type StripResult struct {
	Updated  map[string]int // manifest path to entries removed
	Failures []*repo.FileOperationError
}

// StripNames removes the given names from every manifest in the repo.
// Manifests are rewritten only when they change; a manifest that fails to
// load or save is recorded and the rest are still processed.
func StripNames(r *repo.Repo, names map[string]struct{}) (*StripResult, error) {
	res := &StripResult{Updated: make(map[string]int)}
	if len(names) == 0 {
		return res, nil
	}
	paths, err := List(r)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		m, err := Load(r, path)
		if err != nil {
			res.Failures = append(res.Failures, &repo.FileOperationError{Op: "read manifest", Path: path, Err: err})
			continue
		}
		n := m.Remove(names)
		if n == 0 {
			continue
		}
		if err := m.Save(r); err != nil {
			res.Failures = append(res.Failures, &repo.FileOperationError{Op: "write manifest", Path: path, Err: err})
			continue
		}
		res.Updated[path] = n
		logging.Info("Removed names from manifest", "path", path, "entries", n)
	}
	return res, nil
}
