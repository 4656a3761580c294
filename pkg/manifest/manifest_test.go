package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/spruce/internal/repotest"
	"github.com/windowsadmins/spruce/pkg/plist"
)

func set(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestReferencesIncludesConditionalItems(t *testing.T) {
	f := repotest.New(t)
	path := f.Manifest("site_default", plist.Dict{
		"managed_installs":  []interface{}{"Firefox", "Chrome"},
		"optional_installs": []interface{}{"Cleaner", "Firefox"},
		"conditional_items": []interface{}{
			plist.Dict{
				"condition":        "machine_type == \"laptop\"",
				"managed_installs": []interface{}{"VPN"},
			},
		},
	})

	m, err := Load(f.Repo, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chrome", "Cleaner", "Firefox", "VPN"}, m.References())
}

func TestStripNames(t *testing.T) {
	f := repotest.New(t)
	site := f.Manifest("site_default", plist.Dict{
		"catalogs":         []interface{}{"production"},
		"managed_installs": []interface{}{"Firefox", "Chrome", "Firefox"},
		"conditional_items": []interface{}{
			plist.Dict{"condition": "x", "managed_updates": []interface{}{"Firefox", "VPN"}},
		},
	})
	lab := f.Manifest("groups/lab", plist.Dict{
		"managed_installs": []interface{}{"Chrome"},
	})

	res, err := StripNames(f.Repo, set("Firefox"))
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, map[string]int{site: 3}, res.Updated)

	d := f.ReadDict(site)
	assert.Equal(t, []string{"Chrome"}, plist.Strings(d, "managed_installs"))
	assert.Equal(t, []string{"production"}, plist.Strings(d, "catalogs"))
	nested := d["conditional_items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []string{"VPN"}, plist.Strings(nested, "managed_updates"))

	assert.Equal(t, []string{"Chrome"}, plist.Strings(f.ReadDict(lab), "managed_installs"))
}

func TestStripNamesRecordsUnreadableManifest(t *testing.T) {
	f := repotest.New(t)
	f.File("manifests/broken", "not a plist <")
	good := f.Manifest("good", plist.Dict{"managed_installs": []interface{}{"Firefox"}})

	res, err := StripNames(f.Repo, set("Firefox"))
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "manifests/broken", res.Failures[0].Path)
	assert.Equal(t, 1, res.Updated[good])
}

func TestFindReferences(t *testing.T) {
	f := repotest.New(t)
	a := f.Manifest("a", plist.Dict{"managed_installs": []interface{}{"Firefox", "Chrome"}})
	f.Manifest("b", plist.Dict{"managed_installs": []interface{}{"Chrome"}})

	refs, err := FindReferences(f.Repo, set("Firefox"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{a: {"Firefox"}}, refs)
}
