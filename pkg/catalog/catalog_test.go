package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/spruce/internal/repotest"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/repo"
)

func TestParseSource(t *testing.T) {
	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceAll, src)

	src, err = ParseSource("pkgsinfo")
	require.NoError(t, err)
	assert.Equal(t, SourcePkgsinfo, src)

	_, err = ParseSource("manifests")
	assert.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	f := repotest.New(t)
	f.AllCatalog(
		plist.Dict{"name": "Firefox", "version": "1.0", "category": "Browsers"},
		plist.Dict{"name": "Firefox", "version": "2.0", "category": "Browsers"},
		plist.Dict{"name": "Slack", "version": "4.0"},
	)

	c, err := LoadAll(f.Repo)
	require.NoError(t, err)
	require.Len(t, c, 3)
	assert.Equal(t, map[string]int{"Firefox": 2, "Slack": 1}, c.Names())
	assert.Empty(t, c[0].Path)
	assert.Equal(t, "Uncategorized", c[2].DisplayCategory())
}

func TestLoadAllMissing(t *testing.T) {
	f := repotest.New(t)
	_, err := Load(f.Repo, SourceAll)

	var structErr *repo.StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, "catalogs/all", structErr.Path)
}

func TestLoadAllMalformed(t *testing.T) {
	f := repotest.New(t)
	f.File("catalogs/all", "this is not a plist <")
	_, err := LoadAll(f.Repo)
	var structErr *repo.StructureError
	assert.True(t, errors.As(err, &structErr))

	f.AllCatalog(plist.Dict{"version": "1.0"})
	_, err = LoadAll(f.Repo)
	assert.True(t, errors.As(err, &structErr))
}

func TestScan(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "2.0", "Browsers")
	f.Product("Chrome", "1.0", "")
	f.PkgInfo("apps/Slack-4.0.plist", plist.Dict{"name": "Slack"})
	f.File("pkgsinfo/.DS_Store", "junk")
	f.File("pkgsinfo/.svn/entries", "junk")

	c, err := Load(f.Repo, SourcePkgsinfo)
	require.NoError(t, err)
	paths := make([]string, 0, len(c))
	for _, p := range c {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{
		"pkgsinfo/Chrome-1.0.plist",
		"pkgsinfo/Firefox-2.0.plist",
		"pkgsinfo/apps/Slack-4.0.plist",
	}, paths)
	assert.Empty(t, c[2].Version)
}

func TestScanAbortsOnBadRecord(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "2.0", "Browsers")
	f.PkgInfo("broken.plist", plist.Dict{"version": "1.0"})

	_, err := Scan(f.Repo)
	var structErr *repo.StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, "pkgsinfo/broken.plist", structErr.Path)
}

func TestScanMissingDir(t *testing.T) {
	f := repotest.New(t)
	require.NoError(t, f.FS().Remove("pkgsinfo"))
	_, err := Scan(f.Repo)
	var structErr *repo.StructureError
	assert.True(t, errors.As(err, &structErr))
}

func TestBuild(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "2.0", "Browsers")
	f.PkgInfo("Chrome-1.0.plist", plist.Dict{
		"name":     "Chrome",
		"catalogs": []interface{}{"testing", "production"},
	})
	c, err := Scan(f.Repo)
	require.NoError(t, err)

	built := Build(c)
	assert.Len(t, built["all"], 2)
	assert.Len(t, built["testing"], 2)
	require.Len(t, built["production"], 1)
	assert.Equal(t, "Chrome", built["production"][0].Name)
}

func TestRebuildPrunesStaleCatalogs(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "2.0", "Browsers")
	f.AllCatalog(plist.Dict{"name": "Retired"})
	f.File("catalogs/legacy", "stale")

	c, err := Rebuild(f.Repo)
	require.NoError(t, err)
	assert.Len(t, c, 1)
	assert.False(t, f.Exists("catalogs/legacy"))
	assert.True(t, f.Exists("catalogs/testing"))

	all, err := LoadAll(f.Repo)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Firefox", all[0].Name)
	assert.Equal(t, "Browsers", all[0].Dict()["category"])
}
