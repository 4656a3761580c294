package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/pkginfo"
	"github.com/windowsadmins/spruce/pkg/plist"
)

func item(t *testing.T, name, version, category string) pkginfo.PkgInfo {
	t.Helper()
	d := plist.Dict{"name": name, "version": version}
	if category != "" {
		d["category"] = category
	}
	p, err := pkginfo.FromDict(d, "")
	require.NoError(t, err)
	return p
}

func sample(t *testing.T) catalog.Catalog {
	return catalog.Catalog{
		item(t, "Firefox", "2.0", "Browsers"),
		item(t, "Chrome", "100.0", "Browsers"),
		item(t, "Firefox", "1.0", "Browsers"),
		item(t, "Cleaner", "3.1", "Utilities"),
		item(t, "Firefox", "1.0", "Browsers"),
		item(t, "Notes", "1.0", ""),
	}
}

func TestUniqueNames(t *testing.T) {
	names := UniqueNames(sample(t))
	assert.Len(t, names, 4)
	for _, n := range []string{"Firefox", "Chrome", "Cleaner", "Notes"} {
		assert.Contains(t, names, n)
	}
}

func TestNamesWithVersionsKeepsCatalogOrderAndDuplicates(t *testing.T) {
	c := sample(t)
	versions := NamesWithVersions(c)
	assert.Equal(t, []string{"2.0", "1.0", "1.0"}, versions["Firefox"])
	for name, count := range c.Names() {
		assert.Len(t, versions[name], count, name)
	}
}

func TestCategoryCountsAndIndex(t *testing.T) {
	c := sample(t)
	assert.Equal(t, map[string]int{"Browsers": 4, "Utilities": 1, "Uncategorized": 1}, CategoryCounts(c))

	idx := IndexCategories(c)
	assert.Len(t, idx.Uncategorized, 1)
	total := len(idx.Uncategorized)
	for _, members := range idx.Categories {
		total += len(members)
	}
	assert.Equal(t, len(c), total)
}

func TestCategoryMembersFiltered(t *testing.T) {
	members := CategoryMembers(sample(t), []string{"Utilities", "Missing"})
	assert.Len(t, members, 2)
	assert.Len(t, members["Utilities"], 1)
	assert.Empty(t, members["Missing"])

	assert.Len(t, CategoryMembers(sample(t), nil), 3)
}

func TestNamesReportOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Names(sample(t), false).Write(&buf))
	assert.Equal(t, "Chrome\nCleaner\nFirefox\nNotes\n", buf.String())

	buf.Reset()
	require.NoError(t, Names(sample(t), true).Write(&buf))
	assert.Equal(t, "Chrome\n\t100.0\nCleaner\n\t3.1\nFirefox\n\t2.0\n\t1.0\n\t1.0\nNotes\n\t1.0\n", buf.String())
}

func TestNamesReportVariant(t *testing.T) {
	switch r := Names(sample(t), true).(type) {
	case NamesWithVersionsReport:
		assert.Len(t, r, 4)
	default:
		t.Fatalf("unexpected report type %T", r)
	}
	_, ok := Names(sample(t), false).(NamesOnly)
	assert.True(t, ok)
}

func TestWriteCategoryCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategoryCounts(&buf, map[string]int{"Browsers": 4, "Utilities": 1}))
	assert.Equal(t, "Browsers   4\nUtilities  1\n", buf.String())
}

func TestWriteCategoryMembersOrdersVersionsSemantically(t *testing.T) {
	c := catalog.Catalog{
		item(t, "Firefox", "10.0", "Browsers"),
		item(t, "Firefox", "9.0", "Browsers"),
		item(t, "Chrome", "1.0", "Browsers"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCategoryMembers(&buf, CategoryMembers(c, []string{"Browsers"})))
	assert.Equal(t, "Browsers\n\tChrome 1.0\n\tFirefox 9.0\n\tFirefox 10.0\n", buf.String())
}

func TestSortByNameVersionMixed(t *testing.T) {
	items := []pkginfo.PkgInfo{
		{Name: "Firefox", Version: "beta"},
		{Name: "Firefox", Version: "10.0"},
		{Name: "Firefox", Version: "alpha"},
		{Name: "Firefox", Version: "2.0"},
		{Name: "Chrome", Version: "nightly"},
	}
	SortByNameVersion(items)

	var got []string
	for _, p := range items {
		got = append(got, p.Name+" "+p.Version)
	}
	assert.Equal(t, []string{"Chrome nightly", "Firefox 2.0", "Firefox 10.0", "Firefox alpha", "Firefox beta"}, got)
}
