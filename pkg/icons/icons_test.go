package icons

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/windowsadmins/spruce/internal/repotest"
	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/retry"
)

func scan(t *testing.T, f *repotest.Fixture) catalog.Catalog {
	t.Helper()
	c, err := catalog.Scan(f.Repo)
	require.NoError(t, err)
	return c
}

func TestFindOrphansEmptyWhenEveryIconMatches(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "1.0", "Browsers")
	f.Product("Chrome", "1.0", "Browsers")
	f.Icon("Firefox.png")
	f.Icon("Chrome.png")
	f.Icon("_icon_hashes.plist")

	orphans, err := FindOrphans(f.Repo, scan(t, f))
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestFindOrphansReturnsExactlyUnmatched(t *testing.T) {
	f := repotest.New(t)
	f.Product("Firefox", "1.0", "Browsers")
	f.Icon("Firefox.png")
	f.Icon("OldTool.png")
	f.Icon("legacy/Retired.jpg")

	orphans, err := FindOrphans(f.Repo, scan(t, f))
	require.NoError(t, err)
	assert.Equal(t, []string{"icons/OldTool.png", "icons/legacy/Retired.jpg"}, orphans)
}

func TestFindOrphansHonorsIconName(t *testing.T) {
	f := repotest.New(t)
	f.PkgInfo("Office.plist", plist.Dict{"name": "Office", "version": "16", "icon_name": "suites/MicrosoftOffice.png"})
	f.PkgInfo("Viewer.plist", plist.Dict{"name": "Viewer", "version": "1", "icon_name": "ViewerIcon"})
	f.Icon("suites/MicrosoftOffice.png")
	f.Icon("ViewerIcon.png")
	f.Icon("suites/Other.png")

	orphans, err := FindOrphans(f.Repo, scan(t, f))
	require.NoError(t, err)
	assert.Equal(t, []string{"icons/suites/Other.png"}, orphans)
}

func TestCheckMode(t *testing.T) {
	assert.NoError(t, CheckMode(false, ""))
	assert.NoError(t, CheckMode(true, ""))
	assert.NoError(t, CheckMode(false, "/archive"))
	assert.ErrorIs(t, CheckMode(true, "/archive"), ErrConflictingModes)
}

func TestResolveArchive(t *testing.T) {
	f := repotest.New(t)
	f.Icon("OldTool.png")
	archive := memfs.New()

	res := Resolve(fileops.NewDisposer(f.FS(), archive, retry.Once), []string{"icons/OldTool.png", "icons/Gone.png"})
	assert.False(t, res.Failed())
	assert.Equal(t, []string{"icons/OldTool.png"}, res.Archived)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "icons/Gone.png", res.Warnings[0].Path)

	assert.False(t, f.Exists("icons/OldTool.png"))
	_, err := archive.Stat("icons/OldTool.png")
	assert.NoError(t, err)
}

func TestResolveDelete(t *testing.T) {
	f := repotest.New(t)
	f.Icon("OldTool.png")

	res := Resolve(fileops.NewDisposer(f.FS(), nil, retry.Once), []string{"icons/OldTool.png"})
	assert.Equal(t, []string{"icons/OldTool.png"}, res.Removed)
	assert.False(t, f.Exists("icons/OldTool.png"))
}

func TestInspect(t *testing.T) {
	fs := memfs.New()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	f, err := fs.Create("icons/a.png")
	require.NoError(t, err)
	_, err = f.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, img))
	f, err = fs.Create("icons/b.bmp")
	require.NoError(t, err)
	_, err = f.Write(bmpBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = fs.Create("icons/c.icns")
	require.NoError(t, err)
	_, err = f.Write([]byte("icns...."))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	info, err := Inspect(fs, "icons/a.png")
	require.NoError(t, err)
	assert.Equal(t, Info{Path: "icons/a.png", Bytes: int64(pngBuf.Len()), Format: "png", Width: 32, Height: 16}, info)

	info, err = Inspect(fs, "icons/b.bmp")
	require.NoError(t, err)
	assert.Equal(t, "bmp", info.Format)

	info, err = Inspect(fs, "icons/c.icns")
	require.NoError(t, err)
	assert.Empty(t, info.Format)
	assert.Equal(t, int64(8), info.Bytes)
}
