package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	fs := memfs.New()
	for _, rel := range []string{
		"manifests/site_default",
		"manifests/labs/lab_b",
		"manifests/labs/lab_a",
		"manifests/.DS_Store",
		"manifests/.git/HEAD",
	} {
		require.NoError(t, util.WriteFile(fs, rel, []byte("x"), 0o644))
	}
	r := New(fs, "/repo")

	files, err := r.Files(ManifestsDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"manifests/labs/lab_a",
		"manifests/labs/lab_b",
		"manifests/site_default",
	}, files)
	assert.True(t, r.Exists("manifests/site_default"))
	assert.Equal(t, filepath.Join("/repo", "pkgs", "a.dmg"), r.AbsPath("pkgs/a.dmg"))
}

func TestFilesMissingDir(t *testing.T) {
	r := New(memfs.New(), "/repo")
	_, err := r.Files(PkgsinfoDir)
	var structErr *StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, PkgsinfoDir, structErr.Path)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.Root)

	_, err = Open(filepath.Join(dir, "missing"))
	var structErr *StructureError
	require.True(t, errors.As(err, &structErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Open(file)
	assert.True(t, errors.As(err, &structErr))
}

func TestErrors(t *testing.T) {
	opErr := &FileOperationError{Op: "delete", Path: "pkgs/a.dmg", Err: os.ErrPermission}
	assert.Equal(t, "delete pkgs/a.dmg: permission denied", opErr.Error())
	assert.ErrorIs(t, opErr, os.ErrPermission)

	w := &OrphanReferenceWarning{Path: "pkgs/a.dmg", Referrer: "pkgsinfo/a.plist"}
	assert.Contains(t, w.Error(), "pkgs/a.dmg")
	assert.Contains(t, w.Error(), "pkgsinfo/a.plist")
}

func TestOverlaps(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "repo")
	r := New(memfs.New(), root)

	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "pkgsinfo"), true},
		{filepath.Join(root, "pkgsinfo", "archive"), true},
		{filepath.Join(root, "icons", "old"), true},
		{filepath.Join(root, "archive"), false},
		{filepath.Join(root, "pkgsinfo-archive"), false},
		{filepath.Join(filepath.Dir(root), "archive"), false},
		{filepath.Join(filepath.Dir(root), "repo-archive"), false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Overlaps(tt.path))
		})
	}
}
