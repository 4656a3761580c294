package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/spruce/pkg/plist"
)

// isolate points every config location at a fresh temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("SPRUCE_REPO_PATH", "")
	old := munkiimportPrefs
	munkiimportPrefs = filepath.Join(dir, "munkiimport.plist")
	t.Cleanup(func() { munkiimportPrefs = old })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.ErrorIs(t, cfg.Validate(), ErrNoRepo)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "spruce", "config.yaml")

	want := GetDefaultConfig()
	want.RepoPath = "/Volumes/munki_repo"
	want.ArchivePath = "/Volumes/archive"
	want.RetryInterval = 2 * time.Second
	require.NoError(t, SaveConfig(want, path))

	got, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, got.Validate())
}

func TestPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	file := GetDefaultConfig()
	file.RepoPath = "/from/file"
	file.LogLevel = "WARN"
	require.NoError(t, SaveConfig(file, path))

	t.Setenv("SPRUCE_REPO_PATH", "/from/env")
	t.Setenv("SPRUCE_LOG_LEVEL", "DEBUG")

	flags := pflag.NewFlagSet("spruce", pflag.ContinueOnError)
	flags.String("repo", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--repo", "/from/flag"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.RepoPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestMunkiimportFallback(t *testing.T) {
	dir := isolate(t)
	fs := osfs.New(dir)
	require.NoError(t, plist.WriteFile(fs, filepath.Base(munkiimportPrefs), plist.Dict{
		"repo_path": "/Users/Shared/munki_repo",
		"repo_url":  "file:///Users/Shared/munki_repo",
	}))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/Users/Shared/munki_repo", cfg.RepoPath)
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.RepoPath = "/repo"
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.LogLevel = "LOUD"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.CatalogSource = "manifests"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.MaxRetries = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.ArchivePath = "/repo/"
	assert.Error(t, bad.Validate())
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/admin")
	assert.Equal(t, "/home/admin/repo", ExpandPath("~/repo"))
	assert.Equal(t, "/srv/repo", ExpandPath("/srv/repo"))
	assert.Equal(t, "", ExpandPath(""))
}
