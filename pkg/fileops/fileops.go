// pkg/fileops/fileops.go - delete-or-archive disposal of repo files.

package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/repo"
	"github.com/windowsadmins/spruce/pkg/retry"
)

// Outcome is what happened to a disposed path.
type Outcome int

const (
	Removed Outcome = iota
	Archived
	Missing
)

func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case Archived:
		return "archived"
	case Missing:
		return "missing"
	}
	return "unknown"
}

// Disposer removes files from a source repo, either deleting them or moving
// them to the same relative path under an archive repo.
type Disposer struct {
	Source  billy.Filesystem
	Archive billy.Filesystem // nil deletes
	Retry   retry.Config
}

// NewDisposer returns a Disposer. Pass a nil archive to delete.
func NewDisposer(source, archive billy.Filesystem, rc retry.Config) *Disposer {
	return &Disposer{Source: source, Archive: archive, Retry: rc}
}

// Archiving reports whether disposal moves files instead of deleting them.
func (d *Disposer) Archiving() bool {
	return d.Archive != nil
}

// Dispose deletes or archives rel, which may be a file or a bundle
// directory. A path that does not exist yields Missing and no error. Any
// failure is a *repo.FileOperationError.
func (d *Disposer) Dispose(rel string) (Outcome, error) {
	info, err := d.Source.Lstat(rel)
	if errors.Is(err, os.ErrNotExist) {
		return Missing, nil
	}
	if err != nil {
		return Missing, &repo.FileOperationError{Op: "stat", Path: rel, Err: err}
	}

	if !d.Archiving() {
		if err := d.retry(func() error { return remove(d.Source, rel, info.IsDir()) }); err != nil {
			return Removed, &repo.FileOperationError{Op: "delete", Path: rel, Err: err}
		}
		logging.Debug("Deleted", "path", rel)
		return Removed, nil
	}

	if err := d.archive(rel, info); err != nil {
		return Archived, &repo.FileOperationError{Op: "archive", Path: rel, Err: err}
	}
	logging.Debug("Archived", "path", rel)
	return Archived, nil
}

// retry runs action under the disposer's retry policy. A path that no
// longer exists will not come back, so that error ends the attempts.
func (d *Disposer) retry(action func() error) error {
	return retry.Retry(d.Retry, func() error {
		err := action()
		if errors.Is(err, os.ErrNotExist) {
			return retry.Permanent(err)
		}
		return err
	})
}

// archive copies rel into the archive and then removes the source. The
// archive copy is never overwritten.
func (d *Disposer) archive(rel string, info os.FileInfo) error {
	if _, err := d.Archive.Lstat(rel); err == nil {
		return fmt.Errorf("destination already exists in archive")
	}

	if info.IsDir() {
		err := util.Walk(d.Source, rel, func(path string, fi os.FileInfo, werr error) error {
			if werr != nil {
				return werr
			}
			if fi.IsDir() {
				return d.Archive.MkdirAll(path, 0o755)
			}
			return d.retry(func() error { return copyFile(d.Source, d.Archive, path, fi.Mode().Perm()) })
		})
		if err != nil {
			return err
		}
	} else if err := d.retry(func() error { return copyFile(d.Source, d.Archive, rel, info.Mode().Perm()) }); err != nil {
		return err
	}

	return d.retry(func() error { return remove(d.Source, rel, info.IsDir()) })
}

func remove(fs billy.Filesystem, rel string, dir bool) error {
	if dir {
		return util.RemoveAll(fs, rel)
	}
	return fs.Remove(rel)
}

// copyFile copies rel from src to dst, creating parent directories. A failed
// copy leaves nothing behind in dst.
func copyFile(src, dst billy.Filesystem, rel string, perm os.FileMode) (err error) {
	if perm == 0 {
		perm = 0o644
	}
	in, err := src.Open(rel)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(rel); dir != "." {
		if err := dst.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := dst.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = dst.Remove(rel)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Size returns the byte size of rel, summed over files for a directory.
func Size(fs billy.Filesystem, rel string) (int64, error) {
	info, err := fs.Lstat(rel)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = util.Walk(fs, rel, func(_ string, fi os.FileInfo, werr error) error {
		if werr != nil {
			return werr
		}
		if !fi.IsDir() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
