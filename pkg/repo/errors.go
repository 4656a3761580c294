// pkg/repo/errors.go - error types shared by the repository engines.

package repo

import "fmt"

// StructureError means the repo layout or a record in it is missing or
// malformed. Operations fail with it before touching disk.
type StructureError struct {
	Path string
	Err  error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("repository structure: %s: %v", e.Path, e.Err)
}

func (e *StructureError) Unwrap() error { return e.Err }

// FileOperationError is a failed delete, move or write of a single file.
// Batch operations collect these and keep going.
type FileOperationError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }

// OrphanReferenceWarning records a file that a pkginfo points at but that is
// already gone from disk.
type OrphanReferenceWarning struct {
	Path     string
	Referrer string
}

func (w *OrphanReferenceWarning) Error() string {
	if w.Referrer == "" {
		return fmt.Sprintf("%s is already missing", w.Path)
	}
	return fmt.Sprintf("%s referenced by %s is already missing", w.Path, w.Referrer)
}
