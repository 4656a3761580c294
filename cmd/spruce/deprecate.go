// cmd/spruce/deprecate.go - remove or archive products by name or category.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/deprecate"
	"github.com/windowsadmins/spruce/pkg/exitcode"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/repo"
	"github.com/windowsadmins/spruce/pkg/report"
)

func (a *app) newDeprecateCommand() *cobra.Command {
	var (
		sel     deprecate.Selector
		archive string
		force   bool
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "deprecate (--name NAME... | --category CATEGORY...)",
		Short: "Remove or archive every version of products",
		Long: `Delete, or with --archive move, every pkginfo of the given products or
categories together with its installer items. Products with no version
left are removed from all manifests and their icons go with them.
Installer items still used by other pkginfos are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sel.Empty() {
				return deprecate.ErrNoSelection
			}
			if archive == "" {
				archive = a.cfg.ArchivePath
			}
			if err := a.openRepo(); err != nil {
				return err
			}
			c, err := catalog.Scan(a.repo)
			if err != nil {
				return err
			}
			plan, err := deprecate.NewPlan(a.repo, c, sel)
			if err != nil {
				return err
			}
			if plan.Empty() {
				fmt.Fprintln(a.out, "Nothing matches; no changes made")
				return nil
			}
			a.printPlan(plan)
			if dryRun {
				return nil
			}

			archiveFS, err := a.archiveFS(archive, plan.Summary().Bytes)
			if err != nil {
				return err
			}
			verb := "Delete"
			if archiveFS != nil {
				verb = "Archive to " + archive
			}
			if err := a.confirm(fmt.Sprintf("%s %s?", verb, plan.Summary()), force); err != nil {
				return err
			}

			d := fileops.NewDisposer(a.repo.FS, archiveFS, a.cfg.RetryConfig())
			res, err := deprecate.Execute(a.repo, plan, d)
			if res != nil {
				a.printDeprecation(res)
			}
			if err != nil {
				return err
			}
			if err := a.rebuildCatalogs(); err != nil {
				return err
			}
			return failed(len(res.Failures), "file operations")
		},
	}
	cmd.Flags().StringSliceVarP(&sel.Names, "name", "n", nil, "product name to deprecate (repeatable)")
	cmd.Flags().StringSliceVarP(&sel.Categories, "category", "c", nil, "category to deprecate (repeatable)")
	cmd.Flags().StringVarP(&archive, "archive", "a", "", "move files into this repo-shaped directory instead of deleting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be removed and stop")
	return cmd
}

// archiveFS opens the archive destination, or returns nil to delete. It
// warns when the destination looks too small for need bytes.
func (a *app) archiveFS(path string, need int64) (billy.Filesystem, error) {
	if path == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if a.repo.Overlaps(abs) {
		return nil, exitcode.WithCode(exitcode.ValidationError, fmt.Errorf("archive %s is inside the repo's own directories", abs))
	}
	if err := fileops.CheckFreeSpace(abs, uint64(need)); err != nil {
		if !errors.Is(err, fileops.ErrInsufficientSpace) {
			logging.Warn("Could not check free space", "path", abs, "error", err)
		} else {
			logging.Warn("Archive destination may not have enough room", "error", err)
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &repo.FileOperationError{Op: "create archive", Path: abs, Err: err}
	}
	return osfs.New(abs), nil
}

func (a *app) printPlan(plan *deprecate.Plan) {
	fmt.Fprintln(a.out, "Pkginfos and installer items:")
	for _, it := range plan.Items {
		fmt.Fprintf(a.out, "  %s (%s)\n", it.PkgInfo.Path, it.PkgInfo)
		for _, pkg := range it.Pkgs {
			fmt.Fprintf(a.out, "    %s\n", pkg)
		}
	}
	if len(plan.Shared) > 0 {
		fmt.Fprintln(a.out, "Kept, still used by other pkginfos:")
		for _, pkg := range plan.Shared {
			fmt.Fprintf(a.out, "  %s\n", pkg)
		}
	}
	for _, w := range plan.Warnings {
		fmt.Fprintf(a.out, "WARNING: %s\n", w)
	}
	if len(plan.ManifestRefs) > 0 {
		fmt.Fprintln(a.out, "Manifest entries:")
		for _, path := range report.SortedKeys(plan.ManifestRefs) {
			fmt.Fprintf(a.out, "  %s: %s\n", path, strings.Join(plan.ManifestRefs[path], ", "))
		}
	}
	if len(plan.Icons) > 0 {
		fmt.Fprintln(a.out, "Icons:")
		for _, icon := range plan.Icons {
			fmt.Fprintf(a.out, "  %s\n", icon)
		}
	}
	s := plan.Summary()
	fmt.Fprintf(a.out, "Total: %s, %s\n", s, formatBytes(s.Bytes))
}

func (a *app) printDeprecation(res *deprecate.Result) {
	fmt.Fprintf(a.out, "Removed %d, archived %d, failed %d\n", len(res.Removed), len(res.Archived), len(res.Failures))
	verb := "REMOVED"
	if len(res.Archived) > 0 {
		verb = "ARCHIVED"
	}
	for _, path := range res.Succeeded() {
		fmt.Fprintf(a.out, "  %s %s\n", verb, path)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(a.out, "  FAILED %s\n", f)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(a.out, "  WARNING %s\n", w)
	}
	for _, pkg := range res.Skipped {
		fmt.Fprintf(a.out, "  SKIPPED %s\n", pkg)
	}
	if len(res.StrippedNames) > 0 {
		fmt.Fprintf(a.out, "Removed %s from %d manifests\n", strings.Join(res.StrippedNames, ", "), len(res.ManifestsUpdated))
	}
}
