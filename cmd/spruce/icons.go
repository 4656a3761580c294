// cmd/spruce/icons.go - report and clean up icons no product uses.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/icons"
)

func (a *app) newIconsCommand() *cobra.Command {
	var (
		del     bool
		archive string
		force   bool
		source  string
	)
	cmd := &cobra.Command{
		Use:   "icons [--delete | --archive DIR]",
		Short: "Find icons that match no product",
		Long: `List the icons under icons/ whose name matches no product and that no
pkginfo names as its icon_name. With --delete they are removed, with
--archive moved into a repo-shaped directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := icons.CheckMode(del, archive); err != nil {
				return err
			}
			c, err := a.loadCatalog(source)
			if err != nil {
				return err
			}
			orphans, err := icons.FindOrphans(a.repo, c)
			if err != nil {
				return err
			}
			if len(orphans) == 0 {
				fmt.Fprintln(a.out, "No orphaned icons")
				return nil
			}

			var total int64
			for _, path := range orphans {
				info, err := icons.Inspect(a.repo.FS, path)
				if err != nil {
					fmt.Fprintf(a.out, "  %s (%v)\n", path, err)
					continue
				}
				total += info.Bytes
				if info.Format == "" {
					fmt.Fprintf(a.out, "  %s  %s\n", path, formatBytes(info.Bytes))
				} else {
					fmt.Fprintf(a.out, "  %s  %s %dx%d  %s\n", path, info.Format, info.Width, info.Height, formatBytes(info.Bytes))
				}
			}
			fmt.Fprintf(a.out, "%d orphaned icons, %s\n", len(orphans), formatBytes(total))
			if !del && archive == "" {
				return nil
			}

			archiveFS, err := a.archiveFS(archive, total)
			if err != nil {
				return err
			}
			verb := "Delete"
			if archiveFS != nil {
				verb = "Archive"
			}
			if err := a.confirm(fmt.Sprintf("%s %d icons?", verb, len(orphans)), force); err != nil {
				return err
			}

			res := icons.Resolve(fileops.NewDisposer(a.repo.FS, archiveFS, a.cfg.RetryConfig()), orphans)
			fmt.Fprintf(a.out, "Removed %d, archived %d, failed %d\n", len(res.Removed), len(res.Archived), len(res.Failures))
			for _, path := range res.Removed {
				fmt.Fprintf(a.out, "  REMOVED %s\n", path)
			}
			for _, path := range res.Archived {
				fmt.Fprintf(a.out, "  ARCHIVED %s\n", path)
			}
			for _, f := range res.Failures {
				fmt.Fprintf(a.out, "  FAILED %s\n", f)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(a.out, "  WARNING %s\n", w)
			}
			return failed(len(res.Failures), "icon operations")
		},
	}
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete orphaned icons")
	cmd.Flags().StringVarP(&archive, "archive", "a", "", "move orphaned icons into this repo-shaped directory")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	cmd.Flags().StringVar(&source, "source", "", "catalog source: all or pkgsinfo (default from config)")
	return cmd
}
