// cmd/spruce/recategorize.go - bulk category changes from a plist.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/recategorize"
)

func (a *app) newRecategorizeCommand() *cobra.Command {
	var dryRun, force bool
	cmd := &cobra.Command{
		Use:   "recategorize PLIST",
		Short: "Set pkginfo categories from a category-to-names plist",
		Long: `Read a plist mapping each category to a list of product names, as written
by 'spruce category --prepare', and set the category of every pkginfo of
those products. The key Uncategorized removes the category. A name listed
under two categories is an error and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			p, err := recategorize.LoadPlist(osfs.New(filepath.Dir(abs)), filepath.Base(abs))
			if err != nil {
				return err
			}
			if err := a.openRepo(); err != nil {
				return err
			}
			c, err := catalog.Scan(a.repo)
			if err != nil {
				return err
			}
			updates, err := recategorize.Plan(c, p)
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				fmt.Fprintln(a.out, "All categories already match")
				return nil
			}
			for _, u := range updates {
				fmt.Fprintf(a.out, "  %s\n", u)
			}
			if dryRun {
				fmt.Fprintf(a.out, "Would update %d pkginfos\n", len(updates))
				return nil
			}
			if err := a.confirm(fmt.Sprintf("Update %d pkginfos?", len(updates)), force); err != nil {
				return err
			}

			res := recategorize.Apply(a.repo, updates)
			fmt.Fprintf(a.out, "Updated %d pkginfos, %d failed\n", len(res.Applied), len(res.Failures))
			for _, f := range res.Failures {
				fmt.Fprintf(a.out, "  FAILED %s\n", f)
			}
			if len(res.Applied) > 0 {
				if err := a.rebuildCatalogs(); err != nil {
					return err
				}
			}
			return failed(len(res.Failures), "pkginfo updates")
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show the changes without writing them")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}
