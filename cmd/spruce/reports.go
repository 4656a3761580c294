// cmd/spruce/reports.go - read-only name and category reports.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/exitcode"
	"github.com/windowsadmins/spruce/pkg/recategorize"
	"github.com/windowsadmins/spruce/pkg/report"
)

// loadCatalog opens the repo and loads the catalog reports read from.
func (a *app) loadCatalog(source string) (catalog.Catalog, error) {
	if err := a.openRepo(); err != nil {
		return nil, err
	}
	if source == "" {
		source = a.cfg.CatalogSource
	}
	src, err := catalog.ParseSource(source)
	if err != nil {
		return nil, exitcode.WithCode(exitcode.ValidationError, err)
	}
	return catalog.Load(a.repo, src)
}

func (a *app) newNameCommand() *cobra.Command {
	var (
		versions bool
		source   string
	)
	cmd := &cobra.Command{
		Use:   "name",
		Short: "List product names in the repo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(source)
			if err != nil {
				return err
			}
			return report.Names(c, versions).Write(a.out)
		},
	}
	cmd.Flags().BoolVarP(&versions, "versions", "v", false, "list each name's versions")
	cmd.Flags().StringVar(&source, "source", "", "catalog source: all or pkgsinfo (default from config)")
	return cmd
}

func (a *app) newCategoryCommand() *cobra.Command {
	var (
		prepare bool
		output  string
		source  string
	)
	cmd := &cobra.Command{
		Use:   "category [CATEGORY...]",
		Short: "Count products per category, or list the members of categories",
		Long: `Without arguments, print every category with its number of pkginfos.
With category arguments, print each category's members by name and version.
With --prepare, write a recategorization plist of the current categories
that can be edited and fed to 'spruce recategorize'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(source)
			if err != nil {
				return err
			}
			switch {
			case prepare:
				return a.writePrepared(recategorize.Prepare(c), output)
			case len(args) == 0:
				return report.WriteCategoryCounts(a.out, report.CategoryCounts(c))
			default:
				return report.WriteCategoryMembers(a.out, report.CategoryMembers(c, args))
			}
		},
	}
	cmd.Flags().BoolVarP(&prepare, "prepare", "p", false, "emit a recategorization plist")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the prepared plist to FILE instead of stdout")
	cmd.Flags().StringVar(&source, "source", "", "catalog source: all or pkgsinfo (default from config)")
	return cmd
}

func (a *app) writePrepared(p recategorize.Plist, output string) error {
	if output == "" {
		data, err := recategorize.Encode(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "%s\n", data)
		return err
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	if err := recategorize.SavePlist(osfs.New(filepath.Dir(abs)), filepath.Base(abs), p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d categories to %s\n", len(p), abs)
	return nil
}
