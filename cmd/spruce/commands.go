// cmd/spruce/commands.go - makecatalogs, config and version.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/config"
	"github.com/windowsadmins/spruce/pkg/exitcode"
	"github.com/windowsadmins/spruce/pkg/version"
)

func (a *app) newMakecatalogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "makecatalogs",
		Short: "Rebuild catalogs/ from pkgsinfo/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.openRepo(); err != nil {
				return err
			}
			c, err := catalog.Rebuild(a.repo)
			if err != nil {
				return err
			}
			names := catalog.Build(c)
			fmt.Fprintf(a.out, "Rebuilt %d catalogs from %d pkginfos\n", len(names), len(c))
			return nil
		},
	}
}

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the spruce configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if path == "" {
				return exitcode.WithCode(exitcode.ConfigError, fmt.Errorf("no config directory; pass --config"))
			}
			if _, err := os.Stat(path); err == nil && !force {
				return exitcode.WithCode(exitcode.ConfigError, fmt.Errorf("%s already exists; use --force to overwrite", path))
			}
			if err := config.SaveConfig(a.cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func (a *app) newVersionCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the spruce version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if full {
				version.PrintFull(a.out)
			} else {
				version.Print(a.out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build details")
	return cmd
}
