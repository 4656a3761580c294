// cmd/spruce/main.go - curate a Munki repository.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/config"
	"github.com/windowsadmins/spruce/pkg/exitcode"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// interactive reports whether confirmation prompts can be answered.
	interactive func() bool

	configPath     string
	noMakecatalogs bool

	cfg  *config.Configuration
	repo *repo.Repo
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{in: in, out: out, errOut: errOut}
	a.interactive = func() bool {
		f, ok := a.in.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
	return a
}

func main() {
	os.Exit(newApp(os.Stdin, os.Stdout, os.Stderr).execute(os.Args[1:]))
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(args []string) int {
	cmd := a.newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	err := cmd.Execute()
	defer logging.Close()
	if err != nil {
		fmt.Fprintf(a.errOut, "spruce: %v\n", err)
		return exitcode.For(err)
	}
	return exitcode.Success
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spruce",
		Short: "Curate a Munki repository",
		Long: `spruce reports on and tidies a Munki repo: product names and versions,
categories, bulk recategorization, deprecation of old products and cleanup
of orphaned icons. Catalogs are rebuilt after every change.

Examples:
   spruce name --versions
   spruce category --prepare --output categories.plist
   spruce recategorize categories.plist
   spruce deprecate --name Firefox --archive /Volumes/archive
   spruce icons --delete`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("repo", "", "path to the Munki repo (default: munkiimport repo_path)")
	flags.StringVar(&a.configPath, "config", "", "config file (default: "+config.DefaultConfigPath()+")")
	flags.String("log-level", "", "log level (error|warn|info|debug)")
	flags.String("log-file", "", "also append log output to this file")
	flags.BoolVar(&a.noMakecatalogs, "no-makecatalogs", false, "do not rebuild catalogs after changes")

	cmd.AddCommand(
		a.newNameCommand(),
		a.newCategoryCommand(),
		a.newRecategorizeCommand(),
		a.newDeprecateCommand(),
		a.newIconsCommand(),
		a.newMakecatalogsCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return cmd
}

// loadConfig resolves the configuration and starts logging.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return exitcode.WithCode(exitcode.ConfigError, err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return exitcode.WithCode(exitcode.ConfigError, err)
	}
	if err := logging.Init(logging.LoggerConfig{Level: level, Console: a.errOut, LogFile: cfg.LogFile}); err != nil {
		return exitcode.WithCode(exitcode.ConfigError, err)
	}
	a.cfg = cfg
	return nil
}

// openRepo validates the configuration and opens the repo it names.
func (a *app) openRepo() error {
	if err := a.cfg.Validate(); err != nil {
		return exitcode.WithCode(exitcode.ConfigError, err)
	}
	r, err := repo.Open(a.cfg.RepoPath)
	if err != nil {
		return err
	}
	a.repo = r
	logging.Debug("Opened repo", "path", r.Root)
	return nil
}

// rebuildCatalogs runs makecatalogs after a mutation unless disabled.
func (a *app) rebuildCatalogs() error {
	if a.noMakecatalogs || !a.cfg.RebuildCatalogs {
		logging.Info("Skipping catalog rebuild")
		return nil
	}
	c, err := catalog.Rebuild(a.repo)
	if err != nil {
		return fmt.Errorf("rebuilding catalogs: %w", err)
	}
	fmt.Fprintf(a.out, "Rebuilt catalogs from %d pkginfos\n", len(c))
	return nil
}
