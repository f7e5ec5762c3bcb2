// Package cli implements the devup command tree: the bare command runs the
// full bootstrap sequence and hands the terminal to the development server,
// subcommands run a single phase for targeted re-runs.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shopercenter/devup/internal/app"
	"github.com/shopercenter/devup/internal/buildinfo"
	"github.com/shopercenter/devup/internal/config"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

type cliApp struct {
	verbose bool
	noColor bool

	cfg *config.Config
	log *logging.ZapLogger
	app *app.App
}

// NewRootCmd builds the devup command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cliApp{})
}

func newRootCmd(c *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:   "devup",
		Short: "Bootstrap the development environment",
		Long: `devup brings a development host to a runnable state: it installs and
starts the database engine, ensures the application role and database,
prepares the runtime environment, builds frontend assets, applies schema
migrations, seeds the privileged accounts, and finally starts the
development server in the foreground.

Every step is idempotent; re-running devup repairs whatever is missing
and leaves the rest untouched.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runAll,
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.newDBCmd(),
		c.newDepsCmd(),
		c.newAssetsCmd(),
		c.newMigrateCmd(),
		c.newSeedCmd(),
		c.newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	c := &cliApp{}
	err := newRootCmd(c).Execute()

	if c.app != nil {
		_ = c.app.Close()
	}
	if c.log != nil {
		c.log.Sync()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: ")+err.Error())
		return 1
	}
	return 0
}

func (c *cliApp) setup(cmd *cobra.Command, _ []string) error {
	if c.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logging.NewConsole(c.verbose)
	c.app = app.New(cfg, c.log)
	return nil
}

func (c *cliApp) runAll(cmd *cobra.Command, _ []string) error {
	if err := c.promptSuperuserPassword(); err != nil {
		return err
	}
	steps, err := c.app.Steps()
	if err != nil {
		return err
	}
	if err := c.runSteps(cmd, steps...); err != nil {
		return err
	}
	return c.app.Launcher().Launch(cmd.Context())
}

func (c *cliApp) runSteps(cmd *cobra.Command, steps ...step.Step) error {
	runner := step.NewRunner(c.log)
	runner.SetListener(&ConsoleListener{
		Out:         cmd.OutOrStdout(),
		Interactive: c.interactive(),
	})
	return runner.Run(cmd.Context(), steps)
}

func (c *cliApp) interactive() bool {
	return !c.noColor && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptSuperuserPassword asks for the superuser password when a username
// was configured without one and stdin is a terminal. Non-interactive runs
// simply skip the optional account.
func (c *cliApp) promptSuperuserPassword() error {
	if c.cfg.Superuser.Username == "" || c.cfg.Superuser.Password != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Password for superuser %s: ", c.cfg.Superuser.Username)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	c.cfg.Superuser.Password = string(pw)
	return nil
}

func (c *cliApp) newDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db",
		Short: "Install and start the engine, ensure the role and database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbStep, err := c.app.DatabaseStep()
			if err != nil {
				return err
			}
			return c.runSteps(cmd, c.app.EngineStep(), c.app.ReadyStep(), dbStep)
		},
	}
}

func (c *cliApp) newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Create the runtime environment and install dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSteps(cmd, c.app.DepsStep())
		},
	}
}

func (c *cliApp) newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "Build frontend assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSteps(cmd, c.app.AssetsStep())
		},
	}
}

func (c *cliApp) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrateStep, err := c.app.MigrateStep()
			if err != nil {
				return err
			}
			return c.runSteps(cmd, migrateStep)
		},
	}
}

func (c *cliApp) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the privileged accounts exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.promptSuperuserPassword(); err != nil {
				return err
			}
			seedStep, err := c.app.SeedStep()
			if err != nil {
				return err
			}
			return c.runSteps(cmd, seedStep)
		},
	}
}

func (c *cliApp) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the development server in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Launcher().Launch(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		// Version needs no configuration; skip the inherited setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
