package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fairway/app/config"
	"fairway/app/logger"
	"fairway/app/services"
	"fairway/service"
)

const cliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the CLI against the process arguments and streams.
func RealMain() {
	cmd := newRootCmd(os.Stdin, os.Stdout)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		exit(1)
	}
}

type cli struct {
	envFile string
	in      io.Reader
	out     io.Writer
}

func (c *cli) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	cmd := &cobra.Command{
		Use:          "fairway",
		Short:        "MASGOLF marketing admin backend",
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	cmd.AddCommand(
		c.serveCmd(),
		c.dispatchCmd(),
		c.dbCmd(),
		c.migrateCmd(),
		c.hashPasswordCmd(),
		c.versionCmd(),
	)
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the dispatch scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return service.RunServer(ctx, cfg, log)
		},
	}
}

func (c *cli) dispatchCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send every scheduled SMS that is due, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			report, err := service.RunDispatch(cmd.Context(), cfg, log, dryRun)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Success {
				return errors.New(report.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be sent without sending or writing")
	return cmd
}

func (c *cli) dbCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the Badger database",
	}
	cmd.PersistentFlags().BoolVar(&force, "force", false, "skip confirmation prompts")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty database",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, _, err := c.load()
				if err != nil {
					return err
				}
				return service.InitDB(cfg.BadgerPath, c.out)
			},
		},
		&cobra.Command{
			Use:   "backup",
			Short: "Create a backup of the database",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, _, err := c.load()
				if err != nil {
					return err
				}
				_, err = service.BackupDB(cfg.BadgerPath, cfg.BackupDir, c.out)
				return err
			},
		},
		&cobra.Command{
			Use:   "restore <file>",
			Short: "Restore the database from a backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				cfg, _, err := c.load()
				if err != nil {
					return err
				}
				return service.RestoreDB(cfg.BadgerPath, args[0], c.in, c.out, force)
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove the database",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, _, err := c.load()
				if err != nil {
					return err
				}
				return service.CleanDB(cfg.BadgerPath, c.in, c.out, force)
			},
		},
	)
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}
	for _, up := range []bool{true, false} {
		use, short := "up", "Apply every pending migration"
		if !up {
			use, short = "down", "Roll back every migration"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, _, err := c.load()
				if err != nil {
					return err
				}
				return service.Migrate(cfg.DatabaseURL, up, c.out)
			},
		})
	}
	return cmd
}

func (c *cli) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Print the bcrypt hash for ADMIN_PASSWORD_HASH. Without an argument the password is read from standard input.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(c.in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, hash)
			return nil
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(c.out, "fairway version %s\n", cliVersion)
		},
	}
}
