package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"board/app/database"
	"board/app/repositories"
	"board/config"
	"board/logger"

	"github.com/spf13/cobra"
)

// Flag names
const (
	configFlag = "config"
	outputFlag = "output"
	yesFlag    = "yes"
)

var errCancelled = errors.New("operation cancelled")

// cli carries the configuration loaded before any subcommand runs.
type cli struct {
	configPath string
	cfg        config.AppConfig
	now        func() time.Time
}

// NewRootCommand builds the board command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{now: time.Now}

	root := &cobra.Command{
		Use:          "board",
		Short:        "Discussion board backend",
		Long:         "Serve and maintain the posts and comments of a discussion board.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(cfg.Logging.Level)
			repositories.ConfigurePaging(cfg.Paging.DefaultSize, cfg.Paging.MaxSize)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, configFlag, "", "Path to config.yaml (default: nearest config.yaml)")

	root.AddCommand(
		c.newServeCommand(),
		c.newMigrateCommand(),
		c.newCleanCommand(),
		c.newBackupCommand(),
		c.newRestoreCommand(),
		newVersionCommand(),
	)
	return root
}

func (c *cli) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Open(c.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := store.Migrate(ctx); err != nil {
				return err
			}

			ln, err := net.Listen("tcp", c.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", c.cfg.Server.Addr, err)
			}
			logger.Log.Infof("Starting board service with %s storage", c.cfg.Storage.Driver)
			return Serve(ctx, ln, NewHandler(store), c.cfg.Server.ShutdownTimeout)
		},
	}
}

func (c *cli) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Open(c.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated successfully")
			return nil
		},
	}
}

func (c *cli) newCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove every post and comment from the badger database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openBadger()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := confirm(cmd, "Are you sure you want to clean the database? This cannot be undone."); err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolP(yesFlag, "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *cli) newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup of the badger database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !exists(c.cfg.Storage.BadgerPath) {
				return fmt.Errorf("no database exists to backup at %s", c.cfg.Storage.BadgerPath)
			}
			store, err := c.openBadger()
			if err != nil {
				return err
			}
			defer store.Close()

			output, _ := cmd.Flags().GetString(outputFlag)
			if output == "" {
				if err := os.MkdirAll(c.cfg.Storage.BackupDir, 0o755); err != nil {
					return fmt.Errorf("failed to create backup directory: %w", err)
				}
				output = backupFileName(c.cfg.Storage.BackupDir, c.now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if err := store.Backup(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backed up successfully to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP(outputFlag, "o", "", "Backup file (default: <backup_dir>/backup_<unix time>.db)")
	return cmd
}

func (c *cli) newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the badger database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backupFile := args[0]
			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			if err := c.checkBadger(); err != nil {
				return err
			}
			path := filepath.Clean(c.cfg.Storage.BadgerPath)
			replace := exists(path)
			if replace {
				if err := confirm(cmd, "Existing database found. Do you want to replace it?"); err != nil {
					return err
				}
			}

			// Load into a staging directory; the live database is only
			// swapped out once the backup has been read completely.
			staging := fmt.Sprintf("%s.restore-%d", path, c.now().UnixNano())
			if err := restoreInto(staging, backupFile); err != nil {
				os.RemoveAll(staging)
				return err
			}
			if err := swapDir(staging, path, replace); err != nil {
				os.RemoveAll(staging)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolP(yesFlag, "y", false, "Replace an existing database without asking")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "board %s\n", Version)
		},
	}
}

// openBadger opens the configured badger database. Backups only exist for the
// embedded store.
func (c *cli) openBadger() (*database.BadgerStore, error) {
	if err := c.checkBadger(); err != nil {
		return nil, err
	}
	return database.OpenBadger(c.cfg.Storage.BadgerPath)
}

func (c *cli) checkBadger() error {
	if c.cfg.Storage.Driver != config.DriverBadger {
		return fmt.Errorf("command requires the %s storage driver, configured: %s",
			config.DriverBadger, c.cfg.Storage.Driver)
	}
	if c.cfg.Storage.BadgerPath == "" {
		return errors.New("badger_path is not configured")
	}
	return nil
}

// restoreInto loads backupFile into a new badger database at dir.
func restoreInto(dir, backupFile string) error {
	store, err := database.OpenBadger(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	return store.Restore(f)
}

// swapDir moves staging to path. An existing path is kept aside until the
// move succeeds and put back otherwise.
func swapDir(staging, path string, replace bool) error {
	if !replace {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.Rename(staging, path)
	}

	old := staging + ".old"
	if err := os.Rename(path, old); err != nil {
		return fmt.Errorf("failed to move existing database aside: %w", err)
	}
	if err := os.Rename(staging, path); err != nil {
		if rerr := os.Rename(old, path); rerr != nil {
			return fmt.Errorf("failed to install restored database: %w (existing database left at %s)", err, old)
		}
		return fmt.Errorf("failed to install restored database: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("failed to remove previous database: %w", err)
	}
	return nil
}

// confirm asks a yes/no question on the command's input unless --yes is set.
func confirm(cmd *cobra.Command, question string) error {
	if yes, _ := cmd.Flags().GetBool(yesFlag); yes {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	response = strings.TrimSpace(response)
	if response != "y" && response != "Y" {
		fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
		return errCancelled
	}
	return nil
}
