package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"simpleboard/app/repositories"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Version will be set at build time using -ldflags
var Version = "development"

var sqliteHeader = []byte("SQLite format 3\x00")

// NewRootCmd builds the simpleboard command tree around cfg. Flags override
// the values cfg was created with.
func NewRootCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "simpleboard [command] [flags]",
		Short:         "SimpleBoard: a minimal message board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (sqlite or postgres) [BOARD_DB_DRIVER]")
	flags.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "database DSN or SQLite file path [BOARD_DB_DSN]")

	root.AddCommand(
		newServeCmd(cfg),
		newInitCmd(cfg),
		newCleanCmd(cfg),
		newBackupCmd(cfg),
		newRestoreCmd(cfg),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with configuration taken from the environment.
func Execute() error {
	cfg, err := ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	if err := NewRootCmd(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunAppServer(ctx, *cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address [BOARD_ADDR, PORT]")
	cmd.Flags().StringVar(&cfg.FlashDir, "flash-dir", cfg.FlashDir, "flash message store directory, empty for in-memory [BOARD_FLASH_DIR]")
	cmd.Flags().DurationVar(&cfg.FlashTTL, "flash-ttl", cfg.FlashTTL, "how long an unread flash message is kept [BOARD_FLASH_TTL]")
	return cmd
}

func newInitCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the board schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initDB(*cfg, cmd.OutOrStdout())
		},
	}
}

func newCleanCmd(cfg *Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop the board schema and every post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanDB(*cfg, yes, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newBackupCmd(cfg *Config) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a copy of the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := backupDB(*cfg, dir, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data/backups", "directory backups are written to")
	return cmd
}

func newRestoreCmd(cfg *Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the SQLite database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return restoreDB(*cfg, args[0], yes, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of SimpleBoard",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "simpleboard version", Version)
		},
	}
}

// initDB applies every pending migration.
func initDB(cfg Config, out io.Writer) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.MigrateUp(db); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// cleanDB reverts every migration after confirmation.
func cleanDB(cfg Config, yes bool, in io.Reader, out io.Writer) error {
	if cfg.DBDriver == repositories.DriverSQLite && !fileExists(repositories.SQLitePath(cfg.DBDSN)) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.MigrateDown(db); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// backupDB writes a timestamped copy of the SQLite database into dir and
// returns its path.
func backupDB(cfg Config, dir string, out io.Writer) (string, error) {
	if cfg.DBDriver != repositories.DriverSQLite {
		return "", errors.Errorf("backup is only supported for %s databases", repositories.DriverSQLite)
	}
	if !fileExists(repositories.SQLitePath(cfg.DBDSN)) {
		return "", errors.New("no database exists to backup")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create backup directory")
	}

	db, err := openDB(cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	if err := repositories.Backup(db, backupFile); err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restoreDB swaps the SQLite database file for backupFile. The copy lands
// next to the target first and is renamed into place.
func restoreDB(cfg Config, backupFile string, yes bool, in io.Reader, out io.Writer) error {
	if cfg.DBDriver != repositories.DriverSQLite {
		return errors.Errorf("restore is only supported for %s databases", repositories.DriverSQLite)
	}

	data, err := os.ReadFile(backupFile)
	if os.IsNotExist(err) {
		return errors.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return errors.Wrap(err, "failed to read backup file")
	}
	if len(data) == 0 {
		return errors.Errorf("backup file is empty: %s", backupFile)
	}
	if !bytes.HasPrefix(data, sqliteHeader) {
		return errors.Errorf("not a SQLite database: %s", backupFile)
	}

	target := repositories.SQLitePath(cfg.DBDSN)
	if fileExists(target) && !yes &&
		!confirm(in, out, "Existing database found. Do you want to replace it?") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, "failed to create database directory")
	}
	tmp := target + ".restore"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write restored database")
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to replace database")
	}
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		os.Remove(target + suffix)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
