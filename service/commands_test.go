package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"simpleboard/app/models"
	"simpleboard/app/repositories"
	"simpleboard/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

func setupTestConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		Addr:     "127.0.0.1:0",
		DBDriver: repositories.DriverSQLite,
		DBDSN:    filepath.Join(dir, "board.db"),
		FlashDir: "",
		FlashTTL: time.Minute,
	}
}

// runCommand executes the command line args against cfg with the given stdin.
func runCommand(t *testing.T, cfg Config, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	root := NewRootCmd(&cfg)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func seedPost(t *testing.T, cfg Config, title string) {
	db, err := openDB(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, repositories.MigrateUp(db))
	service := services.NewPostService(repositories.NewSQLPostRepository(db))
	require.NoError(t, service.CreatePost(context.Background(), &models.Post{
		Name: "alice", Title: title, Password: "1234", Content: "hello",
	}))
}

func countPosts(t *testing.T, cfg Config) int64 {
	db, err := openDB(cfg)
	require.NoError(t, err)
	defer db.Close()
	service := services.NewPostService(repositories.NewSQLPostRepository(db))
	page, err := service.ListPosts(context.Background(), 0, 10)
	require.NoError(t, err)
	return page.TotalElements
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, setupTestConfig(t), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "simpleboard version development\n", output)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCommand(t, setupTestConfig(t), "", "bogus")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	cfg := setupTestConfig(t)

	output, err := runCommand(t, cfg, "", "init")
	require.NoError(t, err)
	assert.Contains(t, output, "Database initialized successfully")
	assert.FileExists(t, cfg.DBDSN)

	output, err = runCommand(t, cfg, "", "init")
	require.NoError(t, err, "init is idempotent")
	assert.Contains(t, output, "Database initialized successfully")
	assert.Equal(t, int64(0), countPosts(t, cfg))
}

func TestCleanCommand(t *testing.T) {
	cfg := setupTestConfig(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		output, err := runCommand(t, cfg, "", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database is already clean")
	})

	seedPost(t, cfg, "keep me")

	t.Run("clean cancelled", func(t *testing.T) {
		output, err := runCommand(t, cfg, "n\n", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Operation cancelled")
		assert.Equal(t, int64(1), countPosts(t, cfg))
	})

	t.Run("clean confirmed", func(t *testing.T) {
		output, err := runCommand(t, cfg, "y\n", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database cleaned successfully")

		db, err := openDB(cfg)
		require.NoError(t, err)
		defer db.Close()
		_, err = repositories.NewSQLPostRepository(db).FindByID(context.Background(), 1)
		assert.Error(t, err, "board table is gone")
	})

	t.Run("clean with --yes", func(t *testing.T) {
		seedPost(t, cfg, "again")
		output, err := runCommand(t, cfg, "", "clean", "--yes")
		require.NoError(t, err)
		assert.Contains(t, output, "Database cleaned successfully")
	})
}

func TestBackupAndRestoreCommands(t *testing.T) {
	cfg := setupTestConfig(t)
	backupDir := filepath.Join(t.TempDir(), "backups")

	t.Run("backup without database", func(t *testing.T) {
		_, err := runCommand(t, cfg, "", "backup", "--dir", backupDir)
		assert.EqualError(t, err, "no database exists to backup")
	})

	seedPost(t, cfg, "before backup")

	var backupFile string
	t.Run("backup", func(t *testing.T) {
		var out bytes.Buffer
		var err error
		backupFile, err = backupDB(cfg, backupDir, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Database backed up successfully")
		assert.FileExists(t, backupFile)
		assert.Regexp(t, `backup_\d+\.db$`, backupFile)
	})

	seedPost(t, cfg, "after backup")
	require.Equal(t, int64(2), countPosts(t, cfg))

	t.Run("restore cancelled", func(t *testing.T) {
		output, err := runCommand(t, cfg, "n\n", "restore", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Operation cancelled")
		assert.Equal(t, int64(2), countPosts(t, cfg))
	})

	t.Run("restore confirmed", func(t *testing.T) {
		output, err := runCommand(t, cfg, "y\n", "restore", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Database restored successfully")
		assert.Equal(t, int64(1), countPosts(t, cfg))
	})

	t.Run("restore into a fresh location", func(t *testing.T) {
		fresh := cfg
		fresh.DBDSN = filepath.Join(t.TempDir(), "nested", "board.db")
		output, err := runCommand(t, fresh, "", "restore", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Database restored successfully")
		assert.Equal(t, int64(1), countPosts(t, fresh))
	})

	t.Run("restore missing file", func(t *testing.T) {
		_, err := runCommand(t, cfg, "", "restore", filepath.Join(backupDir, "nope.db"))
		assert.ErrorContains(t, err, "backup file does not exist")
	})

	t.Run("restore garbage file", func(t *testing.T) {
		junk := filepath.Join(t.TempDir(), "junk.db")
		require.NoError(t, os.WriteFile(junk, []byte("test backup data"), 0644))
		_, err := runCommand(t, cfg, "", "restore", "--yes", junk)
		assert.ErrorContains(t, err, "not a SQLite database")
		assert.Equal(t, int64(1), countPosts(t, cfg))
	})

	t.Run("restore requires a file argument", func(t *testing.T) {
		_, err := runCommand(t, cfg, "", "restore")
		assert.Error(t, err)
	})
}

func TestBackupRejectsPostgres(t *testing.T) {
	cfg := setupTestConfig(t)
	cfg.DBDriver = repositories.DriverPostgres

	_, err := backupDB(cfg, t.TempDir(), &bytes.Buffer{})
	assert.ErrorContains(t, err, "only supported for sqlite")

	err = restoreDB(cfg, "whatever.db", true, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "only supported for sqlite")
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "BOARD_ADDR", "BOARD_DB_DRIVER", "BOARD_DB_DSN", "BOARD_FLASH_DIR", "BOARD_FLASH_TTL"} {
			t.Setenv(key, "")
		}
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, repositories.DriverSQLite, cfg.DBDriver)
		assert.Equal(t, "data/board.db", cfg.DBDSN)
		assert.Equal(t, 5*time.Minute, cfg.FlashTTL)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("BOARD_ADDR", "")
		t.Setenv("PORT", "9000")
		t.Setenv("BOARD_DB_DRIVER", "postgres")
		t.Setenv("BOARD_DB_DSN", "postgres://board@localhost/board?sslmode=disable")
		t.Setenv("BOARD_FLASH_TTL", "30s")
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "postgres", cfg.DBDriver)
		assert.Equal(t, 30*time.Second, cfg.FlashTTL)

		t.Setenv("BOARD_ADDR", "127.0.0.1:7000")
		cfg, err = ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("BOARD_FLASH_TTL", "soon")
		_, err := ConfigFromEnv()
		assert.Error(t, err)
	})
}

func TestRunAppServer(t *testing.T) {
	cfg := setupTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context still migrates, then shuts the server straight down.
	require.NoError(t, RunAppServer(ctx, cfg))
	assert.Equal(t, int64(0), countPosts(t, cfg))
}
