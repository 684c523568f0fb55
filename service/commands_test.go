package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"board/app/database"
	"board/app/models"
	"board/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is a config file pointing at a badger database in a temp dir.
type testEnv struct {
	dir        string
	configPath string
	badgerPath string
	backupDir  string
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	for _, key := range []string{"PORT", "LOG_LEVEL", "STORAGE_DRIVER", "POSTGRES_DSN", "BADGER_PATH", "SHUTDOWN_TIMEOUT", "PAGE_SIZE_MAX"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		badgerPath: filepath.Join(dir, "badger"),
		backupDir:  filepath.Join(dir, "backups"),
	}
	content := fmt.Sprintf("logging:\n  level: error\nstorage:\n  driver: badger\n  badger_path: %q\n  backup_dir: %q\n",
		env.badgerPath, env.backupDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o644))

	prevDefault, prevMax := repositories.DefaultPageSize, repositories.MaxPageSize
	t.Cleanup(func() {
		repositories.DefaultPageSize, repositories.MaxPageSize = prevDefault, prevMax
	})
	return env
}

// run executes the root command with args, feeding stdin to prompts.
func (e testEnv) run(stdin string, args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e testEnv) seed(t *testing.T, titles ...string) {
	t.Helper()
	store, err := database.OpenBadger(e.badgerPath)
	require.NoError(t, err)
	defer store.Close()
	for _, title := range titles {
		require.NoError(t, store.Posts().Create(context.Background(), &models.Post{Title: title, Body: "b", Author: "ann"}))
	}
}

func (e testEnv) count(t *testing.T) int64 {
	t.Helper()
	store, err := database.OpenBadger(e.badgerPath)
	require.NoError(t, err)
	defer store.Close()
	page, err := store.Posts().FindAll(context.Background(), repositories.NewPageRequest(0, 10))
	require.NoError(t, err)
	return page.TotalElements
}

func TestRootCommand(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectError    bool
	}{
		{
			name:           "help",
			args:           []string{"--help"},
			expectedOutput: "Serve and maintain the posts and comments",
		},
		{
			name:           "version",
			args:           []string{"version"},
			expectedOutput: "board dev",
		},
		{
			name:        "unknown command",
			args:        []string{"unknown"},
			expectError: true,
		},
		{
			name:        "restore without file",
			args:        []string{"restore"},
			expectError: true,
		},
		{
			name:           "migrate",
			args:           []string{"migrate"},
			expectedOutput: "Database migrated successfully",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := env.run("", tt.args...)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestConfigAppliesPaging(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("paging:\n  default_size: 5\n  max_size: 20\n"), 0o644))

	_, err := env.run("", "version")
	require.NoError(t, err)
	assert.Equal(t, 5, repositories.DefaultPageSize)
	assert.Equal(t, 20, repositories.MaxPageSize)
}

func TestInvalidConfig(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("storage:\n  driver: mongo\n"), 0o644))

	_, err := env.run("", "version")
	assert.ErrorContains(t, err, "invalid config")
}

func TestBackupAndRestore(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run("", "backup")
	assert.ErrorContains(t, err, "no database exists")

	env.seed(t, "first", "second")

	output, err := env.run("", "backup")
	require.NoError(t, err)
	assert.Contains(t, output, "Database backed up successfully to "+env.backupDir)
	entries, err := os.ReadDir(env.backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "backup_"))

	backupFile := filepath.Join(env.dir, "explicit.db")
	_, err = env.run("", "backup", "--output", backupFile)
	require.NoError(t, err)

	env.seed(t, "third")
	require.Equal(t, int64(3), env.count(t))

	output, err = env.run("n\n", "restore", backupFile)
	assert.ErrorIs(t, err, errCancelled)
	assert.Contains(t, output, "Operation cancelled")
	assert.Equal(t, int64(3), env.count(t))

	output, err = env.run("y\n", "restore", backupFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Database restored successfully")
	assert.Equal(t, int64(2), env.count(t))

	// The restored id sequence keeps new posts from overwriting old ones.
	env.seed(t, "fourth")
	assert.Equal(t, int64(3), env.count(t))
}

func TestRestoreKeepsDatabaseOnCorruptBackup(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "first", "second", "third")

	corrupt := filepath.Join(env.dir, "corrupt.db")
	require.NoError(t, os.WriteFile(corrupt, []byte("garbage backup"), 0o644))

	_, err := env.run("", "restore", "--yes", corrupt)
	require.Error(t, err)
	assert.Equal(t, int64(3), env.count(t))

	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".restore-", "staging directory left behind")
	}
}

func TestRestoreWithoutExistingDatabase(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "first")

	backupFile := filepath.Join(env.dir, "first.db")
	_, err := env.run("", "backup", "--output", backupFile)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(env.badgerPath))

	output, err := env.run("", "restore", backupFile)
	require.NoError(t, err)
	assert.NotContains(t, output, "Existing database found")
	assert.Equal(t, int64(1), env.count(t))
}

func TestRestoreErrors(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run("", "restore", filepath.Join(env.dir, "missing.db"))
	assert.ErrorContains(t, err, "backup file does not exist")

	empty := filepath.Join(env.dir, "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = env.run("", "restore", empty)
	assert.ErrorContains(t, err, "backup file is empty")
}

func TestClean(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "first")

	_, err := env.run("", "clean")
	assert.ErrorIs(t, err, errCancelled)
	assert.Equal(t, int64(1), env.count(t))

	output, err := env.run("", "clean", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "Database cleaned successfully")
	assert.Equal(t, int64(0), env.count(t))
}

func TestBadgerOnlyCommands(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("storage:\n  driver: postgres\n  dsn: \"host=localhost\"\n"), 0o644))

	_, err := env.run("", "clean", "--yes")
	assert.ErrorContains(t, err, "requires the badger storage driver")
}
