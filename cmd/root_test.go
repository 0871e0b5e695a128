package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/output"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

// storageEnv points the commands at a throwaway storage root via the
// storage_root override.
func storageEnv(t *testing.T) string {
	t.Helper()
	viper.Reset()
	root := t.TempDir()
	viper.Set("storage_root", root)
	viper.SetDefault("backup_dir", filepath.Join(t.TempDir(), "backups"))

	channel = ""
	dryRun = false
	ui = output.New()
	ui.DryRun = false

	return root
}

// seedHash creates a hash directory with a descriptor, a state.vscdb aged by
// storeAge, and optional chat session files.
func seedHash(t *testing.T, storageRoot, hash, folderURI string, storeAge time.Duration, sessions map[string]string) {
	t.Helper()
	dir := filepath.Join(storageRoot, hash)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	desc := fmt.Sprintf(`{"folder": %q}`, folderURI)
	require.NoError(t, os.WriteFile(filepath.Join(dir, workspace.DescriptorName), []byte(desc), 0o644))

	storePath := filepath.Join(dir, workspace.StoreName)
	require.NoError(t, os.WriteFile(storePath, nil, 0o644))
	mtime := time.Now().Add(-storeAge)
	require.NoError(t, os.Chtimes(storePath, mtime, mtime))

	if len(sessions) > 0 {
		chatDir := filepath.Join(dir, workspace.ChatDirName)
		require.NoError(t, os.MkdirAll(chatDir, 0o755))
		for name, content := range sessions {
			require.NoError(t, os.WriteFile(filepath.Join(chatDir, name), []byte(content), 0o644))
		}
	}
}

func TestResolveRoots_StorageRootOverride(t *testing.T) {
	root := storageEnv(t)

	roots, err := resolveRoots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "custom", roots[0].Channel)
	assert.Equal(t, root, roots[0].Root)
}

func TestResolveRoots_StorageRootMissing(t *testing.T) {
	storageEnv(t)
	viper.Set("storage_root", filepath.Join(t.TempDir(), "nope"))

	_, err := resolveRoots()
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrNoStorageRoot)
}

func TestSingleRoot_UsesOverride(t *testing.T) {
	root := storageEnv(t)

	got, err := singleRoot()
	require.NoError(t, err)
	assert.Equal(t, root, got.Root)
}

func TestBuildCandidates_KeywordsOnly(t *testing.T) {
	root := storageEnv(t)
	seedHash(t, root, "aaa111", "file:///home/dev/proj", time.Hour, nil)
	seedHash(t, root, "bbb222", "file:///home/dev/other", time.Hour, nil)

	label, hits, err := buildCandidates(root, "", []string{"proj"})
	require.NoError(t, err)
	assert.Equal(t, "keywords: proj", label)
	require.Len(t, hits, 1)
	assert.Equal(t, "aaa111", hits[0].Hash)
}

func TestBuildCandidates_PathInput(t *testing.T) {
	root := storageEnv(t)
	seedHash(t, root, "ccc333", "file:///home/dev/proj", time.Hour, nil)

	// A path that does not exist on disk is still matched verbatim.
	label, hits, err := buildCandidates(root, "/home/dev/proj", nil)
	require.NoError(t, err)
	assert.Contains(t, label, "path: ")
	require.Len(t, hits, 1)
	assert.Equal(t, "ccc333", hits[0].Hash)
}

func TestBuildCandidates_OrdersByStoreTime(t *testing.T) {
	root := storageEnv(t)
	seedHash(t, root, "older0", "file:///home/dev/proj", 48*time.Hour, nil)
	seedHash(t, root, "newer0", "file:///home/dev/proj", time.Hour, nil)

	_, hits, err := buildCandidates(root, "", []string{"proj"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "newer0", hits[0].Hash)
	assert.Equal(t, "older0", hits[1].Hash)
}

func TestResolveBackupDir(t *testing.T) {
	storageEnv(t)
	viper.Set("backup_dir", "/tmp/from-config")

	assert.Equal(t, "/tmp/flag-wins", resolveBackupDir("/tmp/flag-wins"))
	assert.Equal(t, "/tmp/from-config", resolveBackupDir(""))
}

func TestTruncTitle(t *testing.T) {
	assert.Equal(t, "short", truncTitle("short"))

	long := strings.Repeat("abcdefg", 20)
	got := truncTitle(long)
	assert.Len(t, []rune(got), 61)
	assert.Equal(t, "…", string([]rune(got)[60]))
}

func TestFmtStoreTime(t *testing.T) {
	assert.Equal(t, "(no state.vscdb)", fmtStoreTime(nil))

	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01 12:30:00", fmtStoreTime(&ts))
}
