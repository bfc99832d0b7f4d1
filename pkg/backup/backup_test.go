package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotkeep/pkg/backup"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, limit int) (*backup.Manager, *paths.Paths, string) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	p, err := paths.New(filepath.Join(home, "store"), filepath.Join(home, "backups"))
	require.NoError(t, err)

	return backup.NewManager(filesystem.NewOS(), p, limit), p, home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSnapshotFile(t *testing.T) {
	mgr, p, home := newTestManager(t, 7)

	source := filepath.Join(home, ".testrc")
	writeFile(t, source, "hello")

	relKey := filepath.Join("__home__", ".testrc")
	snap, err := mgr.Snapshot(relKey, source)
	require.NoError(t, err)

	assert.Equal(t, relKey, snap.RelativeKey)
	assert.Contains(t, snap.ContentPath, p.BackupRoot())
	assert.Regexp(t, `\.testrc\.\d{14}\.backup$`, snap.ContentPath)

	content, err := os.ReadFile(snap.ContentPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestSnapshotDirectory(t *testing.T) {
	mgr, _, home := newTestManager(t, 7)

	source := filepath.Join(home, ".config", "nvim")
	writeFile(t, filepath.Join(source, "init.lua"), "vim.opt.number = true")
	writeFile(t, filepath.Join(source, "lua", "plugins.lua"), "return {}")

	relKey := filepath.Join("__home__", ".config", "nvim")
	snap, err := mgr.Snapshot(relKey, source)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(snap.ContentPath, "lua", "plugins.lua"))
	require.NoError(t, err)
	assert.Equal(t, "return {}", string(content))
}

func TestShouldBackupToday(t *testing.T) {
	mgr, _, home := newTestManager(t, 7)

	relKey := filepath.Join("__home__", ".testrc")
	source := filepath.Join(home, ".testrc")
	writeFile(t, source, "hello")

	// No record yet
	ok, err := mgr.ShouldBackupToday(relKey)
	require.NoError(t, err)
	assert.True(t, ok)

	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	mgr.Clock = func() time.Time { return day }
	_, err = mgr.Snapshot(relKey, source)
	require.NoError(t, err)

	// Same calendar day, later hour
	mgr.Clock = func() time.Time { return day.Add(8 * time.Hour) }
	ok, err = mgr.ShouldBackupToday(relKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// Next day
	mgr.Clock = func() time.Time { return day.AddDate(0, 0, 1) }
	ok, err = mgr.ShouldBackupToday(relKey)
	require.NoError(t, err)
	assert.True(t, ok)

	// A different key is unaffected
	ok, err = mgr.ShouldBackupToday(filepath.Join("__home__", ".other"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRotation(t *testing.T) {
	const limit = 3
	mgr, _, home := newTestManager(t, limit)

	relKey := filepath.Join("__home__", ".testrc")
	source := filepath.Join(home, ".testrc")

	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	for i := 0; i < limit+1; i++ {
		writeFile(t, source, string(rune('a'+i)))
		mgr.Clock = func() time.Time { return day.AddDate(0, 0, i) }
		_, err := mgr.Snapshot(relKey, source)
		require.NoError(t, err)
	}

	snaps, err := mgr.ListSnapshots(relKey)
	require.NoError(t, err)
	require.Len(t, snaps, limit, "rotation should keep exactly the retention limit")

	// The survivors are the most recent ones, newest first
	for i, snap := range snaps {
		want := day.AddDate(0, 0, limit-i)
		assert.Equal(t, want.Truncate(time.Second), snap.Timestamp)
	}

	// Oldest content ("a") is gone, newest survives
	content, err := os.ReadFile(snaps[0].ContentPath)
	require.NoError(t, err)
	assert.Equal(t, string(rune('a'+limit)), string(content))
}

func TestListSnapshotsEmpty(t *testing.T) {
	mgr, _, _ := newTestManager(t, 7)

	snaps, err := mgr.ListSnapshots(filepath.Join("__home__", ".nothing"))
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestRestore(t *testing.T) {
	mgr, _, home := newTestManager(t, 7)

	source := filepath.Join(home, ".testrc")
	writeFile(t, source, "original")

	relKey := filepath.Join("__home__", ".testrc")
	snap, err := mgr.Snapshot(relKey, source)
	require.NoError(t, err)

	writeFile(t, source, "clobbered")
	require.NoError(t, mgr.Restore(*snap, source))

	content, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}
