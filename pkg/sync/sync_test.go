package sync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotkeep/pkg/backup"
	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/sync"
	"github.com/arthur-debert/dotkeep/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	home    string
	paths   *paths.Paths
	backups *backup.Manager
	syncer  *sync.Syncer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	p, err := paths.New(filepath.Join(home, "store"), filepath.Join(home, "store-backups"))
	require.NoError(t, err)

	fsys := filesystem.NewOS()
	backups := backup.NewManager(fsys, p, 7)

	return &testEnv{
		home:    home,
		paths:   p,
		backups: backups,
		syncer:  sync.NewSyncer(fsys, p, backups),
	}
}

func (e *testEnv) entry(t *testing.T, systemPath string) types.ManagedEntry {
	t.Helper()
	return types.ManagedEntry{
		SystemPath: systemPath,
		StorePath:  e.paths.ToStorePath(systemPath),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name                                   string
		systemExists, storeExists, linkCorrect bool
		want                                   sync.Plan
	}{
		{name: "neither_exists", want: sync.PlanImpossible},
		{name: "already_linked", systemExists: true, storeExists: true, linkCorrect: true, want: sync.PlanNoop},
		{name: "incorrect_link", systemExists: true, storeExists: true, want: sync.PlanMigrate},
		{name: "first_migration", systemExists: true, want: sync.PlanMigrate},
		{name: "recreate_from_store", storeExists: true, want: sync.PlanRelink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sync.Decide(tt.systemExists, tt.storeExists, tt.linkCorrect))
		})
	}
}

func TestFirstTimeMigration(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	writeFile(t, systemPath, "hello")

	entry := env.entry(t, systemPath)
	result, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)
	assert.Equal(t, sync.PlanMigrate, result.Plan)

	// Store holds the content, system path is the link
	assert.Equal(t, "hello", readFile(t, entry.StorePath))
	assert.True(t, sync.IsCorrect(filesystem.NewOS(), entry.StorePath, systemPath))
	assert.Equal(t, "hello", readFile(t, systemPath), "content must be readable through the link")

	// Exactly one backup snapshot with the original content
	require.NotNil(t, result.Snapshot)
	snaps, err := env.backups.ListSnapshots(entry.RelativeKey(env.paths.StoreRoot()))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "hello", readFile(t, snaps[0].ContentPath))
}

func TestIdempotence(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	writeFile(t, systemPath, "hello")
	entry := env.entry(t, systemPath)

	_, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)

	before, err := os.Lstat(systemPath)
	require.NoError(t, err)

	result, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)
	assert.Equal(t, sync.PlanNoop, result.Plan)
	assert.Nil(t, result.Snapshot, "a no-op must not create a backup")

	after, err := os.Lstat(systemPath)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "the symlink must not be recreated")

	snaps, err := env.backups.ListSnapshots(entry.RelativeKey(env.paths.StoreRoot()))
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestRepairDanglingLink(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	entry := env.entry(t, systemPath)

	writeFile(t, entry.StorePath, "correct")
	require.NoError(t, os.Symlink(filepath.Join(env.home, "gone"), systemPath))

	result, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)
	assert.Equal(t, sync.PlanMigrate, result.Plan)
	assert.Nil(t, result.Snapshot, "a dangling link has no content to back up")

	assert.Equal(t, "correct", readFile(t, systemPath))
	assert.True(t, sync.IsCorrect(filesystem.NewOS(), entry.StorePath, systemPath))
}

func TestIncorrectLinkFollowsToContent(t *testing.T) {
	env := newTestEnv(t)

	// The system path is a symlink to unrelated real content; the content,
	// not the link, must be migrated
	realContent := filepath.Join(env.home, "elsewhere", "testrc")
	writeFile(t, realContent, "moved aside")
	systemPath := filepath.Join(env.home, ".testrc")
	require.NoError(t, os.Symlink(realContent, systemPath))

	entry := env.entry(t, systemPath)
	result, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)
	assert.Equal(t, sync.PlanMigrate, result.Plan)

	assert.Equal(t, "moved aside", readFile(t, entry.StorePath))
	assert.True(t, sync.IsCorrect(filesystem.NewOS(), entry.StorePath, systemPath))
	assert.NoFileExists(t, realContent, "the followed content must be moved, not copied")

	require.NotNil(t, result.Snapshot)
	assert.Equal(t, "moved aside", readFile(t, result.Snapshot.ContentPath))
}

func TestRecreateFromStore(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	entry := env.entry(t, systemPath)
	writeFile(t, entry.StorePath, "preserved")

	result, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)
	assert.Equal(t, sync.PlanRelink, result.Plan)

	assert.Equal(t, "preserved", readFile(t, systemPath))

	snaps, err := env.backups.ListSnapshots(entry.RelativeKey(env.paths.StoreRoot()))
	require.NoError(t, err)
	assert.Empty(t, snaps, "recreate-from-store must not create backups")
}

func TestNeitherPathExists(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	entry := env.entry(t, systemPath)

	_, err := env.syncer.SyncOne(entry)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNeitherPathExists))

	assert.NoFileExists(t, systemPath)
	assert.NoFileExists(t, entry.StorePath)
}

func TestDailyDeduplication(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".testrc")
	writeFile(t, systemPath, "hello")
	entry := env.entry(t, systemPath)

	_, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)

	// Break the link and resync the same day: content moves again but the
	// dedup rule suppresses a second snapshot
	require.NoError(t, os.Remove(systemPath))
	writeFile(t, systemPath, "edited directly")
	_, err = env.syncer.SyncOne(entry)
	require.NoError(t, err)

	assert.Equal(t, "edited directly", readFile(t, entry.StorePath))

	snaps, err := env.backups.ListSnapshots(entry.RelativeKey(env.paths.StoreRoot()))
	require.NoError(t, err)
	assert.Len(t, snaps, 1, "same-day syncs produce at most one backup")
}

func TestDirectoryMigration(t *testing.T) {
	env := newTestEnv(t)

	systemPath := filepath.Join(env.home, ".config", "git")
	writeFile(t, filepath.Join(systemPath, "config"), "[user]")
	writeFile(t, filepath.Join(systemPath, "ignore"), "*.o")

	entry := env.entry(t, systemPath)
	_, err := env.syncer.SyncOne(entry)
	require.NoError(t, err)

	assert.Equal(t, "[user]", readFile(t, filepath.Join(entry.StorePath, "config")))
	assert.Equal(t, "*.o", readFile(t, filepath.Join(systemPath, "ignore")))
	assert.True(t, sync.IsCorrect(filesystem.NewOS(), entry.StorePath, systemPath))
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)

	missing := env.entry(t, filepath.Join(env.home, ".does-not-exist"))
	good := filepath.Join(env.home, ".goodrc")
	writeFile(t, good, "fine")
	goodEntry := env.entry(t, good)

	outcomes := env.syncer.SyncAll([]types.ManagedEntry{missing, goodEntry})
	require.Len(t, outcomes, 2)

	assert.Error(t, outcomes[0].Err)
	assert.True(t, errors.IsErrorCode(outcomes[0].Err, errors.ErrNeitherPathExists))

	require.NoError(t, outcomes[1].Err)
	assert.True(t, sync.IsCorrect(filesystem.NewOS(), goodEntry.StorePath, good))
}
