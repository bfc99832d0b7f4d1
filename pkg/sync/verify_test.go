package sync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCorrect(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	storePath := filepath.Join(dir, "store", ".vimrc")
	writeFile(t, storePath, "content")

	t.Run("missing_system_path", func(t *testing.T) {
		assert.False(t, sync.IsCorrect(fsys, storePath, filepath.Join(dir, "absent")))
	})

	t.Run("plain_file", func(t *testing.T) {
		plain := filepath.Join(dir, "plain")
		writeFile(t, plain, "content")
		assert.False(t, sync.IsCorrect(fsys, storePath, plain))
	})

	t.Run("correct_link", func(t *testing.T) {
		link := filepath.Join(dir, "correct")
		require.NoError(t, os.Symlink(storePath, link))
		assert.True(t, sync.IsCorrect(fsys, storePath, link))
	})

	t.Run("link_elsewhere", func(t *testing.T) {
		other := filepath.Join(dir, "other-target")
		writeFile(t, other, "x")
		link := filepath.Join(dir, "wrong")
		require.NoError(t, os.Symlink(other, link))
		assert.False(t, sync.IsCorrect(fsys, storePath, link))
	})

	t.Run("relative_target_resolved_against_link_dir", func(t *testing.T) {
		linkDir := filepath.Join(dir, "store")
		link := filepath.Join(linkDir, "rel-link")
		require.NoError(t, os.Symlink(".vimrc", link))
		assert.True(t, sync.IsCorrect(fsys, storePath, link))
	})

	t.Run("dangling_link", func(t *testing.T) {
		link := filepath.Join(dir, "dangling")
		require.NoError(t, os.Symlink(filepath.Join(dir, "nope"), link))
		assert.False(t, sync.IsCorrect(fsys, storePath, link))
	})
}
