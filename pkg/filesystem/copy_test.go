package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyPathFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0600))

	require.NoError(t, filesystem.CopyPath(filesystem.NewOS(), src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "modes are preserved")
}

func TestCopyPathDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "deep"), []byte("b"), 0644))
	// A symlink inside the tree is copied as a link, not followed
	require.NoError(t, os.Symlink("top", filepath.Join(src, "link")))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, filesystem.CopyPath(filesystem.NewOS(), src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "nested", "deep"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "top", target)
}

func TestCopyPathMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := filesystem.CopyPath(filesystem.NewOS(), filepath.Join(dir, "absent"), filepath.Join(dir, "dst"))
	assert.Error(t, err)
}
