package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotkeep/pkg/store"
	"github.com/arthur-debert/dotkeep/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty_directory_is_link_target", func(t *testing.T) {
		empty := filepath.Join(dir, "empty")
		require.NoError(t, os.Mkdir(empty, 0755))

		entries, err := os.ReadDir(empty)
		require.NoError(t, err)
		assert.Equal(t, types.LinkTarget, store.Classify(entries))
	})

	t.Run("files_only_is_link_target", func(t *testing.T) {
		flat := filepath.Join(dir, "flat")
		require.NoError(t, os.Mkdir(flat, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(flat, "a.snippet"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(flat, "b.snippet"), []byte("b"), 0644))

		entries, err := os.ReadDir(flat)
		require.NoError(t, err)
		assert.Equal(t, types.LinkTarget, store.Classify(entries))
	})

	t.Run("subdirectory_makes_container", func(t *testing.T) {
		nested := filepath.Join(dir, "nested")
		require.NoError(t, os.MkdirAll(filepath.Join(nested, "child"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "file"), []byte("x"), 0644))

		entries, err := os.ReadDir(nested)
		require.NoError(t, err)
		assert.Equal(t, types.Container, store.Classify(entries))
	})
}
