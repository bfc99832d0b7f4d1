package sync

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/types"
)

// IsCorrect reports whether systemPath is currently a symlink resolving
// exactly to storePath. A relative link target is resolved against the
// symlink's own directory. There is no normalization beyond that: a link
// pointing at an equivalent-but-differently-spelled path is reported as
// incorrect. Documented limitation, not a bug.
func IsCorrect(fsys types.FS, storePath, systemPath string) bool {
	info, err := fsys.Lstat(systemPath)
	if err != nil {
		return false
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return false
	}

	target, err := fsys.Readlink(systemPath)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(systemPath), target)
	}

	return filepath.Clean(target) == filepath.Clean(storePath)
}

// Check derives the entry's link state. Computed fresh on every call, never
// stored.
func Check(fsys types.FS, entry types.ManagedEntry) types.LinkStatus {
	if IsCorrect(fsys, entry.StorePath, entry.SystemPath) {
		return types.LinkCorrect
	}
	return types.LinkIncorrect
}
