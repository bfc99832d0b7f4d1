package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/types"
)

// CopyPath copies src to dst: files directly, directories recursively
// preserving structure and modes, symlinks inside directories as links.
func CopyPath(fsys types.FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", src, err)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(fsys, src, dst)
	case info.IsDir():
		return copyDir(fsys, src, dst, info.Mode().Perm())
	default:
		return copyFile(fsys, src, dst, info.Mode().Perm())
	}
}

func copyFile(fsys types.FS, src, dst string, perm fs.FileMode) error {
	content, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", src, err)
	}
	if err := fsys.WriteFile(dst, content, perm); err != nil {
		return fmt.Errorf("cannot write %s: %w", dst, err)
	}
	return nil
}

func copyDir(fsys types.FS, src, dst string, perm fs.FileMode) error {
	if err := fsys.MkdirAll(dst, perm); err != nil {
		return fmt.Errorf("cannot create %s: %w", dst, err)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", src, err)
	}

	for _, entry := range entries {
		if err := CopyPath(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copySymlink(fsys types.FS, src, dst string) error {
	target, err := fsys.Readlink(src)
	if err != nil {
		return fmt.Errorf("cannot read link %s: %w", src, err)
	}
	if err := fsys.Symlink(target, dst); err != nil {
		return fmt.Errorf("cannot create link %s: %w", dst, err)
	}
	return nil
}
