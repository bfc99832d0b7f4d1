// Package paths provides centralized path handling for dotkeep.
// It owns the bidirectional mapping between real filesystem locations and
// their canonical spot inside the managed store, plus resolution of the
// store, backup and state roots.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotkeep/pkg/errors"
)

// Environment variable names
const (
	// EnvStoreRoot is the primary environment variable for the store location
	EnvStoreRoot = "DOTKEEP_STORE_ROOT"

	// EnvBackupRoot overrides the backup root
	EnvBackupRoot = "DOTKEEP_BACKUP_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Layout constants.
// IMPORTANT: these define dotkeep's on-disk structure and are NOT
// user-configurable. They must remain consistent across installations so a
// store cloned onto a new machine keeps working. User-configurable paths
// belong in pkg/config.
const (
	// DotkeepDirName is the directory name for dotkeep-specific files
	DotkeepDirName = "dotkeep"

	// HomeMarker is the reserved store segment standing in for the user's
	// home directory, so the mapping is reversible without consulting
	// environment state at read time
	HomeMarker = "__home__"

	// StoreDirName is the default store directory under XDG data
	StoreDirName = "store"

	// BackupDirName is the default backup directory under XDG data
	BackupDirName = "backups"

	// MetadataFileName is the backup metadata record store
	MetadataFileName = "backups.json"
)

// Paths resolves and translates every path the engine touches. Constructed
// once and passed explicitly into each component.
type Paths struct {
	storeRoot  string
	backupRoot string
	stateDir   string
	homeDir    string
}

// New creates a Paths instance. Empty storeRoot/backupRoot fall back to
// environment variables, then to XDG data defaults.
func New(storeRoot, backupRoot string) (*Paths, error) {
	homeDir, err := HomeDirectory()
	if err != nil {
		return nil, err
	}

	if storeRoot == "" {
		storeRoot = os.Getenv(EnvStoreRoot)
	}
	if storeRoot == "" {
		storeRoot = filepath.Join(xdg.DataHome, DotkeepDirName, StoreDirName)
	}

	if backupRoot == "" {
		backupRoot = os.Getenv(EnvBackupRoot)
	}
	if backupRoot == "" {
		backupRoot = filepath.Join(xdg.DataHome, DotkeepDirName, BackupDirName)
	}

	// XDG doesn't reload env after init, so honor XDG_STATE_HOME manually
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}

	p := &Paths{
		homeDir:  homeDir,
		stateDir: filepath.Join(stateHome, DotkeepDirName),
	}

	if p.storeRoot, err = absolute(expandHome(storeRoot, homeDir)); err != nil {
		return nil, err
	}
	if p.backupRoot, err = absolute(expandHome(backupRoot, homeDir)); err != nil {
		return nil, err
	}

	return p, nil
}

func absolute(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", path)
	}
	return filepath.Clean(abs), nil
}

// StoreRoot returns the root of the managed store
func (p *Paths) StoreRoot() string {
	return p.storeRoot
}

// BackupRoot returns the root of the snapshot tree
func (p *Paths) BackupRoot() string {
	return p.backupRoot
}

// StateDir returns the directory for persisted engine state
func (p *Paths) StateDir() string {
	return p.stateDir
}

// HomeDir returns the home directory captured at construction
func (p *Paths) HomeDir() string {
	return p.homeDir
}

// MetadataPath returns the path of the backup metadata file
func (p *Paths) MetadataPath() string {
	return filepath.Join(p.stateDir, MetadataFileName)
}

// ToStorePath maps an absolute system path to its canonical location inside
// the store. Home-relative paths are rewritten under the HomeMarker segment;
// other absolute paths are mirrored by stripping the leading separator. This
// is a pure string transformation, no filesystem access.
func (p *Paths) ToStorePath(systemPath string) string {
	cleaned := filepath.Clean(systemPath)

	if rel, ok := relativeTo(cleaned, p.homeDir); ok {
		if rel == "." {
			return filepath.Join(p.storeRoot, HomeMarker)
		}
		return filepath.Join(p.storeRoot, HomeMarker, rel)
	}

	return filepath.Join(p.storeRoot, strings.TrimPrefix(cleaned, string(filepath.Separator)))
}

// FromStorePath is the inverse of ToStorePath: given a path under the store
// root, it reconstructs the original system path.
func (p *Paths) FromStorePath(storePath string) (string, error) {
	rel, err := filepath.Rel(p.storeRoot, filepath.Clean(storePath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Newf(errors.ErrInvalidInput, "path %s is not under the store root", storePath)
	}
	return p.ExpandKey(rel), nil
}

// ExpandKey resolves a store-relative key to an absolute system path.
// A leading HomeMarker segment becomes the home directory; anything else is
// mirrored back under the filesystem root.
func (p *Paths) ExpandKey(key string) string {
	key = filepath.Clean(key)
	if key == HomeMarker {
		return p.homeDir
	}
	if strings.HasPrefix(key, HomeMarker+string(filepath.Separator)) {
		return filepath.Join(p.homeDir, strings.TrimPrefix(key, HomeMarker+string(filepath.Separator)))
	}
	return string(filepath.Separator) + key
}

// Expand resolves operator-supplied input to an absolute system path.
// A leading ~ expands to the home directory, a leading HomeMarker segment is
// resolved the same way, and absolute paths pass through unchanged.
func (p *Paths) Expand(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		return expandHome(path, p.homeDir)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return p.ExpandKey(path)
}

// Display renders a store path for presentation: the HomeMarker segment
// collapses to ~. Never used for filesystem operations.
func (p *Paths) Display(storePath string) string {
	rel, err := filepath.Rel(p.storeRoot, filepath.Clean(storePath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return storePath
	}
	if rel == HomeMarker {
		return "~"
	}
	if strings.HasPrefix(rel, HomeMarker+string(filepath.Separator)) {
		return "~" + string(filepath.Separator) + strings.TrimPrefix(rel, HomeMarker+string(filepath.Separator))
	}
	return string(filepath.Separator) + rel
}

// RelativeKey returns the store-relative key for a system path. It is the
// stable identity used for backup snapshots.
func (p *Paths) RelativeKey(systemPath string) string {
	store := p.ToStorePath(systemPath)
	rel, err := filepath.Rel(p.storeRoot, store)
	if err != nil {
		return store
	}
	return rel
}

// relativeTo returns path relative to base when path is inside base.
func relativeTo(path, base string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// expandHome expands a leading ~ against the given home directory
func expandHome(path, homeDir string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~something (not the user's home)
	return path
}

// HomeDirectory returns the user's home directory with proper error handling
func HomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
