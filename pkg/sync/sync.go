// Package sync drives a managed entry to the converged "linked" state: the
// store holds the canonical content and the system path is a symlink to it.
// The decision of what to do is a pure function over three existence checks;
// execution is ordered backup, move, unlink, link, so an interrupted run is
// always safe to re-run.
package sync

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/backup"
	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Plan is the action SyncOne will take for an entry.
type Plan int

const (
	// PlanImpossible means neither path exists; there is nothing to do
	PlanImpossible Plan = iota

	// PlanNoop means the entry is already correctly linked
	PlanNoop

	// PlanMigrate means system content is the source of truth: back it up,
	// move it into the store, then link
	PlanMigrate

	// PlanRelink means the store already holds canonical content; skip
	// backup and move, go straight to link creation
	PlanRelink
)

func (p Plan) String() string {
	switch p {
	case PlanNoop:
		return "noop"
	case PlanMigrate:
		return "migrate"
	case PlanRelink:
		return "relink"
	default:
		return "impossible"
	}
}

// Decide maps the existence checks to a plan. Pure, so the state table can
// be tested without a filesystem.
func Decide(systemExists, storeExists, linkCorrect bool) Plan {
	switch {
	case !systemExists && !storeExists:
		return PlanImpossible
	case systemExists && storeExists && linkCorrect:
		return PlanNoop
	case systemExists:
		// Covers both first-time migration and repairing an incorrect link
		return PlanMigrate
	default:
		return PlanRelink
	}
}

// Result reports what SyncOne did for an entry.
type Result struct {
	Entry    types.ManagedEntry
	Plan     Plan
	Snapshot *types.Snapshot
}

// Syncer executes sync operations against a filesystem.
type Syncer struct {
	fs      types.FS
	paths   *paths.Paths
	backups *backup.Manager
}

// NewSyncer creates a Syncer.
func NewSyncer(fsys types.FS, p *paths.Paths, backups *backup.Manager) *Syncer {
	return &Syncer{fs: fsys, paths: p, backups: backups}
}

// SyncOne drives one entry to the linked state. The only caller-correctable
// error is ErrNeitherPathExists; everything else is an I/O failure for this
// entry and callers working through a batch should catch it and continue.
func (s *Syncer) SyncOne(entry types.ManagedEntry) (*Result, error) {
	logger := logging.GetLogger("sync")

	systemInfo, systemErr := s.fs.Lstat(entry.SystemPath)
	systemExists := systemErr == nil
	_, storeErr := s.fs.Lstat(entry.StorePath)
	storeExists := storeErr == nil
	linkCorrect := IsCorrect(s.fs, entry.StorePath, entry.SystemPath)

	plan := Decide(systemExists, storeExists, linkCorrect)

	logger.Debug().
		Str("system", entry.SystemPath).
		Str("store", entry.StorePath).
		Bool("systemExists", systemExists).
		Bool("storeExists", storeExists).
		Str("plan", plan.String()).
		Msg("Sync decision")

	result := &Result{Entry: entry, Plan: plan}

	switch plan {
	case PlanImpossible:
		return nil, errors.Newf(errors.ErrNeitherPathExists,
			"neither %s nor its store entry exist, nothing to synchronize", entry.SystemPath)

	case PlanNoop:
		return result, nil

	case PlanMigrate:
		snap, err := s.migrate(entry, systemInfo)
		if err != nil {
			return nil, err
		}
		result.Snapshot = snap

	case PlanRelink:
		// Store content is canonical, nothing to move
	}

	if err := s.link(entry); err != nil {
		return nil, err
	}

	logger.Info().
		Str("system", entry.SystemPath).
		Str("store", entry.StorePath).
		Str("plan", plan.String()).
		Msg("Entry synchronized")
	return result, nil
}

// migrate backs up the entry's effective content and moves it into the
// store. A failed backup aborts before the system path is touched, so a
// backup failure can never lose content.
func (s *Syncer) migrate(entry types.ManagedEntry, systemInfo fs.FileInfo) (*types.Snapshot, error) {
	content, hasContent := s.resolveContentSource(entry.SystemPath, systemInfo)
	if !hasContent {
		// Dangling symlink at the system path: nothing worth migrating,
		// the link step will replace it
		return nil, nil
	}
	if filepath.Clean(content) == filepath.Clean(entry.StorePath) {
		// The system path already resolves into the store through an
		// indirect link; moving the store onto itself would destroy it
		return nil, nil
	}

	relKey := entry.RelativeKey(s.paths.StoreRoot())

	var snap *types.Snapshot
	due, err := s.backups.ShouldBackupToday(relKey)
	if err != nil {
		return nil, err
	}
	if due {
		snap, err = s.backups.Snapshot(relKey, content)
		if err != nil {
			return nil, err
		}
	}

	if err := s.fs.MkdirAll(filepath.Dir(entry.StorePath), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create store parent for %s", entry.StorePath)
	}
	if _, err := s.fs.Lstat(entry.StorePath); err == nil {
		if err := s.fs.RemoveAll(entry.StorePath); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to clear store path %s", entry.StorePath)
		}
	}
	if err := filesystem.CopyPath(s.fs, content, entry.StorePath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileCopy, "failed to move %s into the store", content)
	}
	if err := s.fs.RemoveAll(content); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove migrated content %s", content)
	}

	return snap, nil
}

// resolveContentSource returns the path whose content should be migrated.
// When the system path is itself a symlink it is followed to its real
// target, so the content, not the link, gets backed up and moved.
func (s *Syncer) resolveContentSource(systemPath string, info fs.FileInfo) (string, bool) {
	if info.Mode()&fs.ModeSymlink == 0 {
		return systemPath, true
	}

	target, err := s.fs.Readlink(systemPath)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(systemPath), target)
	}
	if _, err := s.fs.Stat(target); err != nil {
		return "", false
	}
	return filepath.Clean(target), true
}

// link is the unconditional final step: ensure the store parent exists,
// remove whatever occupies the system path, create the symlink. Idempotent,
// so repeated invocations converge.
func (s *Syncer) link(entry types.ManagedEntry) error {
	if err := s.fs.MkdirAll(filepath.Dir(entry.StorePath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create store parent for %s", entry.StorePath)
	}
	if err := s.fs.MkdirAll(filepath.Dir(entry.SystemPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent for %s", entry.SystemPath)
	}

	if _, err := s.fs.Lstat(entry.SystemPath); err == nil {
		if err := s.fs.RemoveAll(entry.SystemPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s before linking", entry.SystemPath)
		}
	}

	if err := s.fs.Symlink(entry.StorePath, entry.SystemPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s to %s", entry.SystemPath, entry.StorePath)
	}
	return nil
}
