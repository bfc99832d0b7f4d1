// Package backup produces timestamped, content-complete snapshots of managed
// paths before they are mutated, and enforces the retention policy: at most
// one snapshot per calendar day per entry, at most RetentionLimit snapshots
// overall.
package backup

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

const (
	// BackupSuffix is the fixed marker ending every snapshot name
	BackupSuffix = "backup"

	// TimestampFormat is the zero-padded filename timestamp. Fixed width, so
	// snapshot names sort lexicographically newest-last.
	TimestampFormat = "20060102150405"
)

// Manager owns the snapshot tree and the last-backup metadata record.
type Manager struct {
	fs    types.FS
	paths *paths.Paths
	limit int

	// Clock supplies the current time. Tests substitute it to simulate days.
	Clock func() time.Time
}

// NewManager creates a backup manager with the given retention limit.
func NewManager(fs types.FS, p *paths.Paths, retentionLimit int) *Manager {
	return &Manager{
		fs:    fs,
		paths: p,
		limit: retentionLimit,
		Clock: time.Now,
	}
}

// ShouldBackupToday reports whether the daily de-duplication rule permits a
// new snapshot for the given key: true when no prior snapshot is recorded or
// the recorded one is from a different calendar day.
func (m *Manager) ShouldBackupToday(relKey string) (bool, error) {
	meta, err := m.loadMetadata()
	if err != nil {
		return false, err
	}

	last, ok := meta[relKey]
	if !ok {
		return true, nil
	}

	now := m.Clock()
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2, nil
}

// Snapshot copies contentPath into the backup tree under relKey. The copy is
// written first, then rotation runs, then the metadata record is updated, so
// a crash mid-sequence at worst leaves one extra snapshot for the next run to
// rotate away. It never loses content.
func (m *Manager) Snapshot(relKey, contentPath string) (*types.Snapshot, error) {
	logger := logging.GetLogger("backup")
	now := m.Clock()

	destDir := filepath.Join(m.paths.BackupRoot(), filepath.Dir(relKey))
	if err := m.fs.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", destDir)
	}

	name := snapshotName(filepath.Base(relKey), now)
	destPath := filepath.Join(destDir, name)

	if err := filesystem.CopyPath(m.fs, contentPath, destPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupWrite, "failed to write snapshot for %s", relKey)
	}

	logger.Info().
		Str("key", relKey).
		Str("snapshot", destPath).
		Msg("Snapshot written")

	// Rotation failures cost disk space, not correctness
	if err := m.rotate(relKey); err != nil {
		logger.Warn().Err(err).Str("key", relKey).Msg("Snapshot rotation failed")
	}

	if err := m.recordBackup(relKey, now); err != nil {
		return nil, err
	}

	return &types.Snapshot{
		RelativeKey: relKey,
		Timestamp:   now.Truncate(time.Second),
		ContentPath: destPath,
	}, nil
}

// ListSnapshots returns all snapshots for the key, newest first.
func (m *Manager) ListSnapshots(relKey string) ([]types.Snapshot, error) {
	dir := filepath.Join(m.paths.BackupRoot(), filepath.Dir(relKey))
	base := filepath.Base(relKey)

	entries, err := m.fs.ReadDir(dir)
	if err != nil {
		// No backup directory means no snapshots yet
		return nil, nil
	}

	var snaps []types.Snapshot
	for _, entry := range entries {
		ts, ok := parseSnapshotName(base, entry.Name())
		if !ok {
			continue
		}
		snaps = append(snaps, types.Snapshot{
			RelativeKey: relKey,
			Timestamp:   ts,
			ContentPath: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Restore copies a snapshot's content back to destPath, replacing whatever
// is there. Callers are expected to take a fresh snapshot of the current
// content first when it exists.
func (m *Manager) Restore(snap types.Snapshot, destPath string) error {
	if _, err := m.fs.Lstat(destPath); err == nil {
		if err := m.fs.RemoveAll(destPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear %s before restore", destPath)
		}
	}

	if err := m.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", destPath)
	}

	if err := filesystem.CopyPath(m.fs, snap.ContentPath, destPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to restore snapshot to %s", destPath)
	}
	return nil
}

// rotate deletes the oldest snapshots for the key until at most limit remain.
func (m *Manager) rotate(relKey string) error {
	snaps, err := m.ListSnapshots(relKey)
	if err != nil {
		return err
	}

	for i := m.limit; i < len(snaps); i++ {
		if err := m.fs.RemoveAll(snaps[i].ContentPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to delete old snapshot %s", snaps[i].ContentPath)
		}
	}
	return nil
}

func snapshotName(base string, ts time.Time) string {
	return base + "." + ts.Format(TimestampFormat) + "." + BackupSuffix
}

// parseSnapshotName extracts the timestamp from a snapshot filename of the
// form <base>.<timestamp>.backup.
func parseSnapshotName(base, name string) (time.Time, bool) {
	if !strings.HasPrefix(name, base+".") || !strings.HasSuffix(name, "."+BackupSuffix) {
		return time.Time{}, false
	}
	middle := strings.TrimSuffix(strings.TrimPrefix(name, base+"."), "."+BackupSuffix)
	ts, err := time.ParseInLocation(TimestampFormat, middle, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
