package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotkeep/pkg/errors"
)

// metadata maps each managed relative key to the time of its last snapshot.
// Persisted as a JSON object of ISO-8601 timestamps; it exists solely to
// implement the once-per-day rule.
type metadata map[string]time.Time

func (m *Manager) loadMetadata() (metadata, error) {
	data, err := m.fs.ReadFile(m.paths.MetadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return metadata{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrMetadataLoad, "failed to read backup metadata")
	}

	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrMetadataLoad, "failed to parse backup metadata")
	}

	meta := metadata{}
	for key, value := range raw {
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			// A malformed record only disables the daily dedup for that key
			continue
		}
		meta[key] = ts
	}
	return meta, nil
}

func (m *Manager) saveMetadata(meta metadata) error {
	raw := map[string]string{}
	for key, ts := range meta {
		raw[key] = ts.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrMetadataSave, "failed to encode backup metadata")
	}

	path := m.paths.MetadataPath()
	if err := m.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrMetadataSave, "failed to create state directory")
	}
	if err := m.fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrMetadataSave, "failed to write backup metadata")
	}
	return nil
}

// recordBackup updates the last-backup record for the key. Called only after
// the physical snapshot write has succeeded.
func (m *Manager) recordBackup(relKey string, ts time.Time) error {
	meta, err := m.loadMetadata()
	if err != nil {
		return err
	}
	meta[relKey] = ts
	return m.saveMetadata(meta)
}
