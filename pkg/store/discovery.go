// Package store enumerates the managed store: which entries exist, whether
// their links are intact, and which well-known paths on disk are not yet
// managed. All scans are read-only.
package store

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/sync"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// gitDirName is skipped during walks; the store is expected to be a git
// repository and its metadata is not managed content.
const gitDirName = ".git"

// EnumerateManaged walks the store and derives the set of managed entries.
// Files always emit one entry each; directories emit one entry when
// classified as a link target, and are recursed into when classified as
// containers. The home marker segment is part of the store layout, never
// content, so it is always recursed into.
func EnumerateManaged(fsys types.FS, p *paths.Paths) ([]types.ManagedEntry, error) {
	root := p.StoreRoot()
	if _, err := fsys.Lstat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot access store root %s", root)
	}

	var result []types.ManagedEntry
	if err := walkStore(fsys, p, root, true, &result); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StorePath < result[j].StorePath
	})
	return result, nil
}

func walkStore(fsys types.FS, p *paths.Paths, dir string, isRoot bool, out *[]types.ManagedEntry) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read store directory %s", dir)
	}

	for _, entry := range entries {
		if entry.Name() == gitDirName {
			continue
		}
		childStore := filepath.Join(dir, entry.Name())

		if !entry.IsDir() {
			managed, err := entryFor(p, childStore)
			if err != nil {
				return err
			}
			*out = append(*out, managed)
			continue
		}

		// The marker segment mirrors the home directory itself; linking it
		// as a unit would take over the whole home dir
		if isRoot && entry.Name() == paths.HomeMarker {
			if err := walkStore(fsys, p, childStore, false, out); err != nil {
				return err
			}
			continue
		}

		children, err := fsys.ReadDir(childStore)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read store directory %s", childStore)
		}

		if Classify(children) == types.LinkTarget {
			managed, err := entryFor(p, childStore)
			if err != nil {
				return err
			}
			*out = append(*out, managed)
			continue
		}

		if err := walkStore(fsys, p, childStore, false, out); err != nil {
			return err
		}
	}
	return nil
}

func entryFor(p *paths.Paths, storePath string) (types.ManagedEntry, error) {
	systemPath, err := p.FromStorePath(storePath)
	if err != nil {
		return types.ManagedEntry{}, err
	}
	return types.ManagedEntry{SystemPath: systemPath, StorePath: storePath}, nil
}

// CheckAll partitions entries by link correctness.
func CheckAll(fsys types.FS, entries []types.ManagedEntry) types.AuditReport {
	var report types.AuditReport
	for _, entry := range entries {
		if sync.Check(fsys, entry) == types.LinkCorrect {
			report.Correct = append(report.Correct, entry)
		} else {
			report.Incorrect = append(report.Incorrect, entry)
		}
	}
	return report
}

// Candidate is a well-known path present on disk but not yet managed.
type Candidate struct {
	// Name identifies the owning application
	Name string

	// SystemPath is the absolute on-disk location
	SystemPath string
}

// DiscoverCandidates intersects the suggestion catalog with actual
// filesystem presence and subtracts paths that are already managed.
func DiscoverCandidates(fsys types.FS, p *paths.Paths, suggestions []types.Suggestion, osFamily string) ([]Candidate, error) {
	logger := logging.GetLogger("store")

	managed, err := EnumerateManaged(fsys, p)
	if err != nil {
		return nil, err
	}
	managedSet := make(map[string]bool, len(managed))
	for _, entry := range managed {
		managedSet[entry.SystemPath] = true
	}

	var candidates []Candidate
	for _, suggestion := range suggestions {
		for _, raw := range suggestion.Paths[osFamily] {
			systemPath := p.Expand(raw)
			if managedSet[systemPath] {
				continue
			}
			if _, err := fsys.Lstat(systemPath); err != nil {
				continue
			}
			candidates = append(candidates, Candidate{Name: suggestion.Name, SystemPath: systemPath})
		}
	}

	logger.Debug().
		Str("osFamily", osFamily).
		Int("managed", len(managed)).
		Int("candidates", len(candidates)).
		Msg("Candidate discovery completed")
	return candidates, nil
}
