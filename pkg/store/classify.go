package store

import (
	"io/fs"

	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Classify decides whether a store directory's listing represents one opaque
// link target or a container to recurse into:
//
//   - empty directory: link target (apps whose config dir starts empty)
//   - only files, no subdirectories: link target (e.g. a flat snippets dir)
//   - at least one subdirectory: container
//
// The heuristic is a guess about application layout and can misclassify a
// genuinely empty container; it is applied consistently so discovery and
// sync always agree on entry boundaries. Operators can override grouping by
// adopting a deeper path explicitly.
func Classify(entries []fs.DirEntry) types.Candidacy {
	for _, entry := range entries {
		if entry.IsDir() {
			return types.Container
		}
	}
	return types.LinkTarget
}
