package types

import (
	"time"
)

// ManagedEntry is one (system path, store path) correspondence under the
// engine's control. Entries are never persisted as a list; they are derived
// by walking the store tree.
type ManagedEntry struct {
	// SystemPath is the absolute path applications actually read
	// (e.g. /home/user/.vimrc)
	SystemPath string

	// StorePath is the mirrored location inside the store, with home paths
	// rewritten under the home marker segment
	StorePath string
}

// RelativeKey returns the entry's store-relative path. It is the stable
// identity used for backup snapshots and metadata.
func (e ManagedEntry) RelativeKey(storeRoot string) string {
	key := e.StorePath
	if len(key) > len(storeRoot) && key[:len(storeRoot)] == storeRoot {
		key = key[len(storeRoot):]
	}
	for len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	return key
}

// LinkStatus is the derived state of a managed entry's system path.
// It is computed fresh on every check, never stored.
type LinkStatus int

const (
	// LinkCorrect means the system path is a symlink resolving exactly to
	// the store path
	LinkCorrect LinkStatus = iota

	// LinkIncorrect means the system path exists but is not that link, or
	// does not exist at all
	LinkIncorrect
)

func (s LinkStatus) String() string {
	if s == LinkCorrect {
		return "correct"
	}
	return "incorrect"
}

// Snapshot is one timestamped, immutable copy of an entry's content taken
// before a mutating operation.
type Snapshot struct {
	// RelativeKey is the owning entry's store-relative path
	RelativeKey string

	// Timestamp is when the snapshot was taken
	Timestamp time.Time

	// ContentPath is the full copy under the backup root
	ContentPath string
}

// Candidacy classifies a store subtree as either one opaque link target or a
// container directory to recurse into.
type Candidacy int

const (
	// LinkTarget means the subtree is linked as a single unit
	LinkTarget Candidacy = iota

	// Container means the directory's children are classified individually
	Container
)

func (c Candidacy) String() string {
	if c == LinkTarget {
		return "link-target"
	}
	return "container"
}

// Suggestion is one well-known configuration location from the static
// catalog, keyed by application.
type Suggestion struct {
	// Name identifies the application (e.g. "vim", "git")
	Name string `yaml:"name"`

	// Kind hints whether the entry is a file or a directory
	Kind string `yaml:"kind"`

	// Paths maps an OS family (linux, macos) to candidate system paths,
	// spelled with a leading ~ for home-relative locations
	Paths map[string][]string `yaml:"paths"`
}

// AuditReport is the partition produced by checking every managed entry.
type AuditReport struct {
	Correct   []ManagedEntry
	Incorrect []ManagedEntry
}

// Total returns the number of entries examined.
func (r AuditReport) Total() int {
	return len(r.Correct) + len(r.Incorrect)
}
