package types

import (
	"io/fs"
)

// FS is the filesystem interface required for dotkeep operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Removal and relocation
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// Pather provides the resolved root directories every component operates
// against. Constructed once and passed explicitly; components never consult
// environment state themselves.
type Pather interface {
	// StoreRoot returns the root of the managed store
	StoreRoot() string

	// BackupRoot returns the root of the snapshot tree
	BackupRoot() string

	// StateDir returns the directory for persisted engine state
	StateDir() string
}
