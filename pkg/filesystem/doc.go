// Package filesystem provides the OS-backed implementation of types.FS.
// All engine components take an FS value rather than calling the os package
// directly, so tests can run against temporary trees without touching global
// state.
package filesystem
