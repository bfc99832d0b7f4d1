package main

import (
	"github.com/arthur-debert/dotkeep/pkg/backup"
	"github.com/arthur-debert/dotkeep/pkg/config"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/style"
	"github.com/arthur-debert/dotkeep/pkg/sync"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// app wires the engine components together once per command invocation.
type app struct {
	cfg      *config.Config
	paths    *paths.Paths
	fs       types.FS
	backups  *backup.Manager
	syncer   *sync.Syncer
	renderer *style.Renderer
}

func newApp() (*app, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	p, err := paths.New(cfg.StoreRoot, cfg.BackupRoot)
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewOS()
	backups := backup.NewManager(fs, p, cfg.RetentionLimit)

	return &app{
		cfg:      cfg,
		paths:    p,
		fs:       fs,
		backups:  backups,
		syncer:   sync.NewSyncer(fs, p, backups),
		renderer: style.NewRenderer(p),
	}, nil
}

// entryFor builds the managed entry for an operator-supplied path.
func (a *app) entryFor(raw string) types.ManagedEntry {
	systemPath := a.paths.Expand(raw)
	return types.ManagedEntry{
		SystemPath: systemPath,
		StorePath:  a.paths.ToStorePath(systemPath),
	}
}
