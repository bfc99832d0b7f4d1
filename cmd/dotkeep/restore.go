package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/style"
	"github.com/arthur-debert/dotkeep/pkg/sync"
)

var restoreIndex int

var restoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Restore a path's content from a backup snapshot",
	Long: `Restore content from the backup tree. By default the newest snapshot is
used; --snapshot selects an older one (1 is the second newest, and so on).
If the entry is currently linked, the store content is replaced so the link
keeps working; otherwise the content is placed back at the system path.
Current content is snapshotted first, so a restore is itself reversible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		entry := a.entryFor(args[0])
		relKey := entry.RelativeKey(a.paths.StoreRoot())

		snaps, err := a.backups.ListSnapshots(relKey)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			return fmt.Errorf("no snapshots exist for %s", args[0])
		}
		if restoreIndex < 0 || restoreIndex >= len(snaps) {
			return fmt.Errorf("snapshot index %d out of range, %d snapshots exist", restoreIndex, len(snaps))
		}
		snap := snaps[restoreIndex]

		// The safety snapshot makes the restore itself reversible
		dest := entry.SystemPath
		if sync.IsCorrect(a.fs, entry.StorePath, entry.SystemPath) {
			dest = entry.StorePath
		}
		if _, err := a.fs.Lstat(dest); err == nil {
			if _, err := a.backups.Snapshot(relKey, dest); err != nil {
				return err
			}
		}

		// The safety snapshot may have rotated the chosen one away
		if _, err := a.fs.Lstat(snap.ContentPath); err != nil {
			return fmt.Errorf("snapshot %d was rotated out by the retention policy, pick a newer one", restoreIndex)
		}

		if err := a.backups.Restore(snap, dest); err != nil {
			return err
		}

		fmt.Printf("%s %s from %s\n",
			style.Get("Success").Render("restored"),
			a.paths.Display(entry.StorePath),
			snap.Timestamp.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	restoreCmd.Flags().IntVar(&restoreIndex, "snapshot", 0, "Snapshot to restore, 0 is the newest")
}
