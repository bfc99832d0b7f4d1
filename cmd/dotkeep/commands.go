package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/store"
	"github.com/arthur-debert/dotkeep/pkg/suggestions"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all managed entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		entries, err := store.EnumerateManaged(a.fs, a.paths)
		if err != nil {
			return err
		}
		fmt.Println(a.renderer.RenderEntries(entries))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check every managed entry's link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		entries, err := store.EnumerateManaged(a.fs, a.paths)
		if err != nil {
			return err
		}
		fmt.Println(a.renderer.RenderAudit(store.CheckAll(a.fs, entries)))
		return nil
	},
}

var syncAll bool

var syncCmd = &cobra.Command{
	Use:   "sync [path...]",
	Short: "Drive entries to the linked state",
	Long: `Synchronize the given paths with the store. With --all, every managed
entry whose link is broken is repaired instead. Failures are isolated per
entry; the batch always runs to completion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var entries []types.ManagedEntry
		switch {
		case syncAll:
			managed, err := store.EnumerateManaged(a.fs, a.paths)
			if err != nil {
				return err
			}
			entries = store.CheckAll(a.fs, managed).Incorrect
		case len(args) > 0:
			for _, arg := range args {
				entries = append(entries, a.entryFor(arg))
			}
		default:
			return fmt.Errorf("nothing to sync: pass paths or --all")
		}

		return runBatch(a, entries)
	},
}

var adoptCmd = &cobra.Command{
	Use:   "adopt <path>...",
	Short: "Move paths into the store and link them back",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		entries := make([]types.ManagedEntry, 0, len(args))
		for _, arg := range args {
			entries = append(entries, a.entryFor(arg))
		}
		return runBatch(a, entries)
	},
}

var discoverYes bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find well-known configuration not yet managed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		catalog, err := suggestions.Load()
		if err != nil {
			return err
		}

		candidates, err := store.DiscoverCandidates(a.fs, a.paths, catalog, suggestions.CurrentOSFamily())
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println(a.renderer.RenderCandidates(candidates))
			return nil
		}

		selected := candidates
		if !discoverYes {
			fmt.Println(a.renderer.RenderCandidates(candidates))

			options := make([]string, 0, len(candidates))
			byOption := make(map[string]store.Candidate, len(candidates))
			for _, c := range candidates {
				option := fmt.Sprintf("%s  (%s)", c.Name, c.SystemPath)
				options = append(options, option)
				byOption[option] = c
			}

			chosen, err := pterm.DefaultInteractiveMultiselect.
				WithOptions(options).
				WithDefaultText("Select paths to adopt").
				Show()
			if err != nil {
				return err
			}

			selected = selected[:0]
			for _, option := range chosen {
				selected = append(selected, byOption[option])
			}
		}

		entries := make([]types.ManagedEntry, 0, len(selected))
		for _, c := range selected {
			entries = append(entries, a.entryFor(c.SystemPath))
		}
		if len(entries) == 0 {
			return nil
		}
		return runBatch(a, entries)
	},
}

// runBatch syncs entries and renders per-entry outcomes. Only I/O failures
// make the command exit non-zero; a nothing-to-do entry is surfaced and
// skipped.
func runBatch(a *app, entries []types.ManagedEntry) error {
	outcomes := a.syncer.SyncAll(entries)
	fmt.Println(a.renderer.RenderOutcomes(outcomes))

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil && !errors.IsErrorCode(outcome.Err, errors.ErrNeitherPathExists) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(outcomes))
	}
	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Repair every broken managed entry")
	discoverCmd.Flags().BoolVar(&discoverYes, "yes", false, "Adopt all candidates without prompting")
}
