package sync

import (
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Outcome is the per-entry result of a batch sync.
type Outcome struct {
	Entry  types.ManagedEntry
	Result *Result
	Err    error
}

// SyncAll runs SyncOne over every entry. Failures are isolated per entry:
// one entry's I/O error never aborts the rest of the batch.
func (s *Syncer) SyncAll(entries []types.ManagedEntry) []Outcome {
	logger := logging.GetLogger("sync")

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		result, err := s.SyncOne(entry)
		if err != nil {
			logger.Error().
				Err(err).
				Str("system", entry.SystemPath).
				Msg("Entry sync failed, continuing batch")
		}
		outcomes = append(outcomes, Outcome{Entry: entry, Result: result, Err: err})
	}
	return outcomes
}
