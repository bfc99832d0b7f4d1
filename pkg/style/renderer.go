package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/store"
	sync "github.com/arthur-debert/dotkeep/pkg/sync"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Renderer turns engine results into terminal output. It performs no
// filesystem access; the display form of every path comes from the
// translator.
type Renderer struct {
	paths *paths.Paths
}

// NewRenderer creates a renderer bound to a Paths instance.
func NewRenderer(p *paths.Paths) *Renderer {
	return &Renderer{paths: p}
}

// RenderEntries renders the managed entry list.
func (r *Renderer) RenderEntries(entries []types.ManagedEntry) string {
	if len(entries) == 0 {
		return Get("Muted").Render("No managed entries")
	}

	var out strings.Builder
	out.WriteString(Get("Title").Render("Managed entries") + "\n\n")
	for _, entry := range entries {
		out.WriteString(fmt.Sprintf("%s %s\n", pterm.Info.Prefix.Text,
			Get("Path").Render(r.paths.Display(entry.StorePath))))
	}
	return strings.TrimRight(out.String(), "\n")
}

// RenderAudit renders a checkAll partition.
func (r *Renderer) RenderAudit(report types.AuditReport) string {
	var out strings.Builder
	out.WriteString(Get("Title").Render("Link status") + "\n\n")

	for _, entry := range report.Correct {
		out.WriteString(fmt.Sprintf("  %s %s\n",
			Get("Success").Render("ok"),
			r.paths.Display(entry.StorePath)))
	}
	for _, entry := range report.Incorrect {
		out.WriteString(fmt.Sprintf("  %s %s\n",
			Get("Error").Render("broken"),
			r.paths.Display(entry.StorePath)))
	}

	out.WriteString("\n")
	summary := fmt.Sprintf("%d managed, %d correct, %d broken",
		report.Total(), len(report.Correct), len(report.Incorrect))
	if len(report.Incorrect) == 0 {
		out.WriteString(Get("Success").Render(summary))
	} else {
		out.WriteString(Get("Warning").Render(summary))
	}
	return out.String()
}

// RenderOutcomes renders the results of a batch sync.
func (r *Renderer) RenderOutcomes(outcomes []sync.Outcome) string {
	var out strings.Builder
	for _, outcome := range outcomes {
		display := r.paths.Display(r.paths.ToStorePath(outcome.Entry.SystemPath))
		switch {
		case outcome.Err != nil:
			out.WriteString(fmt.Sprintf("  %s %s: %v\n", Get("Error").Render("failed"), display, outcome.Err))
		case outcome.Result.Plan == sync.PlanNoop:
			out.WriteString(fmt.Sprintf("  %s %s\n", Get("Muted").Render("unchanged"), display))
		default:
			verb := "linked"
			if outcome.Result.Snapshot != nil {
				verb = "linked (backed up)"
			}
			out.WriteString(fmt.Sprintf("  %s %s\n", Get("Success").Render(verb), display))
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// RenderCandidates renders discovered, not-yet-managed paths.
func (r *Renderer) RenderCandidates(candidates []store.Candidate) string {
	if len(candidates) == 0 {
		return Get("Muted").Render("Nothing new to manage")
	}

	var out strings.Builder
	out.WriteString(Get("Title").Render("Unmanaged configuration found") + "\n\n")
	for _, c := range candidates {
		out.WriteString(fmt.Sprintf("  %s  %s\n", c.Name,
			Get("Path").Render(r.paths.Display(r.paths.ToStorePath(c.SystemPath)))))
	}
	return strings.TrimRight(out.String(), "\n")
}
