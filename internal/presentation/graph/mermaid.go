package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/gantry/pkg/domain"
)

// RunOverlay contains run state to visualize on the job graph.
type RunOverlay struct {
	Statuses map[string]domain.Status
}

// OverlayFromRun builds an overlay from a run's job results.
func OverlayFromRun(run *domain.Run) *RunOverlay {
	overlay := &RunOverlay{Statuses: make(map[string]domain.Status, len(run.Jobs))}
	for _, j := range run.Jobs {
		overlay.Statuses[j.JobID] = j.Status
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a pipeline's jobs.
// Jobs are rectangles, annotated with their runner label when one is set,
// and `needs` relationships become directed edges. When an overlay is
// provided, each job is styled by its run status.
func GenerateMermaid(p *domain.Pipeline, overlay *RunOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, job := range p.Jobs {
		safeID := sanitizeMermaidID(job.ID)

		label := fmt.Sprintf("    %s[\"%s\"]\n", safeID, job.DisplayName())
		if job.RunsOn != "" {
			label = fmt.Sprintf("    %s[\"%s <br/> %s\"]\n", safeID, job.DisplayName(), job.RunsOn)
		}
		sb.WriteString(label)

		for _, need := range job.Needs {
			safeFrom := sanitizeMermaidID(need)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeFrom, safeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Status Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef succeeded fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef running fill:#fff8e1,stroke:#f9a825,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eceff1,stroke:#607d8b,stroke-width:1px,color:#000;\n")
		sb.WriteString("    classDef canceled fill:#ede7f6,stroke:#5e35b1,stroke-width:2px,color:#000;\n")

		for _, job := range p.Jobs {
			status, ok := overlay.Statuses[job.ID]
			if !ok || status == domain.StatusQueued {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(job.ID), status))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
