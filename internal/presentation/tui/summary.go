package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
)

// RunSummary renders a run as markdown, suitable for glamour or plain output.
func RunSummary(run *domain.Run) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s (%s)\n\n", run.Pipeline, run.Status)
	fmt.Fprintf(&sb, "- **Run:** %s\n", run.ID)
	if run.Event.Type != "" {
		fmt.Fprintf(&sb, "- **Event:** %s", run.Event.Type)
		if run.Event.Branch != "" {
			fmt.Fprintf(&sb, " on `%s`", run.Event.Branch)
		}
		sb.WriteString("\n")
	}
	if run.Event.Commit != "" {
		fmt.Fprintf(&sb, "- **Commit:** `%s`\n", run.Event.Commit)
	}
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(&sb, "- **Duration:** %s\n", formatDuration(d))
	}
	if run.Error != "" {
		fmt.Fprintf(&sb, "- **Error:** %s\n", run.Error)
	}

	sb.WriteString("\n## Jobs\n\n")
	sb.WriteString("| Job | Status | Duration |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, job := range run.Jobs {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", job.JobID, job.Status, formatDuration(jobDuration(job)))
	}

	for _, job := range run.Jobs {
		if len(job.Steps) == 0 && job.Error == "" && job.Summary == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", job.JobID)
		if job.Error != "" {
			fmt.Fprintf(&sb, "> %s\n\n", job.Error)
		}
		for _, step := range job.Steps {
			line := fmt.Sprintf("- %s %s", statusSymbols[step.Status], step.Name)
			if step.Status == domain.StatusFailed {
				line += fmt.Sprintf(" (exit %d)", step.ExitCode)
			}
			sb.WriteString(line + "\n")
		}
		if job.Summary != "" {
			sb.WriteString("\n" + strings.TrimRight(job.Summary, "\n") + "\n")
		}
	}

	return sb.String()
}

func jobDuration(j *domain.JobResult) time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
