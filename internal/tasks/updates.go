package tasks

import (
	"github.com/wamigrate/wamigrate/internal/models"
)

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase      Phase  // Pipeline phase
	Step       int    // Current step number within the pipeline
	Total      int    // Total steps in the pipeline
	Percentage int    // Overall completion, 0 to 100
	Message    string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	PhasePrepare Phase = iota
	PhaseExport
	PhaseConvert
	PhaseComplete
	PhaseFail
)

func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhaseExport:
		return "export"
	case PhaseConvert:
		return "convert"
	case PhaseComplete:
		return "complete"
	case PhaseFail:
		return "fail"
	default:
		return ""
	}
}

// StatusMessage maps a session status to the display message shown in status
// responses and progress updates.
func StatusMessage(status string) string {
	switch status {
	case models.StatusPreparing:
		return "Preparing data..."
	case models.StatusExporting:
		return "Exporting conversations..."
	case models.StatusConverting:
		return "Converting formats..."
	case models.StatusCompleted:
		return "Migration complete!"
	default:
		return "In progress..."
	}
}

// StageNumber returns the 1-based pipeline step for a status, or 0 for
// failed and unknown statuses.
func StageNumber(status string) int {
	for i, s := range models.PipelineStatuses {
		if s == status {
			return i + 1
		}
	}
	return 0
}

func statusPhase(status string) Phase {
	switch status {
	case models.StatusPreparing:
		return PhasePrepare
	case models.StatusExporting:
		return PhaseExport
	case models.StatusConverting:
		return PhaseConvert
	case models.StatusCompleted:
		return PhaseComplete
	default:
		return PhaseFail
	}
}

func stageUpdate(status string, progress int) ProgressUpdate {
	return ProgressUpdate{
		Phase:      statusPhase(status),
		Step:       StageNumber(status),
		Total:      len(models.PipelineStatuses),
		Percentage: progress,
		Message:    StatusMessage(status),
	}
}

func failedUpdate(progress int, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:      PhaseFail,
		Step:       0,
		Total:      len(models.PipelineStatuses),
		Percentage: progress,
		Message:    reason,
	}
}
