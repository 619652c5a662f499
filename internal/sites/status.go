package sites

import (
	"sort"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

// allTasksCompleteLabel is the phase shown once every checklist task is done.
const allTasksCompleteLabel = "All major tasks complete."

const workingOnPrefix = "Working on: "

// DefaultTaskTemplate is the checklist every new site starts with, in build
// order. Tasks are only ever toggled afterward, never added or removed.
var DefaultTaskTemplate = []string{
	"Site Preparation",
	"Foundation",
	"Framing & Structure",
	"Roofing",
	"Electrical & Plumbing",
	"Interior Finishing",
	"Final Inspection",
}

// DerivePhase computes the human-readable phase label from the checklist:
// the first pending task in position order, or the completion label when
// nothing is pending.
func DerivePhase(tasks []models.SiteTask) string {
	ordered := make([]models.SiteTask, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	for _, task := range ordered {
		if !task.IsCompleted {
			return workingOnPrefix + task.Name
		}
	}
	return allTasksCompleteLabel
}

// AllTasksComplete reports whether every task in the checklist is done.
// An empty checklist counts as complete, matching DerivePhase.
func AllTasksComplete(tasks []models.SiteTask) bool {
	for _, task := range tasks {
		if !task.IsCompleted {
			return false
		}
	}
	return true
}
