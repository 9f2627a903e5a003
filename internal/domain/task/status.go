package task

import (
	"strings"

	"github.com/projectmgmt/backend/internal/domain/shared"
	"golang.org/x/text/cases"
)

// Status is the workflow state of a task. Stored values are not guaranteed
// to be canonical, so comparisons go through fold.
type Status string

const (
	StatusToDo           Status = "To Do"
	StatusWorkInProgress Status = "Work In Progress"
	StatusUnderReview    Status = "Under Review"
	StatusCompleted      Status = "Completed"
)

// Priority ranks a task
type Priority string

const (
	PriorityUrgent  Priority = "Urgent"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
	PriorityBacklog Priority = "Backlog"
)

// fold builds a new Caser per call because a Caser is not safe for concurrent use
func fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

var statusByFold = map[string]Status{
	fold(string(StatusToDo)):           StatusToDo,
	fold(string(StatusWorkInProgress)): StatusWorkInProgress,
	"in progress":                      StatusWorkInProgress,
	fold(string(StatusUnderReview)):    StatusUnderReview,
	fold(string(StatusCompleted)):      StatusCompleted,
}

var priorityByFold = map[string]Priority{
	fold(string(PriorityUrgent)):  PriorityUrgent,
	fold(string(PriorityHigh)):    PriorityHigh,
	fold(string(PriorityMedium)):  PriorityMedium,
	fold(string(PriorityLow)):     PriorityLow,
	fold(string(PriorityBacklog)): PriorityBacklog,
}

// ParseStatus returns the canonical status for s. "In Progress" is accepted
// as an alias of "Work In Progress"; case and extra spaces are ignored.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusByFold[fold(s)]; ok {
		return st, nil
	}
	return "", shared.NewValidationError("invalid task status %q", s)
}

// ParsePriority returns the canonical priority for p, ignoring case
func ParsePriority(p string) (Priority, error) {
	if pr, ok := priorityByFold[fold(p)]; ok {
		return pr, nil
	}
	return "", shared.NewValidationError("invalid task priority %q", p)
}

// IsCompleted compares against Completed without regard to case
func (s Status) IsCompleted() bool {
	return fold(string(s)) == fold(string(StatusCompleted))
}

// Statuses lists the canonical statuses in workflow order
func Statuses() []Status {
	return []Status{StatusToDo, StatusWorkInProgress, StatusUnderReview, StatusCompleted}
}

// Priorities lists the canonical priorities from most to least pressing
func Priorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow, PriorityBacklog}
}
