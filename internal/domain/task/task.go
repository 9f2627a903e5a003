package task

import (
	"strings"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/shared"
)

// Task is a unit of work inside exactly one project. Author, assignee and
// project references are enforced by the database, not here.
type Task struct {
	ID             int
	Title          string
	Description    *string
	Status         *Status
	Priority       *Priority
	Tags           *string
	StartDate      *time.Time
	DueDate        *time.Time
	Points         *int
	AssignedUserID *int
	AuthorUserID   int
	ProjectID      int

	// Populated according to Include
	Author      *identity.User
	Assignee    *identity.User
	Project     *project.Project
	Comments    []Comment
	Attachments []Attachment
}

// Comment is a note left on a task
type Comment struct {
	ID     int
	Text   string
	TaskID int
	UserID int
}

// Attachment is a file linked to a task
type Attachment struct {
	ID           int
	FileURL      string
	FileName     *string
	TaskID       int
	UploadedByID int
}

// NewTaskParams carries the fields accepted when creating a task
type NewTaskParams struct {
	Title          string
	Description    *string
	Status         *string
	Priority       *string
	Tags           *string
	StartDate      *time.Time
	DueDate        *time.Time
	Points         *int
	AssignedUserID *int
	AuthorUserID   int
	ProjectID      int
}

// NewTask validates params and builds an unsaved task
func NewTask(p NewTaskParams) (*Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, shared.NewValidationError("task title is required")
	}
	if p.ProjectID <= 0 {
		return nil, shared.NewValidationError("task projectId must be a positive integer")
	}
	if p.AuthorUserID <= 0 {
		return nil, shared.NewValidationError("task authorUserId must be a positive integer")
	}
	if p.Points != nil && *p.Points < 0 {
		return nil, shared.NewValidationError("task points cannot be negative")
	}
	if p.StartDate != nil && p.DueDate != nil && p.DueDate.Before(*p.StartDate) {
		return nil, shared.NewValidationError("task due date cannot be before start date")
	}

	t := &Task{
		Title:          title,
		Description:    p.Description,
		Tags:           p.Tags,
		StartDate:      p.StartDate,
		DueDate:        p.DueDate,
		Points:         p.Points,
		AssignedUserID: p.AssignedUserID,
		AuthorUserID:   p.AuthorUserID,
		ProjectID:      p.ProjectID,
	}
	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		t.Status = &st
	}
	if p.Priority != nil {
		pr, err := ParsePriority(*p.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = &pr
	}
	return t, nil
}

// IsCompleted reports whether the task status is Completed in any casing.
// A task without status is not completed.
func (t *Task) IsCompleted() bool {
	return t.Status != nil && t.Status.IsCompleted()
}

// IsOverdue reports whether the due date has passed and the task is open
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.IsCompleted()
}

// Include selects which relations a query loads
type Include struct {
	Author      bool
	Assignee    bool
	Project     bool
	Comments    bool
	Attachments bool
}

// IncludePeople loads author and assignee
var IncludePeople = Include{Author: true, Assignee: true}

// IncludeAll loads author, assignee, comments and attachments
var IncludeAll = Include{Author: true, Assignee: true, Comments: true, Attachments: true}
