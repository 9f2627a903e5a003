package task

import (
	"context"
	"time"
)

// Repository defines persistence for tasks
type Repository interface {
	// FindAll returns every task ordered by id
	FindAll(ctx context.Context, inc Include) ([]Task, error)

	// FindByID returns shared.ErrNotFound when the task does not exist
	FindByID(ctx context.Context, id int, inc Include) (*Task, error)

	// FindByProject returns the tasks of one project
	FindByProject(ctx context.Context, projectID int, inc Include) ([]Task, error)

	// FindByUser returns tasks the user authored or is assigned to
	FindByUser(ctx context.Context, userID int, inc Include) ([]Task, error)

	// FindByAssignee returns tasks assigned to the user
	FindByAssignee(ctx context.Context, userID int, inc Include) ([]Task, error)

	// Create inserts the task and sets its ID
	Create(ctx context.Context, t *Task) error

	// UpdateStatus sets the status and returns the updated task, or
	// shared.ErrNotFound when the task does not exist
	UpdateStatus(ctx context.Context, id int, status Status) (*Task, error)

	// Search matches title or description, case-insensitively
	Search(ctx context.Context, query string) ([]Task, error)

	// FindIDByTitle returns the id of the first task whose title contains title
	FindIDByTitle(ctx context.Context, title string) (id int, found bool, err error)

	// Statistics counts all, completed and overdue tasks as of now
	Statistics(ctx context.Context, now time.Time) (Statistics, error)

	// ProjectStatistics counts the tasks of one project as of now
	ProjectStatistics(ctx context.Context, projectID int, now time.Time) (Statistics, error)
}
