package project

import (
	"strings"
	"time"

	"github.com/projectmgmt/backend/internal/domain/shared"
)

// Project is a named container of tasks. A project with an end date is
// considered completed; there is no stored status.
type Project struct {
	ID          int
	Name        string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// NewProject validates and builds a project that has not been persisted yet
func NewProject(name string, description *string, startDate, endDate *time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("project name is required")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, shared.NewValidationError("project end date cannot be before start date")
	}
	return &Project{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
	}, nil
}

// IsCompleted reports whether the project has an end date
func (p *Project) IsCompleted() bool {
	return p.EndDate != nil
}

// ProjectTeam links a team to a project
type ProjectTeam struct {
	ID        int
	ProjectID int
	TeamID    int
}
