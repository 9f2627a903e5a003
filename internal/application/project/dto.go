package project

import (
	"time"

	"github.com/projectmgmt/backend/internal/domain/project"
)

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// ProjectResponse is the JSON shape of a project
type ProjectResponse struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// ToProjectResponse converts a domain project
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
}

// ToProjectResponses converts a slice, never returning nil
func ToProjectResponses(projects []project.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out
}
