package models

import (
	"time"

	"github.com/projectmgmt/backend/internal/domain/project"
)

// ProjectModel is the persistence model for projects
type ProjectModel struct {
	ID          int     `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"type:varchar(255);not null"`
	Description *string `gorm:"type:text"`
	StartDate   *time.Time
	EndDate     *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the model to a domain project
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
	}
}

// FromDomain populates the model from a domain project
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.ID = p.ID
	m.Name = p.Name
	m.Description = p.Description
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
}

// ProjectTeamModel links teams to projects
type ProjectTeamModel struct {
	ID        int `gorm:"primaryKey;autoIncrement"`
	ProjectID int `gorm:"not null;index"`
	TeamID    int `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProjectTeamModel) TableName() string {
	return "project_teams"
}

// ToDomain converts the model to a domain link
func (m *ProjectTeamModel) ToDomain() project.ProjectTeam {
	return project.ProjectTeam{ID: m.ID, ProjectID: m.ProjectID, TeamID: m.TeamID}
}
