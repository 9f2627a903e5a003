package project

import (
	"context"
	"errors"

	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProjectService serves the project endpoints
type ProjectService struct {
	repo project.Repository
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo project.Repository) *ProjectService {
	return &ProjectService{repo: repo}
}

// List returns every project
func (s *ProjectService) List(ctx context.Context) ([]ProjectResponse, error) {
	projects, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToProjectResponses(projects), nil
}

// GetByID returns the project as a one-element list, or an empty list when
// it does not exist. Callers of GET /projects?id= expect an array.
func (s *ProjectService) GetByID(ctx context.Context, id int) ([]ProjectResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []ProjectResponse{}, nil
		}
		return nil, err
	}
	return []ProjectResponse{ToProjectResponse(p)}, nil
}

// Create validates and stores a new project
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	p, err := project.NewProject(req.Name, req.Description, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Project created", zap.Int("project_id", p.ID))
	resp := ToProjectResponse(p)
	return &resp, nil
}
