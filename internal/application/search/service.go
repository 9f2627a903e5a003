// Package search implements the cross-entity keyword search.
package search

import (
	"context"

	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	apptask "github.com/projectmgmt/backend/internal/application/task"
	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Results groups matches by entity. Every list is non-nil.
type Results struct {
	Tasks    []apptask.TaskResponse       `json:"tasks"`
	Projects []appproject.ProjectResponse `json:"projects"`
	Users    []appidentity.UserResponse   `json:"users"`
}

// SearchService matches a keyword against tasks, projects and users
type SearchService struct {
	tasks    task.Repository
	projects project.Repository
	users    identity.UserRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(tasks task.Repository, projects project.Repository, users identity.UserRepository) *SearchService {
	return &SearchService{tasks: tasks, projects: projects, users: users}
}

// Search runs the three lookups in order. An empty query matches everything.
func (s *SearchService) Search(ctx context.Context, query string) (*Results, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "search", "query", telemetry.SpanAttrQuery.String(query))
	defer span.End()

	tasks, err := s.tasks.Search(ctx, query)
	if err != nil {
		return nil, fail(span, err)
	}
	projects, err := s.projects.Search(ctx, query)
	if err != nil {
		return nil, fail(span, err)
	}
	users, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("results.tasks", len(tasks)),
		attribute.Int("results.projects", len(projects)),
		attribute.Int("results.users", len(users)),
	)

	return &Results{
		Tasks:    apptask.ToTaskResponses(tasks, task.Include{}),
		Projects: appproject.ToProjectResponses(projects),
		Users:    appidentity.ToUserResponses(users),
	}, nil
}

func fail(span trace.Span, err error) error {
	telemetry.RecordError(span, err)
	return err
}
