package identity

import (
	"context"

	"github.com/projectmgmt/backend/internal/domain/identity"
)

// TeamService serves the team endpoints
type TeamService struct {
	repo identity.TeamRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(repo identity.TeamRepository) *TeamService {
	return &TeamService{repo: repo}
}

// List returns every team with owner and manager usernames
func (s *TeamService) List(ctx context.Context) ([]TeamResponse, error) {
	teams, err := s.repo.FindAllWithLeads(ctx)
	if err != nil {
		return nil, err
	}
	return ToTeamResponses(teams), nil
}
