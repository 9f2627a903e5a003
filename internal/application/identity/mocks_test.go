package identity

import (
	"context"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByCognitoID(ctx context.Context, cognitoID string) (*identity.User, error) {
	args := m.Called(ctx, cognitoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByTeam(ctx context.Context, teamID int) ([]identity.User, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByProject(ctx context.Context, projectID int) ([]identity.User, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string) ([]identity.User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) FindAllWithLeads(ctx context.Context) ([]identity.TeamWithLeads, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.TeamWithLeads), args.Error(1)
}

func (m *MockTeamRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
