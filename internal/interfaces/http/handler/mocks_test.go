package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindAll(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id int) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Search(ctx context.Context, query string) ([]project.Project, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByMember(ctx context.Context, userID int) ([]project.Project, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindAll(ctx context.Context, inc task.Include) ([]task.Task, error) {
	args := m.Called(ctx, inc)
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id int, inc task.Include) (*task.Task, error) {
	args := m.Called(ctx, id, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByProject(ctx context.Context, projectID int, inc task.Include) ([]task.Task, error) {
	args := m.Called(ctx, projectID, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByUser(ctx context.Context, userID int, inc task.Include) ([]task.Task, error) {
	args := m.Called(ctx, userID, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByAssignee(ctx context.Context, userID int, inc task.Include) ([]task.Task, error) {
	args := m.Called(ctx, userID, inc)
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, id int, status task.Status) (*task.Task, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Search(ctx context.Context, query string) ([]task.Task, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindIDByTitle(ctx context.Context, title string) (int, bool, error) {
	args := m.Called(ctx, title)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockTaskRepository) Statistics(ctx context.Context, now time.Time) (task.Statistics, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(task.Statistics), args.Error(1)
}

func (m *MockTaskRepository) ProjectStatistics(ctx context.Context, projectID int, now time.Time) (task.Statistics, error) {
	args := m.Called(ctx, projectID, now)
	return args.Get(0).(task.Statistics), args.Error(1)
}

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

type stubSigner struct {
	url string
	err error
}

func (s stubSigner) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.url + key, time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
