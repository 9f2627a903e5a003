package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

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
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByAssignee(ctx context.Context, userID int, inc task.Include) ([]task.Task, error) {
	args := m.Called(ctx, userID, inc)
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
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

func strPtr(s string) *string { return &s }

func TestTaskService_ListByProject(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	repo.On("FindByProject", ctx, 1, task.IncludeAll).Return([]task.Task{
		{
			ID:           1,
			Title:        "Design schema",
			ProjectID:    1,
			AuthorUserID: 1,
			Author:       &identity.User{UserID: 1, Username: "alice"},
			Comments:     []task.Comment{{ID: 1, Text: "looks good", TaskID: 1, UserID: 2}},
		},
	}, nil)

	got, err := NewTaskService(repo).ListByProject(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Author.Username)
	assert.Nil(t, got[0].Assignee)
	require.NotNil(t, got[0].Comments)
	assert.Len(t, *got[0].Comments, 1)
	require.NotNil(t, got[0].Attachments)
	assert.Empty(t, *got[0].Attachments)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"attachments":[]`)
}

func TestTaskService_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	repo.On("FindByUser", ctx, 2, task.IncludePeople).Return([]task.Task{{ID: 3, Title: "Write docs"}}, nil)

	got, err := NewTaskService(repo).ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "comments")
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("canonicalises status", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*task.Task")).
			Run(func(args mock.Arguments) { args.Get(1).(*task.Task).ID = 10 }).
			Return(nil)

		got, err := NewTaskService(repo).Create(ctx, CreateTaskRequest{
			Title:        "Ship it",
			Status:       strPtr("in progress"),
			ProjectID:    1,
			AuthorUserID: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 10, got.ID)
		assert.Equal(t, "Work In Progress", *got.Status)
	})

	t.Run("invalid input never reaches the repository", func(t *testing.T) {
		repo := new(MockTaskRepository)

		_, err := NewTaskService(repo).Create(ctx, CreateTaskRequest{Title: "x", ProjectID: 0, AuthorUserID: 1})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("fk violation"))

		_, err := NewTaskService(repo).Create(ctx, CreateTaskRequest{Title: "x", ProjectID: 99, AuthorUserID: 1})
		assert.EqualError(t, err, "fk violation")
	})
}

func TestTaskService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates", func(t *testing.T) {
		repo := new(MockTaskRepository)
		done := task.StatusCompleted
		repo.On("UpdateStatus", mock.Anything, 4, task.StatusCompleted).Return(&task.Task{ID: 4, Status: &done}, nil)

		got, err := NewTaskService(repo).UpdateStatus(ctx, 4, UpdateTaskStatusRequest{Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, "Completed", *got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("repository sees the service span", func(t *testing.T) {
		sr := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
		original := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		t.Cleanup(func() {
			otel.SetTracerProvider(original)
			_ = tp.Shutdown(context.Background())
		})

		repo := new(MockTaskRepository)
		done := task.StatusCompleted
		repo.On("UpdateStatus", mock.MatchedBy(func(c context.Context) bool {
			return trace.SpanContextFromContext(c).IsValid()
		}), 4, task.StatusCompleted).Return(&task.Task{ID: 4, Status: &done}, nil)

		_, err := NewTaskService(repo).UpdateStatus(ctx, 4, UpdateTaskStatusRequest{Status: "Completed"})
		require.NoError(t, err)
		repo.AssertExpectations(t)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "task.update_status", spans[0].Name())
	})

	t.Run("missing task", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("UpdateStatus", mock.Anything, 404, task.StatusToDo).Return(nil, shared.NewNotFoundError("task", 404))

		_, err := NewTaskService(repo).UpdateStatus(ctx, 404, UpdateTaskStatusRequest{Status: "To Do"})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("unknown status", func(t *testing.T) {
		repo := new(MockTaskRepository)

		_, err := NewTaskService(repo).UpdateStatus(ctx, 1, UpdateTaskStatusRequest{Status: "Blocked"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}
