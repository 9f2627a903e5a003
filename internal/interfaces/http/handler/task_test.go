package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	apptask "github.com/projectmgmt/backend/internal/application/task"
	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTaskRouter(repo *MockTaskRepository) *gin.Engine {
	h := NewTaskHandler(apptask.NewTaskService(repo))
	r := gin.New()
	r.GET("/tasks", h.ListTasks)
	r.POST("/tasks", h.CreateTask)
	r.PATCH("/tasks/:taskId/status", h.UpdateTaskStatus)
	r.GET("/tasks/user/:userId", h.ListUserTasks)
	return r
}

func statusPtr(s task.Status) *task.Status { return &s }

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Run("expands relations", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("FindByProject", mock.Anything, 3, task.IncludeAll).Return([]task.Task{{
			ID:           1,
			Title:        "Design",
			ProjectID:    3,
			AuthorUserID: 1,
			Author:       &identity.User{UserID: 1, Username: "alice"},
			Comments:     []task.Comment{{ID: 5, Text: "ok", TaskID: 1, UserID: 1}},
		}}, nil)

		w := doRequest(setupTaskRouter(repo), http.MethodGet, "/tasks?projectId=3", "")

		require.Equal(t, http.StatusOK, w.Code)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0]["author"].(map[string]any)["username"])
		assert.Len(t, got[0]["comments"], 1)
		assert.Equal(t, []any{}, got[0]["attachments"])
	})

	for _, path := range []string{"/tasks", "/tasks?projectId=", "/tasks?projectId=x1"} {
		t.Run("rejects "+path, func(t *testing.T) {
			repo := new(MockTaskRepository)
			w := doRequest(setupTaskRouter(repo), http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			repo.AssertNotCalled(t, "FindByProject", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Run("normalises status and answers 201", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
			return tk.Status != nil && *tk.Status == task.StatusWorkInProgress && tk.ProjectID == 2
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*task.Task).ID = 40
		}).Return(nil)

		w := doRequest(setupTaskRouter(repo), http.MethodPost, "/tasks",
			`{"title":"Write docs","status":"In Progress","priority":"High","projectId":2,"authorUserId":1,"points":3}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var got apptask.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 40, got.ID)
		require.NotNil(t, got.Status)
		assert.Equal(t, "Work In Progress", *got.Status)
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing title", `{"projectId":2,"authorUserId":1}`, "title"},
		{"missing project", `{"title":"a","authorUserId":1}`, "projectId"},
		{"missing author", `{"title":"a","projectId":2}`, "authorUserId"},
		{"bad status", `{"title":"a","projectId":2,"authorUserId":1,"status":"Done"}`, "status"},
		{"bad priority", `{"title":"a","projectId":2,"authorUserId":1,"priority":"P0"}`, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			w := doRequest(setupTaskRouter(repo), http.MethodPost, "/tasks", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Error.Details)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("foreign key violation is a 500 with the raw message", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New(`violates foreign key constraint "fk_tasks_project"`))

		w := doRequest(setupTaskRouter(repo), http.MethodPost, "/tasks", `{"title":"a","projectId":999,"authorUserId":1}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "fk_tasks_project")
	})
}

func TestTaskHandler_UpdateTaskStatus(t *testing.T) {
	t.Run("returns the updated task", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("UpdateStatus", mock.Anything, 8, task.StatusCompleted).
			Return(&task.Task{ID: 8, Title: "Ship", Status: statusPtr(task.StatusCompleted), ProjectID: 1, AuthorUserID: 1}, nil)

		w := doRequest(setupTaskRouter(repo), http.MethodPatch, "/tasks/8/status", `{"status":"completed"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var got apptask.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Completed", *got.Status)
	})

	t.Run("unknown task is 404", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("UpdateStatus", mock.Anything, 404, task.StatusToDo).Return(nil, shared.NewNotFoundError("task", 404))

		w := doRequest(setupTaskRouter(repo), http.MethodPatch, "/tasks/404/status", `{"status":"To Do"}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "task 404 not found", resp.Error.Message)
	})

	t.Run("non-numeric task id", func(t *testing.T) {
		w := doRequest(setupTaskRouter(new(MockTaskRepository)), http.MethodPatch, "/tasks/abc/status", `{"status":"To Do"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing status", func(t *testing.T) {
		w := doRequest(setupTaskRouter(new(MockTaskRepository)), http.MethodPatch, "/tasks/1/status", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskHandler_ListUserTasks(t *testing.T) {
	repo := new(MockTaskRepository)
	repo.On("FindByUser", mock.Anything, 2, task.IncludePeople).Return([]task.Task{
		{ID: 1, Title: "Authored", AuthorUserID: 2, ProjectID: 1},
		{ID: 2, Title: "Assigned", AuthorUserID: 1, AssignedUserID: intPtr(2), ProjectID: 1,
			Assignee: &identity.User{UserID: 2, Username: "bob"}},
	}, nil)

	w := doRequest(setupTaskRouter(repo), http.MethodGet, "/tasks/user/2", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []apptask.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.NotNil(t, got[1].Assignee)
	assert.Equal(t, "bob", got[1].Assignee.Username)
	assert.Nil(t, got[0].Comments)
}
