package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/application/assistant"
	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	appsearch "github.com/projectmgmt/backend/internal/application/search"
	apptask "github.com/projectmgmt/backend/internal/application/task"
	"github.com/projectmgmt/backend/internal/infrastructure/auth"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence"
	"github.com/projectmgmt/backend/internal/interfaces/http/handler"
	"github.com/projectmgmt/backend/internal/interfaces/http/middleware"
	"github.com/projectmgmt/backend/internal/interfaces/http/router"
	"github.com/projectmgmt/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiSecret = "integration-secret-at-least-32-bytes!"

// scriptedModel replays completions and records what it was sent
type scriptedModel struct {
	mu       sync.Mutex
	replies  []*assistant.Completion
	requests []assistant.CompletionRequest
}

func (m *scriptedModel) Complete(_ context.Context, req assistant.CompletionRequest) (*assistant.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

type apiServer struct {
	engine *gin.Engine
	token  string
}

func (s *apiServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	w := testutil.Do(t, s.engine, method, path, body, map[string]string{
		"Authorization": "Bearer " + s.token,
	})
	return w.Code, w.Body.Bytes()
}

// newAPIServer wires the postgres repositories into the real route table
// behind HMAC authentication.
func newAPIServer(t *testing.T, testDB *TestDB, model assistant.ChatModel) *apiServer {
	t.Helper()

	projects := persistence.NewGormProjectRepository(testDB.DB)
	tasks := persistence.NewGormTaskRepository(testDB.DB)
	users := persistence.NewGormUserRepository(testDB.DB)
	teams := persistence.NewGormTeamRepository(testDB.DB)

	clock := func() time.Time { return fixtureNow }
	relay := assistant.NewRelay(model,
		assistant.NewRepositoryDataSource(tasks, projects, users, clock),
		assistant.NewRepositoryResolver(users, teams, projects, tasks),
		assistant.Options{Model: "test-model", MaxTokens: 1001, Policy: assistant.DefaultPolicy()},
	)

	middleware.SetupValidator()
	verifier := auth.NewHMACVerifier(apiSecret, "")
	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Use(middleware.Authenticate(verifier, zap.NewNop())).
		Register(router.Resources(router.Handlers{
			Projects:  handler.NewProjectHandler(appproject.NewProjectService(projects)),
			Tasks:     handler.NewTaskHandler(apptask.NewTaskService(tasks)),
			Users:     handler.NewUserHandler(appidentity.NewUserService(users, nil), appidentity.NewTeamService(teams)),
			Search:    handler.NewSearchHandler(appsearch.NewSearchService(tasks, projects, users)),
			Assistant: handler.NewAssistantHandler(relay),
		})...).
		Setup()

	token, err := verifier.IssueToken("sub-alice", "alice", time.Hour)
	require.NoError(t, err)
	return &apiServer{engine: engine, token: token}
}

func TestAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	testDB.Seed()
	model := &scriptedModel{replies: []*assistant.Completion{
		{Message: assistant.Message{Role: assistant.RoleAssistant, ToolCalls: []assistant.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: assistant.FunctionCall{Name: "getUserTasks", Arguments: `{"userId":"bob"}`},
		}}}},
		{Message: assistant.Message{Role: assistant.RoleAssistant, Content: "Bob is designing the homepage."}},
	}}
	srv := newAPIServer(t, testDB, model)

	t.Run("requests without a token are rejected", func(t *testing.T) {
		w := testutil.Do(t, srv.engine, http.MethodGet, "/projects", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		testutil.AssertErrorBody(t, w.Body.Bytes(), "ERR_UNAUTHORIZED")
	})

	t.Run("list projects", func(t *testing.T) {
		code, body := srv.do(t, http.MethodGet, "/projects", nil)
		require.Equal(t, http.StatusOK, code)

		var projects []appproject.ProjectResponse
		require.NoError(t, json.Unmarshal(body, &projects))
		assert.Len(t, projects, 3)
	})

	t.Run("create task then list it with relations", func(t *testing.T) {
		code, body := srv.do(t, http.MethodPost, "/tasks", map[string]any{
			"title":          "Pour concrete",
			"status":         "In Progress",
			"priority":       "urgent",
			"projectId":      2,
			"authorUserId":   3,
			"assignedUserId": 1,
		})
		require.Equal(t, http.StatusCreated, code, string(body))

		var created apptask.TaskResponse
		require.NoError(t, json.Unmarshal(body, &created))
		assert.Equal(t, 5, created.ID)
		require.NotNil(t, created.Status)
		assert.Equal(t, "Work In Progress", *created.Status)
		require.NotNil(t, created.Priority)
		assert.Equal(t, "Urgent", *created.Priority)

		code, body = srv.do(t, http.MethodGet, "/tasks?projectId=2", nil)
		require.Equal(t, http.StatusOK, code)
		var listed []apptask.TaskResponse
		require.NoError(t, json.Unmarshal(body, &listed))
		require.Len(t, listed, 2)
		require.NotNil(t, listed[1].Assignee)
		assert.Equal(t, "alice", listed[1].Assignee.Username)
	})

	t.Run("create task with unknown project surfaces the database error", func(t *testing.T) {
		code, body := srv.do(t, http.MethodPost, "/tasks", map[string]any{
			"title":        "Orphan",
			"projectId":    999,
			"authorUserId": 1,
		})
		assert.Equal(t, http.StatusInternalServerError, code)
		resp := testutil.AssertErrorBody(t, body, "ERR_INTERNAL")
		assert.Contains(t, resp.Error.Message, "foreign key")
	})

	t.Run("update status", func(t *testing.T) {
		code, body := srv.do(t, http.MethodPatch, "/tasks/3/status", map[string]string{"status": "under review"})
		require.Equal(t, http.StatusOK, code)

		var updated apptask.TaskResponse
		require.NoError(t, json.Unmarshal(body, &updated))
		require.NotNil(t, updated.Status)
		assert.Equal(t, "Under Review", *updated.Status)

		code, body = srv.do(t, http.MethodPatch, "/tasks/999/status", map[string]string{"status": "Completed"})
		assert.Equal(t, http.StatusNotFound, code)
		testutil.AssertErrorBody(t, body, "ERR_NOT_FOUND")
	})

	t.Run("search groups matches", func(t *testing.T) {
		code, body := srv.do(t, http.MethodGet, "/search?query=apollo", nil)
		require.Equal(t, http.StatusOK, code)

		var result appsearch.Results
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Len(t, result.Projects, 1)
		assert.Empty(t, result.Tasks)
		assert.Empty(t, result.Users)
	})

	t.Run("user lookups", func(t *testing.T) {
		code, body := srv.do(t, http.MethodGet, "/users/sub-alice", nil)
		require.Equal(t, http.StatusOK, code)
		var user appidentity.UserResponse
		require.NoError(t, json.Unmarshal(body, &user))
		assert.Equal(t, "alice", user.Username)

		code, _ = srv.do(t, http.MethodGet, "/users/sub-alice/profile-picture", nil)
		assert.Equal(t, http.StatusServiceUnavailable, code)

		code, body = srv.do(t, http.MethodGet, "/teams", nil)
		require.Equal(t, http.StatusOK, code)
		var teams []appidentity.TeamResponse
		require.NoError(t, json.Unmarshal(body, &teams))
		require.Len(t, teams, 2)
		require.NotNil(t, teams[0].ProductOwnerUsername)
		assert.Equal(t, "alice", *teams[0].ProductOwnerUsername)
	})

	t.Run("assistant resolves names against the database", func(t *testing.T) {
		code, body := srv.do(t, http.MethodPost, "/groq/chat", map[string]string{"message": "What is bob working on?"})
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"response":"Bob is designing the homepage."}`, string(body))

		require.Len(t, model.requests, 2)
		followUp := model.requests[1].Messages
		last := followUp[len(followUp)-1]
		assert.Equal(t, assistant.RoleTool, last.Role)
		assert.Equal(t, "call_1", last.ToolCallID)
		assert.Contains(t, last.Content, "Design homepage")
		assert.Contains(t, last.Content, "Write API docs")
	})
}
