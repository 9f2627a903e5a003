package assistant

import (
	"context"
	"sync"
	"time"

	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	apptask "github.com/projectmgmt/backend/internal/application/task"
)

// scriptedModel returns the queued completions in order and records requests
type scriptedModel struct {
	mu        sync.Mutex
	replies   []*Completion
	errs      []error
	requests  []CompletionRequest
	blockTill bool
}

func (m *scriptedModel) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	m.mu.Lock()
	i := len(m.requests)
	msgs := make([]Message, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	m.requests = append(m.requests, req)
	block := m.blockTill
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.replies) {
		return &Completion{Message: Message{Role: RoleAssistant}}, nil
	}
	return m.replies[i], nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func text(content string) *Completion {
	return &Completion{Message: Message{Role: RoleAssistant, Content: content}}
}

func toolCalls(calls ...ToolCall) *Completion {
	return &Completion{Message: Message{Role: RoleAssistant, ToolCalls: calls}}
}

func call(id, name, args string) ToolCall {
	return ToolCall{ID: id, Type: "function", Function: FunctionCall{Name: name, Arguments: args}}
}

// recordingData implements DataSource and records every invocation
type recordingData struct {
	mu      sync.Mutex
	invoked []string
	ids     []int
	delay   map[int]time.Duration
	err     error
}

func (d *recordingData) record(ctx context.Context, name string, id int) error {
	if wait, ok := d.delay[id]; ok {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invoked = append(d.invoked, name)
	d.ids = append(d.ids, id)
	return d.err
}

func (d *recordingData) calledWith() ([]string, []int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.invoked...), append([]int(nil), d.ids...)
}

func (d *recordingData) UserTasks(ctx context.Context, userID int) ([]apptask.TaskResponse, error) {
	if err := d.record(ctx, "UserTasks", userID); err != nil {
		return nil, err
	}
	return []apptask.TaskResponse{{ID: 100 + userID, Title: "task for user"}}, nil
}

func (d *recordingData) AllTasks(ctx context.Context) ([]apptask.TaskResponse, error) {
	if err := d.record(ctx, "AllTasks", 0); err != nil {
		return nil, err
	}
	return []apptask.TaskResponse{}, nil
}

func (d *recordingData) UserProjects(ctx context.Context, userID int) ([]appproject.ProjectResponse, error) {
	if err := d.record(ctx, "UserProjects", userID); err != nil {
		return nil, err
	}
	return []appproject.ProjectResponse{}, nil
}

func (d *recordingData) ProjectTasks(ctx context.Context, projectID int) ([]apptask.TaskResponse, error) {
	if err := d.record(ctx, "ProjectTasks", projectID); err != nil {
		return nil, err
	}
	return []apptask.TaskResponse{{ID: 1, Title: "Design schema", ProjectID: projectID}}, nil
}

func (d *recordingData) ProjectTeamMembers(ctx context.Context, projectID int) ([]appidentity.UserResponse, error) {
	if err := d.record(ctx, "ProjectTeamMembers", projectID); err != nil {
		return nil, err
	}
	return []appidentity.UserResponse{}, nil
}

func (d *recordingData) TeamMembers(ctx context.Context, teamID int) ([]appidentity.UserResponse, error) {
	if err := d.record(ctx, "TeamMembers", teamID); err != nil {
		return nil, err
	}
	return []appidentity.UserResponse{{UserID: 1, Username: "alice"}}, nil
}

func (d *recordingData) ProjectTimeline(ctx context.Context, projectID int) ([]TimelineEntry, error) {
	if err := d.record(ctx, "ProjectTimeline", projectID); err != nil {
		return nil, err
	}
	return []TimelineEntry{}, nil
}

func (d *recordingData) TasksAssignedTo(ctx context.Context, userID int) ([]apptask.TaskResponse, error) {
	if err := d.record(ctx, "TasksAssignedTo", userID); err != nil {
		return nil, err
	}
	return []apptask.TaskResponse{}, nil
}

func (d *recordingData) TaskStatistics(ctx context.Context) (*TaskStatistics, error) {
	if err := d.record(ctx, "TaskStatistics", 0); err != nil {
		return nil, err
	}
	return &TaskStatistics{TotalTasks: 3, CompletedTasks: 1, OverdueTasks: 1, CompletionRate: 33.33}, nil
}

func (d *recordingData) ProjectProgress(ctx context.Context, projectID int) (*ProjectProgress, error) {
	if err := d.record(ctx, "ProjectProgress", projectID); err != nil {
		return nil, err
	}
	return &ProjectProgress{ProjectID: projectID}, nil
}

func (d *recordingData) UserWorkload(ctx context.Context, userID int) ([]WorkloadEntry, error) {
	if err := d.record(ctx, "UserWorkload", userID); err != nil {
		return nil, err
	}
	return []WorkloadEntry{}, nil
}

// mapResolver resolves from a fixed table keyed by entity and exact name
type mapResolver struct {
	mu      sync.Mutex
	entries map[EntityType]map[string]int
	lookups []string
	err     error
}

func (r *mapResolver) Resolve(_ context.Context, entity EntityType, name string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, string(entity)+":"+name)
	if r.err != nil {
		return 0, false, r.err
	}
	id, ok := r.entries[entity][name]
	return id, ok, nil
}

// recordingMetrics captures what the relay reports
type recordingMetrics struct {
	mu            sync.Mutex
	conversations []State
	tools         map[string][]ToolOutcome
	modelRounds   []int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{tools: map[string][]ToolOutcome{}}
}

func (m *recordingMetrics) RecordConversation(_ context.Context, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = append(m.conversations, s)
}

func (m *recordingMetrics) RecordToolCall(_ context.Context, tool string, o ToolOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool] = append(m.tools[tool], o)
}

func (m *recordingMetrics) RecordModelCall(_ context.Context, round int, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelRounds = append(m.modelRounds, round)
}
