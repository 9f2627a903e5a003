package task

import (
	"context"

	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TaskService serves the task endpoints
type TaskService struct {
	repo task.Repository
}

// NewTaskService creates a new TaskService
func NewTaskService(repo task.Repository) *TaskService {
	return &TaskService{repo: repo}
}

// ListByProject returns a project's tasks with author, assignee, comments
// and attachments
func (s *TaskService) ListByProject(ctx context.Context, projectID int) ([]TaskResponse, error) {
	tasks, err := s.repo.FindByProject(ctx, projectID, task.IncludeAll)
	if err != nil {
		return nil, err
	}
	return ToTaskResponses(tasks, task.IncludeAll), nil
}

// ListByUser returns tasks the user authored or is assigned to
func (s *TaskService) ListByUser(ctx context.Context, userID int) ([]TaskResponse, error) {
	tasks, err := s.repo.FindByUser(ctx, userID, task.IncludePeople)
	if err != nil {
		return nil, err
	}
	return ToTaskResponses(tasks, task.IncludePeople), nil
}

// Create validates and stores a new task
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	t, err := task.NewTask(task.NewTaskParams{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		Tags:           req.Tags,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		Points:         req.Points,
		AssignedUserID: req.AssignedUserID,
		AuthorUserID:   req.AuthorUserID,
		ProjectID:      req.ProjectID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Task created",
		zap.Int("task_id", t.ID),
		zap.Int("project_id", t.ProjectID),
	)
	resp := ToTaskResponse(t, task.Include{})
	return &resp, nil
}

// UpdateStatus moves a task to a new status
func (s *TaskService) UpdateStatus(ctx context.Context, taskID int, req UpdateTaskStatusRequest) (*TaskResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "update_status", telemetry.SpanAttrTaskID.Int(taskID))
	defer span.End()

	status, err := task.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.UpdateStatus(ctx, taskID, status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Task status updated",
		zap.Int("task_id", taskID),
		zap.String("status", string(status)),
	)
	resp := ToTaskResponse(t, task.Include{})
	return &resp, nil
}
