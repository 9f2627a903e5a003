package assistant

import (
	"context"
	"time"

	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	apptask "github.com/projectmgmt/backend/internal/application/task"
	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/task"
)

// TimelineEntry is one task on a project timeline
type TimelineEntry struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	StartDate *time.Time `json:"startDate"`
	DueDate   *time.Time `json:"dueDate"`
}

// WorkloadEntry is one task in a user's workload summary
type WorkloadEntry struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// TaskStatistics summarises all tasks
type TaskStatistics struct {
	TotalTasks     int64   `json:"totalTasks"`
	CompletedTasks int64   `json:"completedTasks"`
	OverdueTasks   int64   `json:"overdueTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// ProjectProgress summarises the tasks of one project
type ProjectProgress struct {
	ProjectID          int     `json:"projectId"`
	TotalTasks         int64   `json:"totalTasks"`
	CompletedTasks     int64   `json:"completedTasks"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// DataSource answers the read-only questions the model may ask
type DataSource interface {
	UserTasks(ctx context.Context, userID int) ([]apptask.TaskResponse, error)
	AllTasks(ctx context.Context) ([]apptask.TaskResponse, error)
	UserProjects(ctx context.Context, userID int) ([]appproject.ProjectResponse, error)
	ProjectTasks(ctx context.Context, projectID int) ([]apptask.TaskResponse, error)
	ProjectTeamMembers(ctx context.Context, projectID int) ([]appidentity.UserResponse, error)
	TeamMembers(ctx context.Context, teamID int) ([]appidentity.UserResponse, error)
	ProjectTimeline(ctx context.Context, projectID int) ([]TimelineEntry, error)
	TasksAssignedTo(ctx context.Context, userID int) ([]apptask.TaskResponse, error)
	TaskStatistics(ctx context.Context) (*TaskStatistics, error)
	ProjectProgress(ctx context.Context, projectID int) (*ProjectProgress, error)
	UserWorkload(ctx context.Context, userID int) ([]WorkloadEntry, error)
}

// RepositoryDataSource implements DataSource on top of the repositories
type RepositoryDataSource struct {
	tasks    task.Repository
	projects project.Repository
	users    identity.UserRepository
	now      func() time.Time
}

// NewRepositoryDataSource creates a new RepositoryDataSource. now defaults
// to time.Now when nil.
func NewRepositoryDataSource(
	tasks task.Repository,
	projects project.Repository,
	users identity.UserRepository,
	now func() time.Time,
) *RepositoryDataSource {
	if now == nil {
		now = time.Now
	}
	return &RepositoryDataSource{tasks: tasks, projects: projects, users: users, now: now}
}

func (d *RepositoryDataSource) UserTasks(ctx context.Context, userID int) ([]apptask.TaskResponse, error) {
	tasks, err := d.tasks.FindByUser(ctx, userID, task.IncludePeople)
	if err != nil {
		return nil, err
	}
	return apptask.ToTaskResponses(tasks, task.IncludePeople), nil
}

func (d *RepositoryDataSource) AllTasks(ctx context.Context) ([]apptask.TaskResponse, error) {
	tasks, err := d.tasks.FindAll(ctx, task.IncludePeople)
	if err != nil {
		return nil, err
	}
	return apptask.ToTaskResponses(tasks, task.IncludePeople), nil
}

func (d *RepositoryDataSource) UserProjects(ctx context.Context, userID int) ([]appproject.ProjectResponse, error) {
	projects, err := d.projects.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return appproject.ToProjectResponses(projects), nil
}

func (d *RepositoryDataSource) ProjectTasks(ctx context.Context, projectID int) ([]apptask.TaskResponse, error) {
	tasks, err := d.tasks.FindByProject(ctx, projectID, task.IncludePeople)
	if err != nil {
		return nil, err
	}
	return apptask.ToTaskResponses(tasks, task.IncludePeople), nil
}

func (d *RepositoryDataSource) ProjectTeamMembers(ctx context.Context, projectID int) ([]appidentity.UserResponse, error) {
	users, err := d.users.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return appidentity.ToUserResponses(users), nil
}

func (d *RepositoryDataSource) TeamMembers(ctx context.Context, teamID int) ([]appidentity.UserResponse, error) {
	users, err := d.users.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return appidentity.ToUserResponses(users), nil
}

func (d *RepositoryDataSource) ProjectTimeline(ctx context.Context, projectID int) ([]TimelineEntry, error) {
	tasks, err := d.tasks.FindByProject(ctx, projectID, task.Include{})
	if err != nil {
		return nil, err
	}
	out := make([]TimelineEntry, len(tasks))
	for i, t := range tasks {
		out[i] = TimelineEntry{ID: t.ID, Title: t.Title, StartDate: t.StartDate, DueDate: t.DueDate}
	}
	return out, nil
}

func (d *RepositoryDataSource) TasksAssignedTo(ctx context.Context, userID int) ([]apptask.TaskResponse, error) {
	inc := task.Include{Project: true}
	tasks, err := d.tasks.FindByAssignee(ctx, userID, inc)
	if err != nil {
		return nil, err
	}
	return apptask.ToTaskResponses(tasks, inc), nil
}

func (d *RepositoryDataSource) TaskStatistics(ctx context.Context) (*TaskStatistics, error) {
	stats, err := d.tasks.Statistics(ctx, d.now())
	if err != nil {
		return nil, err
	}
	return &TaskStatistics{
		TotalTasks:     stats.TotalTasks,
		CompletedTasks: stats.CompletedTasks,
		OverdueTasks:   stats.OverdueTasks,
		CompletionRate: stats.CompletionRate(),
	}, nil
}

func (d *RepositoryDataSource) ProjectProgress(ctx context.Context, projectID int) (*ProjectProgress, error) {
	stats, err := d.tasks.ProjectStatistics(ctx, projectID, d.now())
	if err != nil {
		return nil, err
	}
	return &ProjectProgress{
		ProjectID:          projectID,
		TotalTasks:         stats.TotalTasks,
		CompletedTasks:     stats.CompletedTasks,
		ProgressPercentage: stats.CompletionRate(),
	}, nil
}

func (d *RepositoryDataSource) UserWorkload(ctx context.Context, userID int) ([]WorkloadEntry, error) {
	tasks, err := d.tasks.FindByAssignee(ctx, userID, task.Include{})
	if err != nil {
		return nil, err
	}
	out := make([]WorkloadEntry, len(tasks))
	for i, t := range tasks {
		e := WorkloadEntry{ID: t.ID, Title: t.Title}
		if t.Status != nil {
			s := string(*t.Status)
			e.Status = &s
		}
		if t.Priority != nil {
			p := string(*t.Priority)
			e.Priority = &p
		}
		out[i] = e
	}
	return out, nil
}
