package persistence

import (
	"context"
	"time"

	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository implements task.Repository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// withIncludes preloads the requested relations
func withIncludes(db *gorm.DB, inc task.Include) *gorm.DB {
	if inc.Author {
		db = db.Preload("Author")
	}
	if inc.Assignee {
		db = db.Preload("Assignee")
	}
	if inc.Project {
		db = db.Preload("Project")
	}
	if inc.Comments {
		db = db.Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}
	if inc.Attachments {
		db = db.Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}
	return db
}

func (r *GormTaskRepository) find(ctx context.Context, inc task.Include, scope func(*gorm.DB) *gorm.DB) ([]task.Task, error) {
	var rows []models.TaskModel
	q := withIncludes(r.db.WithContext(ctx), inc)
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]task.Task, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindAll returns every task
func (r *GormTaskRepository) FindAll(ctx context.Context, inc task.Include) ([]task.Task, error) {
	return r.find(ctx, inc, nil)
}

// FindByID finds a task by id
func (r *GormTaskRepository) FindByID(ctx context.Context, id int, inc task.Include) (*task.Task, error) {
	var row models.TaskModel
	if err := withIncludes(r.db.WithContext(ctx), inc).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

// FindByProject returns the tasks of a project
func (r *GormTaskRepository) FindByProject(ctx context.Context, projectID int, inc task.Include) ([]task.Task, error) {
	return r.find(ctx, inc, func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ?", projectID)
	})
}

// FindByUser returns tasks the user authored or is assigned to
func (r *GormTaskRepository) FindByUser(ctx context.Context, userID int, inc task.Include) ([]task.Task, error) {
	return r.find(ctx, inc, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_user_id = ? OR assigned_user_id = ?", userID, userID)
	})
}

// FindByAssignee returns tasks assigned to the user
func (r *GormTaskRepository) FindByAssignee(ctx context.Context, userID int, inc task.Include) ([]task.Task, error) {
	return r.find(ctx, inc, func(db *gorm.DB) *gorm.DB {
		return db.Where("assigned_user_id = ?", userID)
	})
}

// Create inserts a task and writes back the generated id
func (r *GormTaskRepository) Create(ctx context.Context, t *task.Task) error {
	var row models.TaskModel
	row.FromDomain(t)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

// UpdateStatus sets a task's status and returns the stored task
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, id int, status task.Status) (*task.Task, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, shared.NewNotFoundError("task", id)
	}
	return r.FindByID(ctx, id, task.Include{})
}

// Search matches title or description, case-insensitively
func (r *GormTaskRepository) Search(ctx context.Context, query string) ([]task.Task, error) {
	pattern := containsPattern(query)
	return r.find(ctx, task.Include{}, func(db *gorm.DB) *gorm.DB {
		return db.Where(ilike("title"), pattern).Or(ilike("description"), pattern)
	})
}

// FindIDByTitle returns the id of the first task whose title contains title
func (r *GormTaskRepository) FindIDByTitle(ctx context.Context, title string) (int, bool, error) {
	var ids []int
	if err := r.db.WithContext(ctx).Model(&models.TaskModel{}).
		Where(ilike("title"), containsPattern(title)).
		Order("id").
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	id, ok := firstID(ids)
	return id, ok, nil
}

// statisticsSelect counts with conditional sums so one round trip serves all
// three numbers. A task without status is open.
const statisticsSelect = "COUNT(*) AS total_tasks, " +
	"COALESCE(SUM(CASE WHEN LOWER(status) = 'completed' THEN 1 ELSE 0 END), 0) AS completed_tasks, " +
	"COALESCE(SUM(CASE WHEN due_date < ? AND (status IS NULL OR LOWER(status) <> 'completed') THEN 1 ELSE 0 END), 0) AS overdue_tasks"

type statisticsRow struct {
	TotalTasks     int64
	CompletedTasks int64
	OverdueTasks   int64
}

// Statistics counts all, completed and overdue tasks as of now
func (r *GormTaskRepository) Statistics(ctx context.Context, now time.Time) (task.Statistics, error) {
	return r.statistics(r.db.WithContext(ctx).Model(&models.TaskModel{}), now)
}

// ProjectStatistics counts one project's tasks as of now
func (r *GormTaskRepository) ProjectStatistics(ctx context.Context, projectID int, now time.Time) (task.Statistics, error) {
	return r.statistics(r.db.WithContext(ctx).Model(&models.TaskModel{}).Where("project_id = ?", projectID), now)
}

func (r *GormTaskRepository) statistics(q *gorm.DB, now time.Time) (task.Statistics, error) {
	var row statisticsRow
	if err := q.Select(statisticsSelect, now).Scan(&row).Error; err != nil {
		return task.Statistics{}, err
	}
	return task.Statistics{
		TotalTasks:     row.TotalTasks,
		CompletedTasks: row.CompletedTasks,
		OverdueTasks:   row.OverdueTasks,
	}, nil
}
