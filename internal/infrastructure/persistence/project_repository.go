package persistence

import (
	"context"

	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindAll returns every project ordered by id
func (r *GormProjectRepository) FindAll(ctx context.Context) ([]project.Project, error) {
	var rows []models.ProjectModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProjects(rows), nil
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id int) (*project.Project, error) {
	var row models.ProjectModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

// Create inserts a project and writes back the generated id
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	var row models.ProjectModel
	row.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	return nil
}

// Search matches name or description, case-insensitively
func (r *GormProjectRepository) Search(ctx context.Context, query string) ([]project.Project, error) {
	pattern := containsPattern(query)
	var rows []models.ProjectModel
	if err := r.db.WithContext(ctx).
		Where(ilike("name"), pattern).
		Or(ilike("description"), pattern).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProjects(rows), nil
}

// FindByMember returns projects linked to the team of the given user
func (r *GormProjectRepository) FindByMember(ctx context.Context, userID int) ([]project.Project, error) {
	db := r.db.WithContext(ctx)
	teamIDs := db.Model(&models.UserModel{}).Select("team_id").Where("user_id = ?", userID)
	projectIDs := db.Model(&models.ProjectTeamModel{}).Select("project_id").Where("team_id IN (?)", teamIDs)

	var rows []models.ProjectModel
	if err := db.Where("id IN (?)", projectIDs).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProjects(rows), nil
}

// FindIDByName returns the id of the first project whose name contains name
func (r *GormProjectRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	var ids []int
	if err := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where(ilike("name"), containsPattern(name)).
		Order("id").
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	id, ok := firstID(ids)
	return id, ok, nil
}

func toProjects(rows []models.ProjectModel) []project.Project {
	out := make([]project.Project, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
