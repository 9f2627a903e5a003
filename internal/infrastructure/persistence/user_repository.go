package persistence

import (
	"context"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindAll returns every user ordered by id
func (r *GormUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// FindByID finds a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id int) (*identity.User, error) {
	var row models.UserModel
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

// FindByCognitoID finds a user by identity-provider subject
func (r *GormUserRepository) FindByCognitoID(ctx context.Context, cognitoID string) (*identity.User, error) {
	var row models.UserModel
	if err := r.db.WithContext(ctx).First(&row, "cognito_id = ?", cognitoID).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

// FindByTeam returns the members of a team
func (r *GormUserRepository) FindByTeam(ctx context.Context, teamID int) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// FindByProject returns users whose team is linked to the project
func (r *GormUserRepository) FindByProject(ctx context.Context, projectID int) ([]identity.User, error) {
	db := r.db.WithContext(ctx)
	teamIDs := db.Model(&models.ProjectTeamModel{}).Select("team_id").Where("project_id = ?", projectID)

	var rows []models.UserModel
	if err := db.Where("team_id IN (?)", teamIDs).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// Search matches username, case-insensitively
func (r *GormUserRepository) Search(ctx context.Context, query string) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where(ilike("username"), containsPattern(query)).
		Order("user_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// FindIDByName returns the id of the first user whose username contains name
func (r *GormUserRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	var ids []int
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where(ilike("username"), containsPattern(name)).
		Order("user_id").
		Limit(1).
		Pluck("user_id", &ids).Error; err != nil {
		return 0, false, err
	}
	id, ok := firstID(ids)
	return id, ok, nil
}

func toUsers(rows []models.UserModel) []identity.User {
	out := make([]identity.User, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
