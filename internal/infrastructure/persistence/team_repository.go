package persistence

import (
	"context"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTeamRepository implements identity.TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

type teamWithLeadsRow struct {
	models.TeamModel
	ProductOwnerUsername   *string
	ProjectManagerUsername *string
}

// FindAllWithLeads returns every team with owner and manager usernames resolved
func (r *GormTeamRepository) FindAllWithLeads(ctx context.Context) ([]identity.TeamWithLeads, error) {
	var rows []teamWithLeadsRow
	err := r.db.WithContext(ctx).
		Table("teams").
		Select("teams.id, teams.team_name, teams.product_owner_user_id, teams.project_manager_user_id, " +
			"po.username AS product_owner_username, pm.username AS project_manager_username").
		Joins("LEFT JOIN users po ON po.user_id = teams.product_owner_user_id").
		Joins("LEFT JOIN users pm ON pm.user_id = teams.project_manager_user_id").
		Order("teams.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]identity.TeamWithLeads, len(rows))
	for i := range rows {
		out[i] = identity.TeamWithLeads{
			Team:                   *rows[i].ToDomain(),
			ProductOwnerUsername:   rows[i].ProductOwnerUsername,
			ProjectManagerUsername: rows[i].ProjectManagerUsername,
		}
	}
	return out, nil
}

// FindIDByName returns the id of the first team whose name contains name
func (r *GormTeamRepository) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	var ids []int
	if err := r.db.WithContext(ctx).Model(&models.TeamModel{}).
		Where(ilike("team_name"), containsPattern(name)).
		Order("id").
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	id, ok := firstID(ids)
	return id, ok, nil
}
