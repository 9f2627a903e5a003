package models

import "github.com/projectmgmt/backend/internal/domain/identity"

// UserModel is the persistence model for users
type UserModel struct {
	UserID            int     `gorm:"column:user_id;primaryKey;autoIncrement"`
	CognitoID         string  `gorm:"column:cognito_id;type:varchar(255);not null;uniqueIndex"`
	Username          string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email             *string `gorm:"type:varchar(255)"`
	ProfilePictureURL *string `gorm:"column:profile_picture_url;type:varchar(1024)"`
	TeamID            *int    `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		UserID:            m.UserID,
		CognitoID:         m.CognitoID,
		Username:          m.Username,
		Email:             m.Email,
		ProfilePictureURL: m.ProfilePictureURL,
		TeamID:            m.TeamID,
	}
}

// FromDomain populates the model from a domain user
func (m *UserModel) FromDomain(u *identity.User) {
	m.UserID = u.UserID
	m.CognitoID = u.CognitoID
	m.Username = u.Username
	m.Email = u.Email
	m.ProfilePictureURL = u.ProfilePictureURL
	m.TeamID = u.TeamID
}

// TeamModel is the persistence model for teams
type TeamModel struct {
	ID                   int    `gorm:"primaryKey;autoIncrement"`
	TeamName             string `gorm:"type:varchar(255);not null"`
	ProductOwnerUserID   *int
	ProjectManagerUserID *int
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// ToDomain converts the model to a domain team
func (m *TeamModel) ToDomain() *identity.Team {
	return &identity.Team{
		ID:                   m.ID,
		TeamName:             m.TeamName,
		ProductOwnerUserID:   m.ProductOwnerUserID,
		ProjectManagerUserID: m.ProjectManagerUserID,
	}
}

// FromDomain populates the model from a domain team
func (m *TeamModel) FromDomain(t *identity.Team) {
	m.ID = t.ID
	m.TeamName = t.TeamName
	m.ProductOwnerUserID = t.ProductOwnerUserID
	m.ProjectManagerUserID = t.ProjectManagerUserID
}
