package identity

import (
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
)

// UserResponse is the JSON shape of a user
type UserResponse struct {
	UserID            int     `json:"userId"`
	CognitoID         string  `json:"cognitoId"`
	Username          string  `json:"username"`
	Email             *string `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
	TeamID            *int    `json:"teamId"`
}

// TeamResponse is the JSON shape of a team with its leads' usernames
type TeamResponse struct {
	ID                     int     `json:"id"`
	TeamName               string  `json:"teamName"`
	ProductOwnerUserID     *int    `json:"productOwnerUserId"`
	ProjectManagerUserID   *int    `json:"projectManagerUserId"`
	ProductOwnerUsername   *string `json:"productOwnerUsername"`
	ProjectManagerUsername *string `json:"projectManagerUsername"`
}

// ProfilePictureResponse carries a download URL. ExpiresAt is omitted for
// URLs that do not expire.
type ProfilePictureResponse struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		UserID:            u.UserID,
		CognitoID:         u.CognitoID,
		Username:          u.Username,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
		TeamID:            u.TeamID,
	}
}

// ToUserResponses converts a slice, never returning nil
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// ToTeamResponses converts teams with leads, never returning nil
func ToTeamResponses(teams []identity.TeamWithLeads) []TeamResponse {
	out := make([]TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = TeamResponse{
			ID:                     t.ID,
			TeamName:               t.TeamName,
			ProductOwnerUserID:     t.ProductOwnerUserID,
			ProjectManagerUserID:   t.ProjectManagerUserID,
			ProductOwnerUsername:   t.ProductOwnerUsername,
			ProjectManagerUsername: t.ProjectManagerUsername,
		}
	}
	return out
}
