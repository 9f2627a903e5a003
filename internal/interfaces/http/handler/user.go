package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/projectmgmt/backend/internal/application/identity"
)

// UserHandler serves /users and /teams
type UserHandler struct {
	BaseHandler
	users *appidentity.UserService
	teams *appidentity.TeamService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *appidentity.UserService, teams *appidentity.TeamService) *UserHandler {
	return &UserHandler{users: users, teams: teams}
}

// ListUsers godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {array}  appidentity.UserResponse
// @Failure      500 {object} ErrorResponse
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, users)
}

// GetUser godoc
// @ID           getUserByCognitoId
// @Summary      Get a user by identity-provider subject
// @Tags         users
// @Produce      json
// @Param        cognitoId path string true "Cognito subject"
// @Success      200 {object} appidentity.UserResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /users/{cognitoId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByCognitoID(c.Request.Context(), c.Param("cognitoId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, user)
}

// GetProfilePicture godoc
// @ID           getUserProfilePicture
// @Summary      Presigned download URL for a user's profile picture
// @Tags         users
// @Produce      json
// @Param        cognitoId path string true "Cognito subject"
// @Success      200 {object} appidentity.ProfilePictureResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /users/{cognitoId}/profile-picture [get]
func (h *UserHandler) GetProfilePicture(c *gin.Context) {
	picture, err := h.users.ProfilePicture(c.Request.Context(), c.Param("cognitoId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, picture)
}

// ListTeams godoc
// @ID           listTeams
// @Summary      List teams
// @Description  Every team with product owner and project manager usernames
// @Tags         teams
// @Produce      json
// @Success      200 {array}  appidentity.TeamResponse
// @Failure      500 {object} ErrorResponse
// @Router       /teams [get]
func (h *UserHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, teams)
}
