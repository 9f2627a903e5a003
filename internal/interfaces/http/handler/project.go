package handler

import (
	"github.com/gin-gonic/gin"
	appproject "github.com/projectmgmt/backend/internal/application/project"
)

// ProjectHandler serves /projects
type ProjectHandler struct {
	BaseHandler
	projects *appproject.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *appproject.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ListProjects godoc
// @ID           listProjects
// @Summary      List projects
// @Description  Returns every project. With ?id= returns an array holding that project, or an empty array.
// @Tags         projects
// @Produce      json
// @Param        id query int false "Project ID"
// @Success      200 {array}  appproject.ProjectResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	if raw, ok := c.GetQuery("id"); ok {
		id, err := intParam(raw, "id")
		if err != nil {
			h.HandleError(c, err)
			return
		}
		projects, err := h.projects.GetByID(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.OK(c, projects)
		return
	}

	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, projects)
}

// CreateProject godoc
// @ID           createProject
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body appproject.CreateProjectRequest true "Project"
// @Success      201 {object} appproject.ProjectResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req appproject.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	project, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}
