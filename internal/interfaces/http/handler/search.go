package handler

import (
	"github.com/gin-gonic/gin"
	appsearch "github.com/projectmgmt/backend/internal/application/search"
)

// SearchHandler serves /search
type SearchHandler struct {
	BaseHandler
	search *appsearch.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search *appsearch.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @ID           search
// @Summary      Search tasks, projects and users
// @Description  Case-insensitive substring match. An empty query matches everything.
// @Tags         search
// @Produce      json
// @Param        query query string false "Search text"
// @Success      200 {object} appsearch.Results
// @Failure      500 {object} ErrorResponse
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, results)
}
