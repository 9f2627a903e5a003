package router

import (
	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/interfaces/http/handler"
	"github.com/projectmgmt/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles the resource handlers mounted behind authentication
type Handlers struct {
	Projects  *handler.ProjectHandler
	Tasks     *handler.TaskHandler
	Users     *handler.UserHandler
	Search    *handler.SearchHandler
	Assistant *handler.AssistantHandler
}

// Resources returns the resources mounted behind authentication
func Resources(h Handlers) []*Resource {
	projects := NewResource("/projects").
		GET("", h.Projects.ListProjects).
		POST("", h.Projects.CreateProject)

	tasks := NewResource("/tasks").
		GET("", h.Tasks.ListTasks).
		POST("", h.Tasks.CreateTask).
		PATCH("/:taskId/status", h.Tasks.UpdateTaskStatus).
		GET("/user/:userId", h.Tasks.ListUserTasks)

	users := NewResource("/users").
		GET("", h.Users.ListUsers).
		GET("/:cognitoId", h.Users.GetUser).
		GET("/:cognitoId/profile-picture", h.Users.GetProfilePicture)

	teams := NewResource("/teams").
		GET("", h.Users.ListTeams)

	search := NewResource("/search").
		GET("", h.Search.Search)

	assistant := NewResource("/groq").
		POST("/chat", h.Assistant.Chat)

	return []*Resource{projects, tasks, users, teams, search, assistant}
}

// RegisterSystemRoutes mounts the unauthenticated health and system routes
func RegisterSystemRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)

	NewResource("/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping).
		mount(&engine.RouterGroup)
}

// RegisterSwagger mounts the swagger UI guarded by SwaggerProtection
func RegisterSwagger(engine *gin.Engine, enabled bool, allowedIPs []string) {
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(enabled, allowedIPs),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
}
