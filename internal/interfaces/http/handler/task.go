package handler

import (
	"github.com/gin-gonic/gin"
	apptask "github.com/projectmgmt/backend/internal/application/task"
)

// TaskHandler serves /tasks
type TaskHandler struct {
	BaseHandler
	tasks *apptask.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks *apptask.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListTasks godoc
// @ID           listTasksByProject
// @Summary      List a project's tasks
// @Description  Tasks of the project with author, assignee, comments and attachments
// @Tags         tasks
// @Produce      json
// @Param        projectId query int true "Project ID"
// @Success      200 {array}  apptask.TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, err := intParam(c.Query("projectId"), "projectId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, tasks)
}

// CreateTask godoc
// @ID           createTask
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body apptask.CreateTaskRequest true "Task"
// @Success      201 {object} apptask.TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req apptask.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// UpdateTaskStatus godoc
// @ID           updateTaskStatus
// @Summary      Change a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        taskId  path int                             true "Task ID"
// @Param        request body apptask.UpdateTaskStatusRequest true "New status"
// @Success      200 {object} apptask.TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{taskId}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	taskID, err := intParam(c.Param("taskId"), "taskId")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req apptask.UpdateTaskStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), taskID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, task)
}

// ListUserTasks godoc
// @ID           listTasksByUser
// @Summary      List a user's tasks
// @Description  Tasks the user authored or is assigned to, with author and assignee
// @Tags         tasks
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {array}  apptask.TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/user/{userId} [get]
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	userID, err := intParam(c.Param("userId"), "userId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tasks, err := h.tasks.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, tasks)
}
