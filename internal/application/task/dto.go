package task

import (
	"time"

	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	"github.com/projectmgmt/backend/internal/domain/task"
)

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required,max=255"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status" binding:"omitempty,taskstatus"`
	Priority       *string    `json:"priority" binding:"omitempty,taskpriority"`
	Tags           *string    `json:"tags" binding:"omitempty,max=500"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	Points         *int       `json:"points" binding:"omitempty,min=0"`
	ProjectID      int        `json:"projectId" binding:"required,gt=0"`
	AuthorUserID   int        `json:"authorUserId" binding:"required,gt=0"`
	AssignedUserID *int       `json:"assignedUserId" binding:"omitempty,gt=0"`
}

// UpdateTaskStatusRequest is the body of PATCH /tasks/:taskId/status
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,taskstatus"`
}

// CommentResponse is a comment in task listings
type CommentResponse struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	TaskID int    `json:"taskId"`
	UserID int    `json:"userId"`
}

// AttachmentResponse is an attachment in task listings
type AttachmentResponse struct {
	ID           int     `json:"id"`
	FileURL      string  `json:"fileURL"`
	FileName     *string `json:"fileName"`
	TaskID       int     `json:"taskId"`
	UploadedByID int     `json:"uploadedById"`
}

// TaskResponse is the JSON shape of a task. Relations appear only when
// they were loaded.
type TaskResponse struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	Tags           *string    `json:"tags"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	Points         *int       `json:"points"`
	ProjectID      int        `json:"projectId"`
	AuthorUserID   int        `json:"authorUserId"`
	AssignedUserID *int       `json:"assignedUserId"`

	Author      *appidentity.UserResponse   `json:"author,omitempty"`
	Assignee    *appidentity.UserResponse   `json:"assignee,omitempty"`
	Project     *appproject.ProjectResponse `json:"project,omitempty"`
	Comments    *[]CommentResponse          `json:"comments,omitempty"`
	Attachments *[]AttachmentResponse       `json:"attachments,omitempty"`
}

// ToTaskResponse converts a domain task. inc decides whether empty
// comment and attachment lists are rendered as [] or left out.
func ToTaskResponse(t *task.Task, inc task.Include) TaskResponse {
	resp := TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Tags:           t.Tags,
		StartDate:      t.StartDate,
		DueDate:        t.DueDate,
		Points:         t.Points,
		ProjectID:      t.ProjectID,
		AuthorUserID:   t.AuthorUserID,
		AssignedUserID: t.AssignedUserID,
	}
	if t.Status != nil {
		s := string(*t.Status)
		resp.Status = &s
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		resp.Priority = &p
	}
	if t.Author != nil {
		u := appidentity.ToUserResponse(t.Author)
		resp.Author = &u
	}
	if t.Assignee != nil {
		u := appidentity.ToUserResponse(t.Assignee)
		resp.Assignee = &u
	}
	if t.Project != nil {
		p := appproject.ToProjectResponse(t.Project)
		resp.Project = &p
	}
	if inc.Comments {
		comments := make([]CommentResponse, len(t.Comments))
		for i, c := range t.Comments {
			comments[i] = CommentResponse{ID: c.ID, Text: c.Text, TaskID: c.TaskID, UserID: c.UserID}
		}
		resp.Comments = &comments
	}
	if inc.Attachments {
		attachments := make([]AttachmentResponse, len(t.Attachments))
		for i, a := range t.Attachments {
			attachments[i] = AttachmentResponse{
				ID:           a.ID,
				FileURL:      a.FileURL,
				FileName:     a.FileName,
				TaskID:       a.TaskID,
				UploadedByID: a.UploadedByID,
			}
		}
		resp.Attachments = &attachments
	}
	return resp
}

// ToTaskResponses converts a slice, never returning nil
func ToTaskResponses(tasks []task.Task, inc task.Include) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i], inc)
	}
	return out
}
