package models

import (
	"time"

	"github.com/projectmgmt/backend/internal/domain/task"
)

// TaskModel is the persistence model for tasks. Relations are only loaded
// when preloaded.
type TaskModel struct {
	ID             int     `gorm:"primaryKey;autoIncrement"`
	Title          string  `gorm:"type:varchar(255);not null"`
	Description    *string `gorm:"type:text"`
	Status         *string `gorm:"type:varchar(50)"`
	Priority       *string `gorm:"type:varchar(50)"`
	Tags           *string `gorm:"type:varchar(255)"`
	StartDate      *time.Time
	DueDate        *time.Time `gorm:"index"`
	Points         *int
	AssignedUserID *int `gorm:"index"`
	AuthorUserID   int  `gorm:"not null;index"`
	ProjectID      int  `gorm:"not null;index"`

	Author      *UserModel        `gorm:"foreignKey:AuthorUserID;references:UserID"`
	Assignee    *UserModel        `gorm:"foreignKey:AssignedUserID;references:UserID"`
	Project     *ProjectModel     `gorm:"foreignKey:ProjectID"`
	Comments    []CommentModel    `gorm:"foreignKey:TaskID"`
	Attachments []AttachmentModel `gorm:"foreignKey:TaskID"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the model and any loaded relations to a domain task
func (m *TaskModel) ToDomain() *task.Task {
	t := &task.Task{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Tags:           m.Tags,
		StartDate:      m.StartDate,
		DueDate:        m.DueDate,
		Points:         m.Points,
		AssignedUserID: m.AssignedUserID,
		AuthorUserID:   m.AuthorUserID,
		ProjectID:      m.ProjectID,
	}
	if m.Status != nil {
		st := task.Status(*m.Status)
		t.Status = &st
	}
	if m.Priority != nil {
		pr := task.Priority(*m.Priority)
		t.Priority = &pr
	}
	if m.Author != nil {
		t.Author = m.Author.ToDomain()
	}
	if m.Assignee != nil {
		t.Assignee = m.Assignee.ToDomain()
	}
	if m.Project != nil {
		t.Project = m.Project.ToDomain()
	}
	if m.Comments != nil {
		t.Comments = make([]task.Comment, len(m.Comments))
		for i := range m.Comments {
			t.Comments[i] = m.Comments[i].ToDomain()
		}
	}
	if m.Attachments != nil {
		t.Attachments = make([]task.Attachment, len(m.Attachments))
		for i := range m.Attachments {
			t.Attachments[i] = m.Attachments[i].ToDomain()
		}
	}
	return t
}

// FromDomain populates the scalar columns from a domain task
func (m *TaskModel) FromDomain(t *task.Task) {
	m.ID = t.ID
	m.Title = t.Title
	m.Description = t.Description
	m.Tags = t.Tags
	m.StartDate = t.StartDate
	m.DueDate = t.DueDate
	m.Points = t.Points
	m.AssignedUserID = t.AssignedUserID
	m.AuthorUserID = t.AuthorUserID
	m.ProjectID = t.ProjectID
	m.Status = nil
	if t.Status != nil {
		s := string(*t.Status)
		m.Status = &s
	}
	m.Priority = nil
	if t.Priority != nil {
		p := string(*t.Priority)
		m.Priority = &p
	}
}

// CommentModel is the persistence model for task comments
type CommentModel struct {
	ID     int    `gorm:"primaryKey;autoIncrement"`
	Text   string `gorm:"type:text;not null"`
	TaskID int    `gorm:"not null;index"`
	UserID int    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CommentModel) TableName() string {
	return "comments"
}

// ToDomain converts the model to a domain comment
func (m *CommentModel) ToDomain() task.Comment {
	return task.Comment{ID: m.ID, Text: m.Text, TaskID: m.TaskID, UserID: m.UserID}
}

// AttachmentModel is the persistence model for task attachments
type AttachmentModel struct {
	ID           int     `gorm:"primaryKey;autoIncrement"`
	FileURL      string  `gorm:"column:file_url;type:varchar(1024);not null"`
	FileName     *string `gorm:"type:varchar(255)"`
	TaskID       int     `gorm:"not null;index"`
	UploadedByID int     `gorm:"column:uploaded_by_id;not null"`
}

// TableName returns the table name for GORM
func (AttachmentModel) TableName() string {
	return "attachments"
}

// ToDomain converts the model to a domain attachment
func (m *AttachmentModel) ToDomain() task.Attachment {
	return task.Attachment{
		ID:           m.ID,
		FileURL:      m.FileURL,
		FileName:     m.FileName,
		TaskID:       m.TaskID,
		UploadedByID: m.UploadedByID,
	}
}
