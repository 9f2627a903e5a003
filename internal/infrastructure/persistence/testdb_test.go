package persistence

import (
	"testing"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"github.com/projectmgmt/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixtureNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// setupTestDB opens an in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

// seedFixture loads a small workspace:
//
//	teams: 1 Apollo Crew (owner alice, manager bob), 2 Orion Squad
//	users: 1 alice (team 1), 2 bob (team 1), 3 carol (team 2)
//	projects: 1 Apollo Project, 2 Orion Launch, 3 Backyard Garden
//	project_teams: (1,1), (2,2)
//	tasks: 1 Design homepage (p1, author alice, assignee bob, overdue)
//	       2 Write API docs (p1, author bob, assignee alice, Completed)
//	       3 Apply paint (p2, author carol, no assignee, no status, overdue)
func seedFixture(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create([]models.TeamModel{
		{ID: 1, TeamName: "Apollo Crew", ProductOwnerUserID: ptr(1), ProjectManagerUserID: ptr(2)},
		{ID: 2, TeamName: "Orion Squad"},
	}).Error)
	require.NoError(t, db.Create([]models.UserModel{
		{UserID: 1, CognitoID: "sub-alice", Username: "alice", Email: ptr("alice@example.com"), ProfilePictureURL: ptr("p1.jpeg"), TeamID: ptr(1)},
		{UserID: 2, CognitoID: "sub-bob", Username: "bob", TeamID: ptr(1)},
		{UserID: 3, CognitoID: "sub-carol", Username: "carol", TeamID: ptr(2)},
	}).Error)
	require.NoError(t, db.Create([]models.ProjectModel{
		{ID: 1, Name: "Apollo Project", Description: ptr("Moon landing dashboard")},
		{ID: 2, Name: "Orion Launch", Description: ptr("Rocket apparatus")},
		{ID: 3, Name: "Backyard Garden", EndDate: ptr(fixtureNow)},
	}).Error)
	require.NoError(t, db.Create([]models.ProjectTeamModel{
		{ProjectID: 1, TeamID: 1},
		{ProjectID: 2, TeamID: 2},
	}).Error)
	require.NoError(t, db.Create([]models.TaskModel{
		{ID: 1, Title: "Design homepage", Status: ptr("Work In Progress"), Priority: ptr("High"),
			DueDate: ptr(fixtureNow.Add(-48 * time.Hour)), AuthorUserID: 1, AssignedUserID: ptr(2), ProjectID: 1},
		{ID: 2, Title: "Write API docs", Description: ptr("OpenAPI for the dashboard"), Status: ptr("Completed"),
			DueDate: ptr(fixtureNow.Add(-24 * time.Hour)), AuthorUserID: 2, AssignedUserID: ptr(1), ProjectID: 1},
		{ID: 3, Title: "Apply paint", DueDate: ptr(fixtureNow.Add(-time.Hour)), AuthorUserID: 3, ProjectID: 2},
	}).Error)
	require.NoError(t, db.Create([]models.CommentModel{
		{Text: "Looks good", TaskID: 1, UserID: 2},
	}).Error)
	require.NoError(t, db.Create([]models.AttachmentModel{
		{FileURL: "mock.png", FileName: ptr("mock.png"), TaskID: 1, UploadedByID: 1},
	}).Error)
}
