// Package integration runs the repositories and the HTTP stack against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/projectmgmt/backend/internal/infrastructure/migration"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// fixtureNow is the clock the seeded due dates are relative to
var fixtureNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// one migrated server per package run
var pg struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	cfg       config.DatabaseConfig
}

// TestDB is a connection to the shared, freshly truncated database
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// NewSharedTestDB connects to the package's PostgreSQL container, starting
// and migrating it on first use, and empties every table.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	pg.Lock()
	defer pg.Unlock()
	if pg.container == nil {
		startPostgres(ctx, t)
	}

	opts := []persistence.OpenOption{persistence.WithConnectRetry(3, 200*time.Millisecond)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		opts = append(opts, persistence.WithLogger(logger.Default.LogMode(logger.Info)))
	}
	db, err := persistence.Open(ctx, &pg.cfg, opts...)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	tdb := &TestDB{Database: db, t: t}
	tdb.truncate()
	return tdb
}

func startPostgres(ctx context.Context, t *testing.T) {
	t.Helper()

	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pm_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "admin123",
		DBName:          "pm_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}
	db, err := persistence.Open(ctx, &cfg, persistence.WithConnectRetry(5, 200*time.Millisecond))
	require.NoError(t, err, "connect to postgres container")
	defer db.Close()

	m, err := migration.New(db.SQL(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "apply migrations")

	pg.container, pg.cfg = c, cfg
}

// truncate empties every application table and resets the serials
func (tdb *TestDB) truncate() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	quoted := make([]string, len(tables))
	for i, tbl := range tables {
		quoted[i] = fmt.Sprintf("%q", tbl)
	}
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+strings.Join(quoted, ", ")+" RESTART IDENTITY CASCADE").Error)
}

// Seed loads the workspace most tests run against:
//
//	teams: 1 Apollo Crew (owner alice, manager bob), 2 Orion Squad
//	users: 1 alice, 2 bob (team 1), 3 carol (team 2)
//	projects: 1 Apollo Project, 2 Orion Launch, 3 Backyard Garden
//	tasks: 1 Design homepage (p1, wip, overdue), 2 Write API docs (p1, Completed),
//	       3 Apply paint (p2, no status, overdue), 4 Water tomatoes (p3, To Do, due later)
func (tdb *TestDB) Seed() {
	tdb.t.Helper()
	db := tdb.DB

	// teams and users reference each other; leads are set once both exist
	require.NoError(tdb.t, db.Create([]models.TeamModel{
		{ID: 1, TeamName: "Apollo Crew"},
		{ID: 2, TeamName: "Orion Squad"},
	}).Error)
	require.NoError(tdb.t, db.Create([]models.UserModel{
		{UserID: 1, CognitoID: "sub-alice", Username: "alice", Email: ptr("alice@example.com"), ProfilePictureURL: ptr("p1.jpeg"), TeamID: ptr(1)},
		{UserID: 2, CognitoID: "sub-bob", Username: "bob", TeamID: ptr(1)},
		{UserID: 3, CognitoID: "sub-carol", Username: "carol", TeamID: ptr(2)},
	}).Error)
	require.NoError(tdb.t, db.Model(&models.TeamModel{}).Where("id = ?", 1).
		Updates(map[string]any{"product_owner_user_id": 1, "project_manager_user_id": 2}).Error)

	require.NoError(tdb.t, db.Create([]models.ProjectModel{
		{ID: 1, Name: "Apollo Project", Description: ptr("Moon landing dashboard")},
		{ID: 2, Name: "Orion Launch", Description: ptr("Rocket apparatus")},
		{ID: 3, Name: "Backyard Garden", EndDate: ptr(fixtureNow)},
	}).Error)
	require.NoError(tdb.t, db.Create([]models.ProjectTeamModel{
		{ProjectID: 1, TeamID: 1},
		{ProjectID: 2, TeamID: 2},
	}).Error)
	require.NoError(tdb.t, db.Omit("Author", "Assignee", "Project", "Comments", "Attachments").Create([]models.TaskModel{
		{ID: 1, Title: "Design homepage", Status: ptr("Work In Progress"), Priority: ptr("High"),
			DueDate: ptr(fixtureNow.Add(-48 * time.Hour)), AuthorUserID: 1, AssignedUserID: ptr(2), ProjectID: 1},
		{ID: 2, Title: "Write API docs", Description: ptr("OpenAPI for the 100% dashboard"), Status: ptr("Completed"),
			DueDate: ptr(fixtureNow.Add(-24 * time.Hour)), AuthorUserID: 2, AssignedUserID: ptr(1), ProjectID: 1},
		{ID: 3, Title: "Apply paint", DueDate: ptr(fixtureNow.Add(-time.Hour)), AuthorUserID: 3, ProjectID: 2},
		{ID: 4, Title: "Water tomatoes", Status: ptr("To Do"), Priority: ptr("Low"),
			DueDate: ptr(fixtureNow.Add(72 * time.Hour)), AuthorUserID: 3, AssignedUserID: ptr(3), ProjectID: 3},
	}).Error)
	require.NoError(tdb.t, db.Create([]models.CommentModel{
		{Text: "Looks good", TaskID: 1, UserID: 2},
	}).Error)
	require.NoError(tdb.t, db.Create([]models.AttachmentModel{
		{FileURL: "mock.png", FileName: ptr("mock.png"), TaskID: 1, UploadedByID: 1},
	}).Error)

	// explicit ids leave the serial sequences behind
	for _, seq := range []struct{ table, column string }{
		{"teams", "id"}, {"users", "user_id"}, {"projects", "id"}, {"tasks", "id"},
	} {
		require.NoError(tdb.t, db.Exec(fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), (SELECT MAX(%s) FROM %s))",
			seq.table, seq.column, seq.column, seq.table)).Error)
	}
}

// stopPostgres terminates the shared container. TestMain calls it.
func stopPostgres() {
	pg.Lock()
	defer pg.Unlock()
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
	pg.container = nil
}

func ptr[T any](v T) *T { return &v }
