package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stub repositories; only Search is exercised

type taskRepo struct {
	task.Repository
	result []task.Task
	err    error
	query  string
}

func (r *taskRepo) Search(_ context.Context, q string) ([]task.Task, error) {
	r.query = q
	return r.result, r.err
}

type projectRepo struct {
	project.Repository
	result []project.Project
	err    error
}

func (r *projectRepo) Search(context.Context, string) ([]project.Project, error) {
	return r.result, r.err
}

type userRepo struct {
	identity.UserRepository
	result []identity.User
	called bool
}

func (r *userRepo) Search(context.Context, string) ([]identity.User, error) {
	r.called = true
	return r.result, nil
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("groups matches", func(t *testing.T) {
		tr := &taskRepo{result: []task.Task{{ID: 1, Title: "Design schema"}}}
		pr := &projectRepo{result: []project.Project{{ID: 2, Name: "Design system"}}}
		ur := &userRepo{}

		got, err := NewSearchService(tr, pr, ur).Search(ctx, "design")
		require.NoError(t, err)
		assert.Equal(t, "design", tr.query)
		assert.Len(t, got.Tasks, 1)
		assert.Len(t, got.Projects, 1)
		assert.NotNil(t, got.Users)
		assert.Empty(t, got.Users)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"users":[]`)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		tr := &taskRepo{}
		pr := &projectRepo{err: errors.New("db down")}
		ur := &userRepo{}

		_, err := NewSearchService(tr, pr, ur).Search(ctx, "x")
		assert.EqualError(t, err, "db down")
		assert.False(t, ur.called)
	})
}
