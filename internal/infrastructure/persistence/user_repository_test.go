package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	seedFixture(t, db)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	t.Run("FindAll", func(t *testing.T) {
		users, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "alice", users[0].Username)
		assert.True(t, users[0].HasProfilePicture())
		assert.False(t, users[1].HasProfilePicture())
	})

	t.Run("FindByCognitoID", func(t *testing.T) {
		u, err := repo.FindByCognitoID(ctx, "sub-carol")
		require.NoError(t, err)
		assert.Equal(t, 3, u.UserID)

		_, err = repo.FindByCognitoID(ctx, "missing")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("FindByID", func(t *testing.T) {
		u, err := repo.FindByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "bob", u.Username)
	})

	t.Run("FindByTeam", func(t *testing.T) {
		users, err := repo.FindByTeam(ctx, 1)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})

	t.Run("FindByProject follows project teams", func(t *testing.T) {
		users, err := repo.FindByProject(ctx, 2)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "carol", users[0].Username)

		users, err = repo.FindByProject(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("Search matches username only", func(t *testing.T) {
		users, err := repo.Search(ctx, "AL")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
	})

	t.Run("FindIDByName", func(t *testing.T) {
		id, ok, err := repo.FindIDByName(ctx, "Carol")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, id)
	})
}

func TestGormTeamRepository(t *testing.T) {
	db := setupTestDB(t)
	seedFixture(t, db)
	repo := NewGormTeamRepository(db)
	ctx := context.Background()

	t.Run("FindAllWithLeads resolves usernames", func(t *testing.T) {
		teams, err := repo.FindAllWithLeads(ctx)
		require.NoError(t, err)
		require.Len(t, teams, 2)

		assert.Equal(t, "Apollo Crew", teams[0].TeamName)
		require.NotNil(t, teams[0].ProductOwnerUsername)
		assert.Equal(t, "alice", *teams[0].ProductOwnerUsername)
		require.NotNil(t, teams[0].ProjectManagerUsername)
		assert.Equal(t, "bob", *teams[0].ProjectManagerUsername)

		assert.Nil(t, teams[1].ProductOwnerUsername)
		assert.Nil(t, teams[1].ProjectManagerUsername)
	})

	t.Run("FindIDByName", func(t *testing.T) {
		id, ok, err := repo.FindIDByName(ctx, "orion")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, id)

		_, ok, err = repo.FindIDByName(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
