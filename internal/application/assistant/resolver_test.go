package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nameLookup struct {
	id    int
	found bool
	seen  []string
}

func (n *nameLookup) FindIDByName(_ context.Context, name string) (int, bool, error) {
	n.seen = append(n.seen, name)
	return n.id, n.found, nil
}

func (n *nameLookup) FindIDByTitle(ctx context.Context, title string) (int, bool, error) {
	return n.FindIDByName(ctx, title)
}

type userLookup struct {
	identity.UserRepository
	*nameLookup
}

func (u userLookup) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	return u.nameLookup.FindIDByName(ctx, name)
}

type teamLookup struct {
	identity.TeamRepository
	*nameLookup
}

func (t teamLookup) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	return t.nameLookup.FindIDByName(ctx, name)
}

type projectLookup struct {
	project.Repository
	*nameLookup
}

func (p projectLookup) FindIDByName(ctx context.Context, name string) (int, bool, error) {
	return p.nameLookup.FindIDByName(ctx, name)
}

type taskLookup struct {
	task.Repository
	*nameLookup
}

func (t taskLookup) FindIDByTitle(ctx context.Context, title string) (int, bool, error) {
	return t.nameLookup.FindIDByTitle(ctx, title)
}

func TestRepositoryResolver_Resolve(t *testing.T) {
	users := &nameLookup{id: 1, found: true}
	teams := &nameLookup{id: 2, found: true}
	projects := &nameLookup{id: 3, found: true}
	tasks := &nameLookup{}

	r := NewRepositoryResolver(userLookup{nameLookup: users}, teamLookup{nameLookup: teams},
		projectLookup{nameLookup: projects}, taskLookup{nameLookup: tasks})
	ctx := context.Background()

	id, found, err := r.Resolve(ctx, EntityUser, "ali")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, id)

	id, _, _ = r.Resolve(ctx, EntityTeam, "core")
	assert.Equal(t, 2, id)

	id, _, _ = r.Resolve(ctx, EntityProject, "apollo")
	assert.Equal(t, 3, id)

	_, found, err = r.Resolve(ctx, EntityTask, "nothing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"nothing"}, tasks.seen)

	_, _, err = r.Resolve(ctx, EntityType("sprint"), "x")
	assert.Error(t, err)
}

func TestParseEntityType(t *testing.T) {
	et, err := ParseEntityType(" Project ")
	require.NoError(t, err)
	assert.Equal(t, EntityProject, et)

	_, err = ParseEntityType("epic")
	assert.Error(t, err)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]int
	ttls    map[string]time.Duration
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]int{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	id, ok := c.entries[key]
	return id, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, id int, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = id
	c.ttls[key] = ttl
	return nil
}

func TestCachedResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("hit skips the inner resolver", func(t *testing.T) {
		inner := &mapResolver{entries: map[EntityType]map[string]int{EntityProject: {"Apollo": 7}}}
		cache := newMapCache()
		r := NewCachedResolver(inner, cache, time.Minute)

		id, found, err := r.Resolve(ctx, EntityProject, "Apollo")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 7, id)
		assert.Equal(t, time.Minute, cache.ttls["assistant:resolve:project:apollo"])

		id, found, err = r.Resolve(ctx, EntityProject, "APOLLO")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 7, id)
		assert.Len(t, inner.lookups, 1)
	})

	t.Run("misses are not cached", func(t *testing.T) {
		inner := &mapResolver{}
		cache := newMapCache()
		r := NewCachedResolver(inner, cache, time.Minute)

		_, found, err := r.Resolve(ctx, EntityUser, "ghost")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, cache.entries)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		inner := &mapResolver{entries: map[EntityType]map[string]int{EntityTeam: {"core": 2}}}
		cache := newMapCache()
		cache.getErr = errors.New("redis: connection refused")
		r := NewCachedResolver(inner, cache, time.Minute)

		id, found, err := r.Resolve(ctx, EntityTeam, "core")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2, id)
	})

	t.Run("inner errors propagate", func(t *testing.T) {
		inner := &mapResolver{err: errors.New("db down")}
		r := NewCachedResolver(inner, newMapCache(), time.Minute)

		_, _, err := r.Resolve(ctx, EntityTask, "x")
		assert.EqualError(t, err, "db down")
	})
}

func TestResolverCacheKey_FoldsCaseAndSpace(t *testing.T) {
	assert.Equal(t,
		resolverCacheKey(EntityUser, "Alice   Smith"),
		resolverCacheKey(EntityUser, "alice smith"),
	)
	assert.NotEqual(t,
		resolverCacheKey(EntityUser, "alice"),
		resolverCacheKey(EntityTeam, "alice"),
	)
}
