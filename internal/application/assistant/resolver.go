package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/project"
	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// EntityType is a kind of entity that can be looked up by name
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityTeam    EntityType = "team"
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
)

// ParseEntityType accepts the four entity names in any case
func ParseEntityType(s string) (EntityType, error) {
	switch et := EntityType(strings.ToLower(strings.TrimSpace(s))); et {
	case EntityUser, EntityTeam, EntityProject, EntityTask:
		return et, nil
	}
	return "", shared.NewValidationError("unknown entity type %q", s)
}

// Resolver finds the id of the first entity whose name contains the given
// text, ignoring case
type Resolver interface {
	Resolve(ctx context.Context, entity EntityType, name string) (id int, found bool, err error)
}

// RepositoryResolver resolves names directly against the repositories
type RepositoryResolver struct {
	users    identity.UserRepository
	teams    identity.TeamRepository
	projects project.Repository
	tasks    task.Repository
}

// NewRepositoryResolver creates a new RepositoryResolver
func NewRepositoryResolver(
	users identity.UserRepository,
	teams identity.TeamRepository,
	projects project.Repository,
	tasks task.Repository,
) *RepositoryResolver {
	return &RepositoryResolver{users: users, teams: teams, projects: projects, tasks: tasks}
}

// Resolve implements Resolver
func (r *RepositoryResolver) Resolve(ctx context.Context, entity EntityType, name string) (int, bool, error) {
	switch entity {
	case EntityUser:
		return r.users.FindIDByName(ctx, name)
	case EntityTeam:
		return r.teams.FindIDByName(ctx, name)
	case EntityProject:
		return r.projects.FindIDByName(ctx, name)
	case EntityTask:
		return r.tasks.FindIDByTitle(ctx, name)
	default:
		return 0, false, shared.NewValidationError("unknown entity type %q", entity)
	}
}

// ResolverCache stores resolved ids. Implementations must be safe for
// concurrent use.
type ResolverCache interface {
	Get(ctx context.Context, key string) (id int, found bool, err error)
	Set(ctx context.Context, key string, id int, ttl time.Duration) error
}

// CachedResolver remembers successful lookups for ttl. Misses are not
// cached so a newly created entity is found on the next question.
type CachedResolver struct {
	inner Resolver
	cache ResolverCache
	ttl   time.Duration
}

// NewCachedResolver wraps inner with cache
func NewCachedResolver(inner Resolver, cache ResolverCache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, cache: cache, ttl: ttl}
}

// Resolve implements Resolver. Cache failures fall through to inner.
func (r *CachedResolver) Resolve(ctx context.Context, entity EntityType, name string) (int, bool, error) {
	key := resolverCacheKey(entity, name)
	log := logger.L(ctx)

	id, found, err := r.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Resolver cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		return id, true, nil
	}

	id, found, err = r.inner.Resolve(ctx, entity, name)
	if err != nil || !found {
		return id, found, err
	}

	if err := r.cache.Set(ctx, key, id, r.ttl); err != nil {
		log.Warn("Resolver cache write failed", zap.String("key", key), zap.Error(err))
	}
	return id, true, nil
}

func resolverCacheKey(entity EntityType, name string) string {
	folded := cases.Fold().String(strings.Join(strings.Fields(name), " "))
	return fmt.Sprintf("assistant:resolve:%s:%s", entity, folded)
}
