package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fuser-service/internal/adapter/cache"
	domain "fuser-service/internal/domain/user"
	"fuser-service/internal/usecase/user"
)

// UserRepository implements user.Repository with cache-aside reads.
// It wraps a persistent repository and invalidates the cached record after
// every mutation. Balance adjustments always go straight to the database;
// the cache only ever sees the committed result of the locked update.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository creates a caching decorator around dbRepo.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &UserRepository{dbRepo: dbRepo, cache: cache, log: log}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using the cache-aside pattern, with
// single-flight protection against cache stampedes.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if cachedUser, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	key := fmt.Sprintf("user:%d", id)
	result, err, _ := r.group.Do(key, func() (any, error) {
		// Another request may have populated the cache while we waited
		if cachedUser, err := r.cache.Get(ctx, id); err == nil && cachedUser != nil {
			return cachedUser, nil
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.User), nil
}

// GetByUsername delegates to the DB repository; uniqueness checks must not
// observe stale data.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.dbRepo.GetByUsername(ctx, username)
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.User, error) {
	return r.dbRepo.List(ctx, filter)
}

// Update delegates to the DB repository and invalidates the cached record.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, u.ID)
	return updated, nil
}

// Delete delegates to the DB repository and invalidates the cached record.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// AdjustBalance delegates to the DB repository's locked read-modify-write
// and invalidates the cached record afterwards.
func (r *UserRepository) AdjustBalance(ctx context.Context, id, delta int64) (int64, error) {
	balance, err := r.dbRepo.AdjustBalance(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, id)
	return balance, nil
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.Int64("id", id), zap.Error(err))
	}
}
