package cached

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fuser-service/internal/adapter/cache"
	domain "fuser-service/internal/domain/user"
	"fuser-service/internal/usecase/user"
)

type mockDBRepo struct {
	mock.Mock
}

func (m *mockDBRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockDBRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockDBRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockDBRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockDBRepo) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockDBRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDBRepo) AdjustBalance(ctx context.Context, id, delta int64) (int64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(int64), args.Error(1)
}

func setupCachedRepo(t *testing.T) (user.Repository, *mockDBRepo, cache.UserCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	c := cache.NewRedisUserCache(client, time.Minute, log)
	dbRepo := new(mockDBRepo)
	return NewUserRepository(dbRepo, c, log), dbRepo, c
}

func TestCachedGetByID_PopulatesCache(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	stored := &domain.User{ID: 1, Username: "fuser", Balance: 50}
	dbRepo.On("GetByID", ctx, int64(1)).Return(stored, nil).Once()

	// First read hits the database
	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "fuser", got.Username)

	// Second read is served from cache; the mock would fail on a second call
	got, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Balance)

	dbRepo.AssertExpectations(t)
}

func TestCachedGetByID_ErrorPassesThrough(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	dbRepo.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrNotFound)

	_, err := repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedUpdate_InvalidatesCache(t *testing.T) {
	repo, dbRepo, c := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Username: "fuser", Email: "old@example.com"}))

	updated := &domain.User{ID: 1, Username: "fuser", Email: "new@example.com"}
	dbRepo.On("Update", ctx, updated).Return(updated, nil)

	_, err := repo.Update(ctx, updated)
	require.NoError(t, err)

	cachedUser, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, cachedUser)
}

func TestCachedDelete_InvalidatesCache(t *testing.T) {
	repo, dbRepo, c := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Username: "fuser"}))
	dbRepo.On("Delete", ctx, int64(1)).Return(nil)

	require.NoError(t, repo.Delete(ctx, 1))

	cachedUser, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, cachedUser)
}

func TestCachedAdjustBalance_InvalidatesCache(t *testing.T) {
	repo, dbRepo, c := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Username: "fuser", Balance: 50}))
	dbRepo.On("AdjustBalance", ctx, int64(1), int64(100)).Return(int64(150), nil)

	balance, err := repo.AdjustBalance(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	// The stale balance must not survive the adjustment
	cachedUser, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, cachedUser)
}

func TestCachedGetByUsername_BypassesCache(t *testing.T) {
	repo, dbRepo, c := setupCachedRepo(t)
	ctx := context.Background()

	// Cached copy exists but username lookups must see the database
	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Username: "fuser"}))
	dbRepo.On("GetByUsername", ctx, "fuser").Return(nil, nil)

	got, err := repo.GetByUsername(ctx, "fuser")
	require.NoError(t, err)
	assert.Nil(t, got)
	dbRepo.AssertExpectations(t)
}
