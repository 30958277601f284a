package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	mockRepo "gatekeeper/internal/mocks/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheFixtures struct {
	repo  repository.UserRepository
	next  *mockRepo.MockUserRepository
	redis *miniredis.Miniredis
}

func newCacheFixtures(t *testing.T) cacheFixtures {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := mockRepo.NewMockUserRepository(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return cacheFixtures{
		repo:  NewCachedUserRepository(next, rdb, time.Minute, logger),
		next:  next,
		redis: mr,
	}
}

func testUser() *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCachedUserRepository_FindByID_ReadThrough(t *testing.T) {
	fx := newCacheFixtures(t)
	ctx := context.Background()
	user := testUser()

	fx.next.EXPECT().FindByID(ctx, user.ID).Return(user, nil).Once()

	first, err := fx.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, first)

	key := userKeyPrefix + user.ID.String()
	require.True(t, fx.redis.Exists(key))
	assert.NotContains(t, mustGet(t, fx.redis, key), user.PasswordHash)
	assert.Greater(t, fx.redis.TTL(key), time.Duration(0))

	second, err := fx.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, second.ID)
	assert.Equal(t, user.Name, second.Name)
	assert.Equal(t, user.Email, second.Email)
	assert.True(t, user.CreatedAt.Equal(second.CreatedAt))
	assert.Empty(t, second.PasswordHash)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()

	val, err := mr.Get(key)
	require.NoError(t, err)

	return val
}

func TestCachedUserRepository_FindByID_NotFoundIsNotCached(t *testing.T) {
	fx := newCacheFixtures(t)
	ctx := context.Background()
	id := uuid.New()

	fx.next.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrUserNotFound).Twice()

	for range 2 {
		user, err := fx.repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, user)
	}

	assert.False(t, fx.redis.Exists(userKeyPrefix+id.String()))
}

func TestCachedUserRepository_FindByID_CorruptEntryFallsBack(t *testing.T) {
	fx := newCacheFixtures(t)
	ctx := context.Background()
	user := testUser()

	require.NoError(t, fx.redis.Set(userKeyPrefix+user.ID.String(), "{not json"))
	fx.next.EXPECT().FindByID(ctx, user.ID).Return(user, nil).Once()

	got, err := fx.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestCachedUserRepository_FindByID_RedisDownFallsBack(t *testing.T) {
	fx := newCacheFixtures(t)
	ctx := context.Background()
	user := testUser()

	fx.redis.Close()
	fx.next.EXPECT().FindByID(ctx, user.ID).Return(user, nil).Once()

	got, err := fx.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestCachedUserRepository_PassThrough(t *testing.T) {
	fx := newCacheFixtures(t)
	ctx := context.Background()
	user := testUser()

	fx.next.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil).Twice()
	fx.next.EXPECT().Create(ctx, user).Return(domainerrors.ErrUserAlreadyExists).Once()

	for range 2 {
		got, err := fx.repo.FindByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
	}

	err := fx.repo.Create(ctx, user)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	assert.Empty(t, fx.redis.Keys())
}
