package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "gatekeeper:user:id:"

// cachedUser is the cached form of a user. The password hash is never written to Redis.
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// cachedUserRepository decorates a UserRepository with a read-through cache
// for FindByID. Users served from the cache carry no PasswordHash, so
// credential checks must go through FindByEmail, which is never cached.
// Users are never updated, so entries only expire.
type cachedUserRepository struct {
	next   repository.UserRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedUserRepository wraps next with the Redis cache.
func NewCachedUserRepository(next repository.UserRepository, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) repository.UserRepository {
	return &cachedUserRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (repo *cachedUserRepository) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, repo.logger)
}

// FindByID serves the user from Redis when present. Cache failures degrade
// to a store lookup.
func (repo *cachedUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	key := userKeyPrefix + id.String()

	user, err := repo.get(ctx, key)
	if err != nil {
		repo.log(ctx).Warn("User cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if user != nil {
		return user, nil
	}

	user, err = repo.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := repo.set(ctx, key, user); err != nil {
		repo.log(ctx).Warn("User cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return user, nil
}

func (repo *cachedUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.next.FindByEmail(ctx, email)
}

func (repo *cachedUserRepository) Create(ctx context.Context, user *entity.User) error {
	return repo.next.Create(ctx, user)
}

// get returns nil, nil on a cache miss.
func (repo *cachedUserRepository) get(ctx context.Context, key string) (*entity.User, error) {
	raw, err := repo.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, errors.Wrap(err, "decode cached user")
	}

	return &entity.User{
		ID:        cached.ID,
		Name:      cached.Name,
		Email:     cached.Email,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, nil
}

func (repo *cachedUserRepository) set(ctx context.Context, key string, user *entity.User) error {
	raw, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "encode cached user")
	}

	return errors.Wrap(repo.rdb.Set(ctx, key, raw, repo.ttl).Err(), "redis set")
}
