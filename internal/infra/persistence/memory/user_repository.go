// Package memory provides an in-process user store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/errors"

	"github.com/google/uuid"
)

// userRepository keeps users in maps guarded by a single RWMutex.
// Create checks and inserts under the write lock, so email uniqueness
// holds across concurrent registrations.
type userRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]entity.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

// NewUserRepository returns an empty in-memory store.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:    make(map[uuid.UUID]entity.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	user, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := repo.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user := repo.byID[id]

	return &user, nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domainerrors.ErrUserCreationFailed.WrapMessage("generate user id")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	// Emails compare byte for byte, like the PostgreSQL unique index.
	if _, exists := repo.byEmail[user.Email]; exists {
		return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
	}

	now := repo.now()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	repo.byID[id] = *user
	repo.byEmail[user.Email] = id

	return nil
}
