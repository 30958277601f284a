// Package postgres stores users in PostgreSQL through GORM.
package postgres

import (
	"context"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a UserRepository backed by the users table.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByEmail compares the address exactly; no case folding is applied.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var row model.UserModel
	err := repo.db.WithContext(ctx).Where(query, arg).Take(&row).Error
	switch {
	case err == nil:
		return row.ToEntity(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repository.ErrUserNotFound
	default:
		return nil, domainerrors.NewDatabaseExecuteError(err, "select user where "+query)
	}
}

// Create inserts user and copies the generated id and timestamps back onto it.
// A concurrent registration of the same email loses on the users_email_key
// index and gets ErrUserAlreadyExists.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	row := model.NewUserModel(user)

	err := repo.db.WithContext(ctx).Create(row).Error
	switch {
	case err == nil:
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrUserAlreadyExists.WrapMessage("insert user")
	case isNotNullConstraintViolation(err):
		return domainerrors.ErrUserCreationFailed.WrapMessage("insert user with missing column")
	default:
		return domainerrors.NewDatabaseExecuteError(err, "insert user")
	}

	user.ID, user.CreatedAt, user.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt

	return nil
}
