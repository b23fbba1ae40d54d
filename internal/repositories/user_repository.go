package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "taskmaster.com/taskmaster/pkg/models"
)

var ErrDuplicateUser = errors.New("username or email already exists")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser relies on the unique indexes on username and email, so a
// concurrent registration of the same identity fails here rather than in a
// separate lookup.
func (r *UserRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID never loads the password hash.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.PublicUser, error) {
	var users []model.PublicUser
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Select("id", "username", "email", "created_at").
		Where("id = ?", id).
		Limit(1).
		Find(&users)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &users[0], nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
