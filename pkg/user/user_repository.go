package user

import (
	"context"
	"errors"

	"foodgram/entities"

	"gorm.io/gorm"
)

type (
	UserRepository interface {
		RegisterUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		CheckEmailExists(ctx context.Context, email string) (bool, error)
		CheckUsernameExists(ctx context.Context, username string) (bool, error)
		GetUsers(ctx context.Context, page, limit int) ([]*entities.User, int64, error)
		UpdatePassword(ctx context.Context, id string, hash string) error
		HasFollowers(ctx context.Context, ids []string) (map[string]bool, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) RegisterUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) CheckUsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Select("id").Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *userRepository) GetUsers(ctx context.Context, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.User{})
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("username asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id string, hash string) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

// HasFollowers reports, per user id, whether anyone follows that user.
func (r *userRepository) HasFollowers(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var followed []string
	if err := r.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("author_id IN ?", ids).
		Distinct("author_id").
		Pluck("author_id", &followed).Error; err != nil {
		return nil, err
	}

	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
