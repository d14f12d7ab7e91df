package follow

import (
	"context"

	"foodgram/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	FollowRepository interface {
		CreateFollow(ctx context.Context, follow *entities.Follow) error
		DeleteFollow(ctx context.Context, userID, authorID string) (bool, error)
		IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
		GetFollowedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
	}

	followRepository struct {
		db *gorm.DB
	}
)

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateFollow(ctx context.Context, follow *entities.Follow) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error
}

func (r *followRepository) DeleteFollow(ctx context.Context, userID, authorID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&entities.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowedAuthors pages through the authors userID follows, most recent
// follow first.
func (r *followRepository) GetFollowedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var authors []*entities.User
	var count int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID)

	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("follows.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	return authors, count, nil
}
