package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge from UserID (the follower) to AuthorID.
type Follow struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_follow_user_author;index;check:chk_follow_not_self,user_id <> author_id" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	User   *User `gorm:"foreignKey:UserID"`
	Author *User `gorm:"foreignKey:AuthorID"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
