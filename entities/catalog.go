package entities

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID    uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name  string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`

	Timestamp
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit;index" json:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	// SearchName is Name folded in Go; SQLite's LOWER() only folds ASCII.
	SearchName      string    `gorm:"size:200;not null;index" json:"-"`

	Timestamp
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
