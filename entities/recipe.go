package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	AuthorID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_name_author" json:"author_id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_recipe_name_author" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	ImageURL    string    `json:"image_url,omitempty"`
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1 AND cooking_time <= 32000" json:"cooking_time"`

	Author      *User               `gorm:"foreignKey:AuthorID"`
	Tags        []*Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []*RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Timestamp
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_ingredient_line" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_ingredient_line" json:"ingredient_id"`
	Amount       int       `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1 AND amount <= 32000" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	ensureID(&ri.ID)
	return nil
}

// RecipeTag is the join row behind Recipe.Tags.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:char(36);primaryKey"`
	TagID    uuid.UUID `gorm:"type:char(36);primaryKey;index"`
}

type Favorite struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

type ShoppingCart struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_shopping_cart_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_shopping_cart_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (s *ShoppingCart) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
