package migration

import (
	"fmt"

	"foodgram/entities"
	"foodgram/internal/logging"

	"gorm.io/gorm"
)

// Migrate creates or updates every table. Order follows foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entities.Recipe{}, "Tags", &entities.RecipeTag{}); err != nil {
		return fmt.Errorf("setup recipe tag join table: %w", err)
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"tag", &entities.Tag{}},
		{"ingredient", &entities.Ingredient{}},
		{"recipe", &entities.Recipe{}},
		{"recipe tag", &entities.RecipeTag{}},
		{"recipe ingredient", &entities.RecipeIngredient{}},
		{"favorite", &entities.Favorite{}},
		{"shopping cart", &entities.ShoppingCart{}},
		{"follow", &entities.Follow{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
	}

	logging.Info().Msg("database migration complete")
	return nil
}
