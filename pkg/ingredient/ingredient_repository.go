package ingredient

import (
	"context"
	"strings"

	"foodgram/entities"

	"gorm.io/gorm"
)

type (
	IngredientRepository interface {
		SearchIngredients(ctx context.Context, prefix string) ([]*entities.Ingredient, error)
		GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error)
		GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error)
		CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

// likeEscaper makes user input literal inside a LIKE pattern. '!' is used as
// the escape character because MySQL treats a backslash in a literal as an
// escape of its own.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// SearchIngredients returns ingredients whose name starts with prefix,
// ignoring case, ordered by name. An empty prefix returns the whole catalog.
func (r *ingredientRepository) SearchIngredients(ctx context.Context, prefix string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient

	query := r.db.WithContext(ctx)
	if prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		query = query.Where("search_name LIKE ? ESCAPE '!'", pattern)
	}

	if err := query.Order("name asc").Order("measurement_unit asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}
