package recipe

import (
	"context"
	"errors"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error
		UpdateRecipe(ctx context.Context, id string, fields map[string]any, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error
		DeleteRecipe(ctx context.Context, id string) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string, page, limit int) ([]*entities.Recipe, int64, error)
		ExistsByNameAndAuthor(ctx context.Context, name, authorID, excludeID string) (bool, error)

		AddFavorite(ctx context.Context, favorite *entities.Favorite) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) (bool, error)
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)
		FavoritedIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error)

		AddToShoppingCart(ctx context.Context, entry *entities.ShoppingCart) error
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) (bool, error)
		IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error)
		InShoppingCartIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error)
		GetShoppingLines(ctx context.Context, userID string) ([]domain.ShoppingLine, error)

		GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name asc") }).
		Preload("Ingredients.Ingredient")
}

// CreateRecipe inserts the recipe with its tag links and line items in one
// transaction.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := createTagLinks(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return createLines(tx, recipe.ID, lines)
	})
}

// UpdateRecipe applies fields to the recipe row. A non-nil tagIDs or lines
// replaces the whole set; nil leaves it untouched.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, id string, fields map[string]any, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&entities.Recipe{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		if tagIDs != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeTag{}).Error; err != nil {
				return err
			}
			if err := createTagLinks(tx, recipeID, tagIDs); err != nil {
				return err
			}
		}

		if lines != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := createLines(tx, recipeID, lines); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRecipe removes the recipe and everything that hangs off it.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []any{
			&entities.RecipeIngredient{},
			&entities.RecipeTag{},
			&entities.Favorite{},
			&entities.ShoppingCart{},
		}
		for _, model := range dependents {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func createTagLinks(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]entities.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, entities.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	return tx.Create(&links).Error
}

func createLines(tx *gorm.DB, recipeID uuid.UUID, lines []*entities.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		line.RecipeID = recipeID
	}
	return tx.Omit(clause.Associations).Create(&lines).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	offset := (page - 1) * limit

	db := r.db.WithContext(ctx)
	query := db.Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		tagged := db.Model(&entities.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if userID != "" && filter.IsFavorited {
		favorited := db.Model(&entities.Favorite{}).Select("recipe_id").Where("user_id = ?", userID)
		query = query.Where("recipes.id IN (?)", favorited)
	}
	if userID != "" && filter.IsInShoppingCart {
		carted := db.Model(&entities.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", userID)
		query = query.Where("recipes.id IN (?)", carted)
	}

	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := withDetails(query).
		Order("recipes.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) ExistsByNameAndAuthor(ctx context.Context, name, authorID, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Where("name = ? AND author_id = ?", name, authorID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, favorite *entities.Favorite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(favorite).Error
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.removeEdge(ctx, &entities.Favorite{}, userID, recipeID)
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.edgeExists(ctx, &entities.Favorite{}, userID, recipeID)
}

func (r *recipeRepository) FavoritedIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	return r.edgeSet(ctx, &entities.Favorite{}, userID, recipeIDs)
}

func (r *recipeRepository) AddToShoppingCart(ctx context.Context, entry *entities.ShoppingCart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (r *recipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.removeEdge(ctx, &entities.ShoppingCart{}, userID, recipeID)
}

func (r *recipeRepository) IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.edgeExists(ctx, &entities.ShoppingCart{}, userID, recipeID)
}

func (r *recipeRepository) InShoppingCartIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	return r.edgeSet(ctx, &entities.ShoppingCart{}, userID, recipeIDs)
}

func (r *recipeRepository) removeEdge(ctx context.Context, model any, userID, recipeID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recipeRepository) edgeExists(ctx context.Context, model any, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// edgeSet returns which of recipeIDs the user has an edge to. Anonymous
// callers have none.
func (r *recipeRepository) edgeSet(ctx context.Context, model any, userID string, recipeIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(recipeIDs))
	if userID == "" || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// GetShoppingLines returns every line item of every recipe in the user's cart.
func (r *recipeRepository) GetShoppingLines(ctx context.Context, userID string) ([]domain.ShoppingLine, error) {
	var lines []domain.ShoppingLine
	if err := r.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// GetRecipesByAuthor returns the author's newest recipes. limit <= 0 means all.
func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe

	query := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID string
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
