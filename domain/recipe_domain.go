package domain

import (
	"errors"
	"time"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 32000
	MinAmount      = 1
	MaxAmount      = 32000

	ShoppingListHeader   = "SHOPPING LIST"
	ShoppingListFilename = "shopping_list.txt"
)

var (
	MessageSuccessGetRecipes          = "success get recipes"
	MessageSuccessGetRecipeDetail     = "success get recipe detail"
	MessageSuccessCreateRecipe        = "recipe created successfully"
	MessageSuccessUpdateRecipe        = "recipe updated successfully"
	MessageSuccessDeleteRecipe        = "recipe deleted successfully"
	MessageSuccessAddFavorite         = "recipe added to favorites"
	MessageSuccessRemoveFavorite      = "recipe removed from favorites"
	MessageSuccessAddShoppingCart     = "recipe added to shopping cart"
	MessageSuccessRemoveShoppingCart  = "recipe removed from shopping cart"
	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedAddFavorite          = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite       = "failed to remove recipe from favorites"
	MessageFailedAddShoppingCart      = "failed to add recipe to shopping cart"
	MessageFailedRemoveShoppingCart   = "failed to remove recipe from shopping cart"
	MessageFailedDownloadShoppingList = "failed to build shopping list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrRecipeNameTaken       = errors.New("you already have a recipe with this name")
	ErrRecipeNameEmpty       = errors.New("recipe name must not be blank")
	ErrCookingTimeOutOfRange = errors.New("cooking time must be between 1 and 32000 minutes")
	ErrAmountOutOfRange      = errors.New("ingredient amount must be between 1 and 32000")
	ErrEmptyTags             = errors.New("at least one tag is required")
	ErrEmptyIngredients      = errors.New("at least one ingredient is required")
	ErrDuplicateTag          = errors.New("tags must not repeat")
	ErrDuplicateIngredient   = errors.New("ingredients must not repeat")
	ErrUnknownTag            = errors.New("one or more tags do not exist")
	ErrUnknownIngredient     = errors.New("one or more ingredients do not exist")
	ErrInvalidImage          = errors.New("image must be a base64 encoded data URI")
	ErrStorageUnavailable    = errors.New("image storage is not configured")
	ErrAlreadyFavorited      = errors.New("recipe is already in favorites")
	ErrNotFavorited          = errors.New("recipe is not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe is already in the shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in the shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1,max=32000"`
	}

	CreateRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
		Image       string                    `json:"image"`
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1,max=32000"`
	}

	// UpdateRecipeRequest carries only the fields the caller supplied. A
	// non-nil Tags or Ingredients slice replaces the whole set.
	UpdateRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"omitempty,dive"`
		Tags        []string                  `json:"tags" validate:"omitempty,dive,uuid"`
		Image       *string                   `json:"image"`
		Name        *string                   `json:"name" validate:"omitempty,min=1,max=200"`
		Text        *string                   `json:"text" validate:"omitempty,min=1"`
		CookingTime *int                      `json:"cooking_time" validate:"omitempty,min=1,max=32000"`
	}

	RecipeFilter struct {
		AuthorID         string
		Tags             []string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
		PubDate          time.Time                  `json:"pub_date"`
	}

	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// ShoppingLine is one recipe line item reachable from a user's cart.
	ShoppingLine struct {
		Name            string
		MeasurementUnit string
		Amount          int
	}

	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}
)
