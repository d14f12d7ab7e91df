package recipe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/authz"
	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/tag"
	"foodgram/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const imageFolder = "recipes"

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, userID, role string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id string, userID, role string) error
		GetRecipeByID(ctx context.Context, id string, userID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string, page, limit int) ([]domain.RecipeResponse, domain.Pagination, error)

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error
		DownloadShoppingList(ctx context.Context, userID string) ([]byte, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		userRepository       user.UserRepository
		storage              storage.ObjectStorage
	}
)

// NewRecipeService wires the recipe use cases. objectStorage may be nil, in
// which case requests carrying an image are rejected.
func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	userRepository user.UserRepository,
	objectStorage storage.ObjectStorage,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		userRepository:       userRepository,
		storage:              objectStorage,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.RecipeResponse{}, domain.ErrRecipeNameEmpty
	}
	if err := checkCookingTime(req.CookingTime); err != nil {
		return domain.RecipeResponse{}, err
	}
	tagIDs, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	lines, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	taken, err := s.recipeRepository.ExistsByNameAndAuthor(ctx, name, userID, "")
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if taken {
		return domain.RecipeResponse{}, domain.ErrRecipeNameTaken
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tagIDs, lines); err != nil {
		s.removeImage(ctx, imageURL)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeNameTaken
		}
		return domain.RecipeResponse{}, err
	}

	metrics.RecipesCreated.Inc()
	logging.Info().Str("recipe_id", recipe.ID.String()).Str("author_id", userID).Msg("recipe created")

	return s.GetRecipeByID(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, userID, role string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if !authz.IsAuthorOrAdmin(userID, role, recipe.AuthorID.String()) {
		return domain.RecipeResponse{}, domain.ErrForbidden
	}

	fields := make(map[string]any)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.RecipeResponse{}, domain.ErrRecipeNameEmpty
		}
		taken, err := s.recipeRepository.ExistsByNameAndAuthor(ctx, name, recipe.AuthorID.String(), recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		if taken {
			return domain.RecipeResponse{}, domain.ErrRecipeNameTaken
		}
		fields["name"] = name
	}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.CookingTime != nil {
		if err := checkCookingTime(*req.CookingTime); err != nil {
			return domain.RecipeResponse{}, err
		}
		fields["cooking_time"] = *req.CookingTime
	}

	var tagIDs []uuid.UUID
	if req.Tags != nil {
		if tagIDs, err = s.resolveTags(ctx, req.Tags); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var lines []*entities.RecipeIngredient
	if req.Ingredients != nil {
		if lines, err = s.resolveIngredients(ctx, req.Ingredients); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var newImage string
	if req.Image != nil {
		if newImage, err = s.uploadImage(ctx, *req.Image); err != nil {
			return domain.RecipeResponse{}, err
		}
		fields["image_url"] = newImage
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, id, fields, tagIDs, lines); err != nil {
		s.removeImage(ctx, newImage)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeNameTaken
		}
		if isNotFound(err) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if req.Image != nil && recipe.ImageURL != newImage {
		s.removeImage(ctx, recipe.ImageURL)
	}

	return s.GetRecipeByID(ctx, id, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id string, userID, role string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if !authz.IsAuthorOrAdmin(userID, role, recipe.AuthorID.String()) {
		return domain.ErrForbidden
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, id); err != nil {
		if isNotFound(err) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	s.removeImage(ctx, recipe.ImageURL)
	logging.Info().Str("recipe_id", id).Str("user_id", userID).Msg("recipe deleted")
	return nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id string, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	res, err := s.toRecipeResponses(ctx, []*entities.Recipe{recipe}, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return res[0], nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string, page, limit int) ([]domain.RecipeResponse, domain.Pagination, error) {
	recipes, total, err := s.recipeRepository.GetRecipes(ctx, filter, userID, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	res, err := s.toRecipeResponses(ctx, recipes, userID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return res, domain.NewPagination(page, limit, total), nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.getEdgeTarget(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	exists, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if exists {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, &entities.Favorite{UserID: uid, RecipeID: recipe.ID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}

	metrics.RecordSocialEdge("favorite", "add")
	return ToRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getEdgeTarget(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFavorited
	}

	metrics.RecordSocialEdge("favorite", "remove")
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.getEdgeTarget(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	exists, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if exists {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
	}

	if err := s.recipeRepository.AddToShoppingCart(ctx, &entities.ShoppingCart{UserID: uid, RecipeID: recipe.ID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeShortResponse{}, err
	}

	metrics.RecordSocialEdge("shopping_cart", "add")
	return ToRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getEdgeTarget(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotInShoppingCart
	}

	metrics.RecordSocialEdge("shopping_cart", "remove")
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID string) ([]byte, error) {
	lines, err := s.recipeRepository.GetShoppingLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics.ShoppingListDownloads.Inc()
	return RenderShoppingList(BuildShoppingList(lines)), nil
}

func (s *recipeService) getEdgeTarget(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func checkCookingTime(minutes int) error {
	if minutes < domain.MinCookingTime || minutes > domain.MaxCookingTime {
		return domain.ErrCookingTimeOutOfRange
	}
	return nil
}

// resolveTags checks that ids is non-empty, has no repeats and names only
// existing tags.
func (s *recipeService) resolveTags(ctx context.Context, ids []string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, domain.ErrEmptyTags
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.ErrUnknownTag
		}
		if _, dup := seen[id]; dup {
			return nil, domain.ErrDuplicateTag
		}
		seen[id] = struct{}{}
		parsed = append(parsed, id)
	}

	keys := make([]string, 0, len(parsed))
	for _, id := range parsed {
		keys = append(keys, id.String())
	}
	tags, err := s.tagRepository.GetTagsByIDs(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(parsed) {
		return nil, domain.ErrUnknownTag
	}
	return parsed, nil
}

// resolveIngredients checks bounds, repeats and existence of every line.
func (s *recipeService) resolveIngredients(ctx context.Context, items []domain.IngredientAmountRequest) ([]*entities.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyIngredients
	}

	lines := make([]*entities.RecipeIngredient, 0, len(items))
	keys := make([]string, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, domain.ErrUnknownIngredient
		}
		if _, dup := seen[id]; dup {
			return nil, domain.ErrDuplicateIngredient
		}
		if item.Amount < domain.MinAmount || item.Amount > domain.MaxAmount {
			return nil, domain.ErrAmountOutOfRange
		}
		seen[id] = struct{}{}
		keys = append(keys, id.String())
		lines = append(lines, &entities.RecipeIngredient{IngredientID: id, Amount: item.Amount})
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(found) != len(lines) {
		return nil, domain.ErrUnknownIngredient
	}
	return lines, nil
}

// uploadImage stores a base64 data URI and returns its public URL. An empty
// payload means no image.
func (s *recipeService) uploadImage(ctx context.Context, dataURI string) (string, error) {
	if dataURI == "" {
		return "", nil
	}
	if s.storage == nil {
		return "", domain.ErrStorageUnavailable
	}

	image, err := storage.DecodeBase64Image(dataURI)
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	key, err := s.storage.UploadFile(ctx, uuid.NewString(), image, imageFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			return "", domain.ErrInvalidImage
		}
		return "", fmt.Errorf("upload recipe image: %w", err)
	}
	return s.storage.GetPublicLinkKey(key), nil
}

// removeImage deletes a stored image. Failures leave an orphaned object and
// are only logged.
func (s *recipeService) removeImage(ctx context.Context, link string) {
	if link == "" || s.storage == nil {
		return
	}
	key := s.storage.GetObjectKeyFromLink(link)
	if key == "" {
		return
	}
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		logging.Warn().Err(err).Str("object_key", key).Msg("failed to delete recipe image")
	}
}

func (s *recipeService) toRecipeResponses(ctx context.Context, recipes []*entities.Recipe, userID string) ([]domain.RecipeResponse, error) {
	ids := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID.String())
		if !slices.Contains(authorIDs, r.AuthorID.String()) {
			authorIDs = append(authorIDs, r.AuthorID.String())
		}
	}

	followed, err := s.userRepository.HasFollowers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := s.recipeRepository.FavoritedIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	carted, err := s.recipeRepository.InShoppingCartIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		id := r.ID.String()

		tags := make([]domain.TagResponse, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, tag.ToTagResponse(t))
		}

		ingredients := make([]domain.RecipeIngredientResponse, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			item := domain.RecipeIngredientResponse{ID: line.IngredientID.String(), Amount: line.Amount}
			if line.Ingredient != nil {
				item.Name = line.Ingredient.Name
				item.MeasurementUnit = line.Ingredient.MeasurementUnit
			}
			ingredients = append(ingredients, item)
		}
		slices.SortFunc(ingredients, func(a, b domain.RecipeIngredientResponse) int {
			return strings.Compare(a.Name, b.Name)
		})

		var author domain.UserResponse
		if r.Author != nil {
			author = user.ToUserResponse(r.Author, followed[r.AuthorID.String()])
		}

		res = append(res, domain.RecipeResponse{
			ID:               id,
			Tags:             tags,
			Author:           author,
			Ingredients:      ingredients,
			IsFavorited:      favorited[id],
			IsInShoppingCart: carted[id],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.CreatedAt,
		})
	}
	return res, nil
}

func ToRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
