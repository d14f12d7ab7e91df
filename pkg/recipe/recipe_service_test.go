package recipe

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/testdb"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/tag"
	"foodgram/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStorage struct {
	objects map[string][]byte
	failDel bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) UploadFile(_ context.Context, fileName string, image *storage.Image, folder string, allowed ...string) (string, error) {
	for _, a := range allowed {
		if a == image.ContentType {
			key := folder + "/" + fileName + image.Ext
			m.objects[key] = image.Data
			return key, nil
		}
	}
	return "", storage.ErrContentTypeNotAllowed
}

func (m *memoryStorage) DeleteFile(_ context.Context, key string) error {
	if m.failDel {
		return errors.New("delete failed")
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) GetPublicLinkKey(key string) string { return "http://files/" + key }

func (m *memoryStorage) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "http://files/")
}

type fixture struct {
	db          *gorm.DB
	svc         RecipeService
	store       *memoryStorage
	author      *entities.User
	other       *entities.User
	admin       *entities.User
	breakfast   *entities.Tag
	lunch       *entities.Tag
	sugar       *entities.Ingredient
	flour       *entities.Ingredient
	sugarSpoons *entities.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)

	f := &fixture{
		db:          db,
		store:       newMemoryStorage(),
		author:      &entities.User{Email: "author@example.com", Username: "author", FirstName: "A", LastName: "A", Password: "x", Role: domain.RoleUser},
		other:       &entities.User{Email: "other@example.com", Username: "other", FirstName: "O", LastName: "O", Password: "x", Role: domain.RoleUser},
		admin:       &entities.User{Email: "admin@example.com", Username: "admin", FirstName: "D", LastName: "D", Password: "x", Role: domain.RoleAdmin},
		breakfast:   &entities.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		lunch:       &entities.Tag{Name: "Lunch", Color: "#49B61E", Slug: "lunch"},
		sugar:       &entities.Ingredient{Name: "Sugar", MeasurementUnit: "g"},
		flour:       &entities.Ingredient{Name: "Flour", MeasurementUnit: "g"},
		sugarSpoons: &entities.Ingredient{Name: "Sugar", MeasurementUnit: "tbsp"},
	}
	for _, v := range []any{f.author, f.other, f.admin, f.breakfast, f.lunch, f.sugar, f.flour, f.sugarSpoons} {
		require.NoError(t, db.Create(v).Error)
	}

	f.svc = NewRecipeService(
		NewRecipeRepository(db),
		tag.NewTagRepository(db),
		ingredient.NewIngredientRepository(db),
		user.NewUserRepository(db),
		f.store,
	)
	return f
}

func (f *fixture) request(name string, lines ...domain.IngredientAmountRequest) domain.CreateRecipeRequest {
	if len(lines) == 0 {
		lines = []domain.IngredientAmountRequest{{ID: f.sugar.ID.String(), Amount: 100}}
	}
	return domain.CreateRecipeRequest{
		Ingredients: lines,
		Tags:        []string{f.breakfast.ID.String()},
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 30,
	}
}

func (f *fixture) create(t *testing.T, owner *entities.User, req domain.CreateRecipeRequest) domain.RecipeResponse {
	t.Helper()
	res, err := f.svc.CreateRecipe(context.Background(), req, owner.ID.String())
	require.NoError(t, err)
	return res
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)

	req := f.request("Pancakes",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 100},
		domain.IngredientAmountRequest{ID: f.flour.ID.String(), Amount: 250},
	)
	req.Tags = []string{f.lunch.ID.String(), f.breakfast.ID.String()}

	res := f.create(t, f.author, req)

	assert.Equal(t, "Pancakes", res.Name)
	assert.Equal(t, f.author.ID.String(), res.Author.ID)
	assert.False(t, res.Author.IsSubscribed)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, "Breakfast", res.Tags[0].Name)
	require.Len(t, res.Ingredients, 2)
	assert.Equal(t, "Flour", res.Ingredients[0].Name)
	assert.Equal(t, 250, res.Ingredients[0].Amount)
	assert.False(t, res.PubDate.IsZero())
}

func TestCreateRecipeRejectsDuplicateNameForSameAuthor(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.author, f.request("Pancakes"))

	_, err := f.svc.CreateRecipe(context.Background(), f.request("Pancakes"), f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNameTaken)

	// another author may reuse the name
	f.create(t, f.other, f.request("Pancakes"))
}

func TestCreateRecipeBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, minutes := range []int{0, 32001} {
		req := f.request("Too slow")
		req.CookingTime = minutes
		_, err := f.svc.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrCookingTimeOutOfRange, minutes)
	}

	for _, amount := range []int{0, 32001} {
		req := f.request("Odd amount", domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: amount})
		_, err := f.svc.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrAmountOutOfRange, amount)
	}

	req := f.request("Edges", domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 32000})
	req.CookingTime = 1
	f.create(t, f.author, req)
}

func TestCreateRecipeRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"   ", "\t\n"} {
		_, err := f.svc.CreateRecipe(ctx, f.request(name), f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrRecipeNameEmpty, "%q", name)
	}

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeRejectsBadReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000001"

	req := f.request("No tags")
	req.Tags = nil
	_, err := f.svc.CreateRecipe(ctx, req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyTags)

	req = f.request("Repeated tag")
	req.Tags = []string{f.lunch.ID.String(), f.lunch.ID.String()}
	_, err = f.svc.CreateRecipe(ctx, req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrDuplicateTag)

	req = f.request("Unknown tag")
	req.Tags = []string{missing}
	_, err = f.svc.CreateRecipe(ctx, req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnknownTag)

	req = f.request("Repeated ingredient",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 1},
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 2},
	)
	_, err = f.svc.CreateRecipe(ctx, req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrDuplicateIngredient)

	req = f.request("Unknown ingredient", domain.IngredientAmountRequest{ID: missing, Amount: 1})
	_, err = f.svc.CreateRecipe(ctx, req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesSuppliedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 100},
		domain.IngredientAmountRequest{ID: f.flour.ID.String(), Amount: 250},
	))

	cooking := 45
	updated, err := f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		CookingTime: &cooking,
		Ingredients: []domain.IngredientAmountRequest{{ID: f.sugarSpoons.ID.String(), Amount: 3}},
	}, f.author.ID.String(), domain.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", updated.Name)
	assert.Equal(t, "Mix and bake.", updated.Text)
	assert.Equal(t, 45, updated.CookingTime)
	require.Len(t, updated.Tags, 1)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "tbsp", updated.Ingredients[0].MeasurementUnit)

	var lines int64
	require.NoError(t, f.db.Model(&entities.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)

	updated, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Tags: []string{f.lunch.ID.String()},
	}, f.author.ID.String(), domain.RoleUser)
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Lunch", updated.Tags[0].Name)
	assert.Len(t, updated.Ingredients, 1)
}

func TestUpdateRecipeRejectsInvalidChangesAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes"))
	f.create(t, f.author, f.request("Waffles"))

	name := "Waffles"
	_, err := f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Name: &name}, f.author.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrRecipeNameTaken)

	newName := "Crepes"
	_, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        &newName,
		Ingredients: []domain.IngredientAmountRequest{{ID: f.sugar.ID.String(), Amount: 0}},
	}, f.author.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)

	got, err := f.svc.GetRecipeByID(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)

	same := "Pancakes"
	_, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Name: &same}, f.author.ID.String(), domain.RoleUser)
	assert.NoError(t, err)
}

func TestRecipeMutationRequiresAuthorOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes"))

	got, err := f.svc.GetRecipeByID(ctx, created.ID, f.other.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	name := "Stolen"
	_, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Name: &name}, f.other.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.DeleteRecipe(ctx, created.ID, f.other.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	name = "Moderated"
	res, err := f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Name: &name}, f.admin.ID.String(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Moderated", res.Name)
	assert.Equal(t, f.author.ID.String(), res.Author.ID)

	_, err = f.svc.UpdateRecipe(ctx, "00000000-0000-0000-0000-000000000009", domain.UpdateRecipeRequest{Name: &name}, f.admin.ID.String(), domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 100},
		domain.IngredientAmountRequest{ID: f.flour.ID.String(), Amount: 250},
	))
	kept := f.create(t, f.author, f.request("Waffles"))

	_, err := f.svc.AddFavorite(ctx, created.ID, f.other.ID.String())
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, created.ID, f.other.ID.String())
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, kept.ID, f.other.ID.String())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, created.ID, f.author.ID.String(), domain.RoleUser))

	for _, model := range []any{&entities.RecipeIngredient{}, &entities.RecipeTag{}, &entities.Favorite{}, &entities.ShoppingCart{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Where("recipe_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}

	var remaining int64
	require.NoError(t, f.db.Model(&entities.ShoppingCart{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	_, err = f.svc.GetRecipeByID(ctx, created.ID, "")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	err = f.svc.DeleteRecipe(ctx, created.ID, f.author.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFavoriteEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes"))
	uid := f.other.ID.String()

	short, err := f.svc.AddFavorite(ctx, created.ID, uid)
	require.NoError(t, err)
	assert.Equal(t, domain.RecipeShortResponse{ID: created.ID, Name: "Pancakes", CookingTime: 30}, short)

	_, err = f.svc.AddFavorite(ctx, created.ID, uid)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	got, err := f.svc.GetRecipeByID(ctx, created.ID, uid)
	require.NoError(t, err)
	assert.True(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)

	got, err = f.svc.GetRecipeByID(ctx, created.ID, f.author.ID.String())
	require.NoError(t, err)
	assert.False(t, got.IsFavorited)

	require.NoError(t, f.svc.RemoveFavorite(ctx, created.ID, uid))
	assert.ErrorIs(t, f.svc.RemoveFavorite(ctx, created.ID, uid), domain.ErrNotFavorited)

	_, err = f.svc.AddFavorite(ctx, "00000000-0000-0000-0000-000000000009", uid)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestShoppingCartEdgesAndDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.other.ID.String()

	pancakes := f.create(t, f.author, f.request("Pancakes",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 100},
		domain.IngredientAmountRequest{ID: f.flour.ID.String(), Amount: 250},
	))
	cookies := f.create(t, f.author, f.request("Cookies",
		domain.IngredientAmountRequest{ID: f.sugar.ID.String(), Amount: 50},
		domain.IngredientAmountRequest{ID: f.sugarSpoons.ID.String(), Amount: 2},
	))
	f.create(t, f.author, f.request("Not in cart",
		domain.IngredientAmountRequest{ID: f.flour.ID.String(), Amount: 999},
	))

	for _, id := range []string{pancakes.ID, cookies.ID} {
		_, err := f.svc.AddToShoppingCart(ctx, id, uid)
		require.NoError(t, err)
	}
	_, err := f.svc.AddToShoppingCart(ctx, cookies.ID, uid)
	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)

	report, err := f.svc.DownloadShoppingList(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "SHOPPING LIST\n\n1. Flour (g) - 250\n2. Sugar (g) - 150\n3. Sugar (tbsp) - 2\n", string(report))

	require.NoError(t, f.svc.RemoveFromShoppingCart(ctx, pancakes.ID, uid))
	assert.ErrorIs(t, f.svc.RemoveFromShoppingCart(ctx, pancakes.ID, uid), domain.ErrNotInShoppingCart)

	report, err = f.svc.DownloadShoppingList(ctx, f.author.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SHOPPING LIST\n\n", string(report))
}

func TestGetRecipesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.other.ID.String()

	first := f.create(t, f.author, f.request("First"))
	lunchReq := f.request("Second")
	lunchReq.Tags = []string{f.lunch.ID.String()}
	second := f.create(t, f.author, lunchReq)
	third := f.create(t, f.other, f.request("Third"))

	all, page, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{}, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)

	byAuthor, _, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{AuthorID: f.author.ID.String()}, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byTag, _, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{Tags: []string{"lunch"}}, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, second.ID, byTag[0].ID)

	_, err = f.svc.AddFavorite(ctx, first.ID, uid)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, second.ID, uid)
	require.NoError(t, err)

	favs, page, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, uid, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, favs, 1)
	assert.Equal(t, first.ID, favs[0].ID)
	assert.True(t, favs[0].IsFavorited)

	carted, _, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{IsInShoppingCart: true}, uid, 1, 10)
	require.NoError(t, err)
	require.Len(t, carted, 1)
	assert.Equal(t, second.ID, carted[0].ID)

	anonymous, _, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, anonymous, 3)

	paged, page, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{}, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, int64(2), page.TotalPages)
}

func TestRecipeImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	req := f.request("Pictured")
	req.Image = png
	created := f.create(t, f.author, req)
	require.True(t, strings.HasPrefix(created.Image, "http://files/recipes/"))
	require.Len(t, f.store.objects, 1)

	jpeg := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	updated, err := f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Image: &jpeg}, f.author.ID.String(), domain.RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, created.Image, updated.Image)
	require.Len(t, f.store.objects, 1)
	_, stillThere := f.store.objects[f.store.GetObjectKeyFromLink(updated.Image)]
	assert.True(t, stillThere)

	text := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))
	_, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Image: &text}, f.author.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	garbage := "not-an-image"
	_, err = f.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Image: &garbage}, f.author.ID.String(), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	require.NoError(t, f.svc.DeleteRecipe(ctx, created.ID, f.author.ID.String(), domain.RoleUser))
	assert.Empty(t, f.store.objects)
}

func TestRecipeImageWithoutStorage(t *testing.T) {
	db := testdb.New(t)
	author := &entities.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", Password: "x"}
	tg := &entities.Tag{Name: "T", Color: "#000000", Slug: "t"}
	ing := &entities.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	for _, v := range []any{author, tg, ing} {
		require.NoError(t, db.Create(v).Error)
	}
	svc := NewRecipeService(NewRecipeRepository(db), tag.NewTagRepository(db), ingredient.NewIngredientRepository(db), user.NewUserRepository(db), nil)

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: ing.ID.String(), Amount: 1}},
		Tags:        []string{tg.ID.String()},
		Image:       "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x")),
		Name:        "Salted",
		Text:        "Salt it.",
		CookingTime: 1,
	}, author.ID.String())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestRecipeAuthorIsSubscribedComputedOnRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.author, f.request("Pancakes"))

	require.NoError(t, f.db.Create(&entities.Follow{UserID: f.other.ID, AuthorID: f.author.ID}).Error)

	got, err := f.svc.GetRecipeByID(ctx, created.ID, "")
	require.NoError(t, err)
	assert.True(t, got.Author.IsSubscribed)
}
