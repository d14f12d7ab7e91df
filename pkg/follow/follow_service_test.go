package follow

import (
	"context"
	"testing"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/testdb"
	"foodgram/pkg/recipe"
	"foodgram/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUsers(t *testing.T, db *gorm.DB, names ...string) []*entities.User {
	t.Helper()
	users := make([]*entities.User, 0, len(names))
	for _, n := range names {
		u := &entities.User{Email: n + "@example.com", Username: n, FirstName: n, LastName: n, Password: "x"}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func newService(db *gorm.DB) FollowService {
	return NewFollowService(NewFollowRepository(db), user.NewUserRepository(db), recipe.NewRecipeRepository(db))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	svc := newService(db)
	u := newUsers(t, db, "reader", "author")
	reader, author := u[0], u[1]

	for i, name := range []string{"One", "Two", "Three"} {
		require.NoError(t, db.Create(&entities.Recipe{AuthorID: author.ID, Name: name, Text: "t", CookingTime: i + 1}).Error)
	}

	res, err := svc.Subscribe(ctx, author.ID.String(), reader.ID.String(), 2)
	require.NoError(t, err)
	assert.Equal(t, author.ID.String(), res.ID)
	assert.True(t, res.IsSubscribed)
	assert.Equal(t, int64(3), res.RecipesCount)
	assert.Len(t, res.Recipes, 2)

	_, err = svc.Subscribe(ctx, author.ID.String(), reader.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestSubscribeRejectsSelfAndUnknown(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	svc := newService(db)
	reader := newUsers(t, db, "reader")[0]

	_, err := svc.Subscribe(ctx, reader.ID.String(), reader.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrSelfFollow)

	_, err = svc.Subscribe(ctx, "00000000-0000-0000-0000-000000000001", reader.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&entities.Follow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	svc := newService(db)
	u := newUsers(t, db, "reader", "author")
	reader, author := u[0], u[1]

	err := svc.Unsubscribe(ctx, author.ID.String(), reader.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = svc.Subscribe(ctx, author.ID.String(), reader.ID.String(), 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, author.ID.String(), reader.ID.String()))

	err = svc.Unsubscribe(ctx, author.ID.String(), reader.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestGetSubscriptions(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	svc := newService(db)
	u := newUsers(t, db, "reader", "first", "second", "ignored")
	reader := u[0]

	require.NoError(t, db.Create(&entities.Recipe{AuthorID: u[1].ID, Name: "Soup", Text: "t", CookingTime: 10}).Error)

	for _, a := range u[1:3] {
		_, err := svc.Subscribe(ctx, a.ID.String(), reader.ID.String(), 0)
		require.NoError(t, err)
	}

	subs, page, err := svc.GetSubscriptions(ctx, reader.ID.String(), 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, subs, 2)

	byName := map[string]domain.SubscriptionResponse{}
	for _, s := range subs {
		byName[s.Username] = s
	}
	assert.Equal(t, int64(1), byName["first"].RecipesCount)
	assert.Equal(t, "Soup", byName["first"].Recipes[0].Name)
	assert.Equal(t, int64(0), byName["second"].RecipesCount)
	assert.Empty(t, byName["second"].Recipes)
	assert.NotContains(t, byName, "ignored")

	none, page, err := svc.GetSubscriptions(ctx, u[3].ID.String(), 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, page.Total)
}
