package tag

import (
	"context"
	"testing"

	"foodgram/domain"
	"foodgram/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListTags(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(NewTagRepository(testdb.New(t)))

	lunch, err := svc.CreateTag(ctx, domain.CreateTagRequest{Name: "Lunch", Color: "#49b61e", Slug: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, "#49B61E", lunch.Color)

	_, err = svc.CreateTag(ctx, domain.CreateTagRequest{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"})
	require.NoError(t, err)

	tags, err := svc.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "Lunch", tags[1].Name)

	got, err := svc.GetTagByID(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, lunch, got)
}

func TestCreateTagRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(NewTagRepository(testdb.New(t)))

	_, err := svc.CreateTag(ctx, domain.CreateTagRequest{Name: "Lunch", Color: "#49B61E", Slug: "lunch"})
	require.NoError(t, err)

	_, err = svc.CreateTag(ctx, domain.CreateTagRequest{Name: "Dinner", Color: "#49B61E", Slug: "dinner"})
	assert.ErrorIs(t, err, domain.ErrTagExists)
}

func TestGetTagNotFound(t *testing.T) {
	svc := NewTagService(NewTagRepository(testdb.New(t)))

	_, err := svc.GetTagByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}
