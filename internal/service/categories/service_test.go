package categories_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/service/categories"
	"github.com/vladislavdragonenkov/minishop/internal/storage/memory"
)

func newService() *categories.Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return categories.New(memory.NewStore().Categories(), logger.WithField("component", "test"), nil)
}

func TestCategoryCRUD(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CategoryInput{Title: "Office", Description: "Офисные товары"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	updated, err := svc.Update(ctx, created.ID, domain.CategoryInput{Title: "Office v2"})
	require.NoError(t, err)
	require.Equal(t, "Office v2", updated.Title)
	require.Empty(t, updated.Description)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, domain.IsNotFound(err))
}

func TestCategoryCreate_Validation(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), domain.CategoryInput{Description: "no title"})
	require.True(t, domain.IsValidation(err))
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	svc := newService()

	_, err := svc.Update(context.Background(), "no-such-category", domain.CategoryInput{Title: "Office"})
	require.True(t, domain.IsNotFound(err))
}
