package services

import (
	"context"
	"testing"

	"github.com/craftdeck/craftdeck/craftdeck/database/repositories/mock"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestSearchService(t *testing.T) *SearchService {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return(testCatalogCards(), nil).AnyTimes()
	return NewSearchService(NewCatalogService(repo))
}

func TestSearchCardsFuzzyMatch(t *testing.T) {
	svc := newTestSearchService(t)

	results, err := svc.SearchCards(context.Background(), "creep")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Creeper", results[0].Name)
}

func TestSearchOne(t *testing.T) {
	svc := newTestSearchService(t)

	card, err := svc.SearchOne(context.Background(), "ender drag")
	require.NoError(t, err)
	assert.Equal(t, int64(3), card.ID)

	_, err = svc.SearchOne(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, economy.ErrCardNotFound)
}

func TestSearchEmptyQueryReturnsCatalog(t *testing.T) {
	svc := newTestSearchService(t)

	results, err := svc.SearchCards(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
