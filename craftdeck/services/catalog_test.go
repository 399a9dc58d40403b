package services

import (
	"context"
	"testing"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories/mock"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testCatalogCards() []*models.Card {
	return []*models.Card{
		{ID: 1, Name: "Creeper", Category: "mobs", Rarity: rarity.Common.String()},
		{ID: 2, Name: "Diamond Ore", Category: "blocks", Rarity: rarity.Rare.String()},
		{ID: 3, Name: "Ender Dragon", Category: "mobs", Rarity: rarity.Epic.String()},
	}
}

func TestCatalogSnapshotServesRepeatedReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return(testCatalogCards(), nil).Times(1)

	catalog := NewCatalogService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cards, err := catalog.AllCards(ctx)
		require.NoError(t, err)
		assert.Len(t, cards, 3)
	}

	total, err := catalog.TotalCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestCatalogCardsByRarity(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return(testCatalogCards(), nil).AnyTimes()

	catalog := NewCatalogService(repo)
	ctx := context.Background()

	mobs, err := catalog.CardsByRarity(ctx, rarity.Common)
	require.NoError(t, err)
	require.Len(t, mobs, 1)
	assert.Equal(t, "Creeper", mobs[0].Name)

	_, err = catalog.CardsByRarity(ctx, rarity.Legendary)
	assert.ErrorIs(t, err, economy.ErrEmptyPool)
}

func TestCatalogGetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return(testCatalogCards(), nil).AnyTimes()

	catalog := NewCatalogService(repo)
	ctx := context.Background()

	card, err := catalog.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Diamond Ore", card.Name)

	_, err = catalog.GetByID(ctx, 404)
	assert.ErrorIs(t, err, economy.ErrCardNotFound)
}

func TestCatalogInvalidateForcesReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return(testCatalogCards(), nil).Times(2)

	catalog := NewCatalogService(repo)
	ctx := context.Background()

	_, err := catalog.AllCards(ctx)
	require.NoError(t, err)

	catalog.Invalidate()

	_, err = catalog.AllCards(ctx)
	require.NoError(t, err)
}
