package upgrade

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCardSource struct {
	cards map[int64]*models.Card
}

func (f *fakeCardSource) GetByID(_ context.Context, id int64) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, economy.ErrCardNotFound
	}
	return card, nil
}

type fakeCollection struct {
	owned map[string]*models.UserCard
}

func collectionKey(userID string, cardID int64) string {
	return fmt.Sprintf("%s:%d", userID, cardID)
}

func (f *fakeCollection) GetUserCard(_ context.Context, userID string, cardID int64) (*models.UserCard, error) {
	uc, ok := f.owned[collectionKey(userID, cardID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return uc, nil
}

func (f *fakeCollection) ApplyUpgrade(_ context.Context, userID string, cardID int64, currentRarity string, cost int64, nextRarity string) (bool, error) {
	uc, ok := f.owned[collectionKey(userID, cardID)]
	if !ok || uc.Rarity != currentRarity || uc.Amount < cost {
		return false, nil
	}
	uc.Amount -= cost
	uc.Rarity = nextRarity
	return true, nil
}

func newTestEngine() (*Engine, *fakeCollection) {
	cards := &fakeCardSource{cards: map[int64]*models.Card{
		1: {ID: 1, Name: "Creeper", Category: "mobs", Rarity: rarity.Common.String()},
	}}
	collection := &fakeCollection{owned: make(map[string]*models.UserCard)}
	return NewEngine(cards, collection), collection
}

func TestUpgradeSpendsAllDuplicates(t *testing.T) {
	engine, collection := newTestEngine()
	collection.owned[collectionKey("u1", 1)] = &models.UserCard{
		UserID: "u1", CardID: 1, Amount: 4, Rarity: rarity.Common.String(),
	}

	res, err := engine.Upgrade(context.Background(), "u1", 1)
	require.NoError(t, err)

	assert.Equal(t, rarity.Common, res.From)
	assert.Equal(t, rarity.Rare, res.To)
	assert.Equal(t, int64(4), res.Spent)
	assert.Equal(t, int64(0), res.Remaining, "spending every copy keeps the entry at zero")

	uc := collection.owned[collectionKey("u1", 1)]
	assert.Equal(t, int64(0), uc.Amount)
	assert.Equal(t, rarity.Rare.String(), uc.Rarity)
}

func TestCanUpgradeReasons(t *testing.T) {
	engine, collection := newTestEngine()

	t.Run("not owned", func(t *testing.T) {
		elig, err := engine.CanUpgrade(context.Background(), "u1", 1)
		require.NoError(t, err)
		assert.False(t, elig.Eligible)
		assert.Equal(t, economy.ReasonNotOwned, elig.Reason)
	})

	t.Run("insufficient duplicates", func(t *testing.T) {
		collection.owned[collectionKey("u1", 1)] = &models.UserCard{
			UserID: "u1", CardID: 1, Amount: 3, Rarity: rarity.Common.String(),
		}
		elig, err := engine.CanUpgrade(context.Background(), "u1", 1)
		require.NoError(t, err)
		assert.False(t, elig.Eligible)
		assert.Equal(t, economy.ReasonInsufficientDuplicates, elig.Reason)
		assert.Equal(t, int64(4), elig.Cost)
		assert.Equal(t, int64(3), elig.Have)
	})

	t.Run("max tier reached", func(t *testing.T) {
		collection.owned[collectionKey("u1", 1)] = &models.UserCard{
			UserID: "u1", CardID: 1, Amount: 99, Rarity: rarity.Legendary.String(),
		}
		elig, err := engine.CanUpgrade(context.Background(), "u1", 1)
		require.NoError(t, err)
		assert.False(t, elig.Eligible)
		assert.Equal(t, economy.ReasonMaxTierReached, elig.Reason)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := engine.CanUpgrade(context.Background(), "u1", 404)
		assert.ErrorIs(t, err, economy.ErrCardNotFound)
	})
}

func TestUpgradeRejectionLeavesStateUntouched(t *testing.T) {
	engine, collection := newTestEngine()
	collection.owned[collectionKey("u1", 1)] = &models.UserCard{
		UserID: "u1", CardID: 1, Amount: 3, Rarity: rarity.Common.String(),
	}

	for i := 0; i < 3; i++ {
		_, err := engine.Upgrade(context.Background(), "u1", 1)
		ne, ok := economy.IsNotEligible(err)
		require.True(t, ok, "rejection must be a NotEligibleError")
		assert.Equal(t, economy.ReasonInsufficientDuplicates, ne.Reason)
		assert.Equal(t, int64(4), ne.Need)
		assert.Equal(t, int64(3), ne.Have)
	}

	uc := collection.owned[collectionKey("u1", 1)]
	assert.Equal(t, int64(3), uc.Amount, "repeated rejections must not change the count")
	assert.Equal(t, rarity.Common.String(), uc.Rarity)
}

func TestUpgradeCostClimbsWithTier(t *testing.T) {
	engine, collection := newTestEngine()
	collection.owned[collectionKey("u1", 1)] = &models.UserCard{
		UserID: "u1", CardID: 1, Amount: 8, Rarity: rarity.Rare.String(),
	}

	res, err := engine.Upgrade(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Spent)
	assert.Equal(t, rarity.VeryRare, res.To)
}
