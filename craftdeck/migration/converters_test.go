package migration

import (
	"testing"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelToRarity(t *testing.T) {
	assert.Equal(t, rarity.Common, levelToRarity(1))
	assert.Equal(t, rarity.Rare, levelToRarity(2))
	assert.Equal(t, rarity.Legendary, levelToRarity(5))

	// Out-of-range levels clamp instead of failing the import.
	assert.Equal(t, rarity.Common, levelToRarity(0))
	assert.Equal(t, rarity.Legendary, levelToRarity(9))
}

func TestConvertTags(t *testing.T) {
	assert.Nil(t, convertTags(nil))
	assert.Nil(t, convertTags(""))
	assert.Equal(t, []string{"mob"}, convertTags("mob"))
	assert.Equal(t, []string{"mob", "hostile"}, convertTags([]interface{}{"mob", "hostile"}))
	assert.Nil(t, convertTags(42))
}

func TestCleanseString(t *testing.T) {
	assert.Equal(t, "Creeper", cleanseString("  Creeper\x00 "))
	assert.Equal(t, "Diamond Ore", cleanseString("Diamond\x01 Ore"))
	assert.Equal(t, "", cleanseString(""))
}

func TestConvertUser(t *testing.T) {
	m := &Migrator{}
	lastDaily := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	user := m.convertUser(MongoUser{
		PlatformID: "u1",
		Username:   "steve\x00",
		Exp:        42.7,
		LastDaily:  lastDaily,
		Streaks:    Streaks{Daily: 3},
	})

	assert.Equal(t, "u1", user.PlatformID)
	assert.Equal(t, "steve", user.Username)
	assert.Equal(t, int64(42), user.Balance)
	assert.Equal(t, lastDaily, user.LastDaily)
	assert.Equal(t, 3, user.DailyStreak)
}

func TestConvertUserCard(t *testing.T) {
	m := &Migrator{}

	assert.Nil(t, m.convertUserCard(MongoUserCard{UserID: "u1"}), "null card id rows are dropped")

	cardID := float64(7)
	uc := m.convertUserCard(MongoUserCard{
		UserID: "u1",
		CardID: &cardID,
		Amount: 4,
		Level:  3,
		Fav:    true,
	})
	require.NotNil(t, uc)
	assert.Equal(t, int64(7), uc.CardID)
	assert.Equal(t, int64(4), uc.Amount)
	assert.Equal(t, rarity.VeryRare.String(), uc.Rarity)
	assert.True(t, uc.Favorite)
}
