package draw

import (
	"context"
	"testing"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	byRarity map[rarity.Tier][]*models.Card
}

func (f *fakePool) CardsByRarity(_ context.Context, tier rarity.Tier) ([]*models.Card, error) {
	return f.byRarity[tier], nil
}

func (f *fakePool) TotalCards(_ context.Context) (int, error) {
	total := 0
	for _, cards := range f.byRarity {
		total += len(cards)
	}
	return total, nil
}

// fakeDrawRepo settles draws against an in-memory balance and
// collection, mirroring the transactional guarantees of the real one.
type fakeDrawRepo struct {
	balances map[string]int64
	owned    map[string]map[int64]int64
	draws    []*models.Draw
}

func newFakeDrawRepo() *fakeDrawRepo {
	return &fakeDrawRepo{
		balances: make(map[string]int64),
		owned:    make(map[string]map[int64]int64),
	}
}

func (f *fakeDrawRepo) ExecuteDraw(_ context.Context, userID string, cardID int64, cardRarity string, cost int64) (*repositories.DrawOutcome, error) {
	if f.balances[userID] < cost {
		return nil, economy.ErrInsufficientFunds
	}
	f.balances[userID] -= cost

	if f.owned[userID] == nil {
		f.owned[userID] = make(map[int64]int64)
	}
	f.owned[userID][cardID]++

	f.draws = append(f.draws, &models.Draw{
		UserID: userID,
		CardID: cardID,
		Rarity: cardRarity,
		Cost:   cost,
	})

	return &repositories.DrawOutcome{
		CardID:     cardID,
		Rarity:     cardRarity,
		Amount:     f.owned[userID][cardID],
		IsNew:      f.owned[userID][cardID] == 1,
		NewBalance: f.balances[userID],
	}, nil
}

func (f *fakeDrawRepo) GetUserDraws(_ context.Context, userID string, limit int) ([]*models.Draw, error) {
	return f.draws, nil
}

func (f *fakeDrawRepo) CountUserDrawsSince(_ context.Context, userID string, since time.Time) (int, error) {
	return len(f.draws), nil
}

func (f *fakeDrawRepo) GetBalance(_ context.Context, userID string) (int64, error) {
	return f.balances[userID], nil
}

func creeperPool() *fakePool {
	return &fakePool{byRarity: map[rarity.Tier][]*models.Card{
		rarity.Common: {
			{ID: 1, Name: "Creeper", Category: "mobs", Rarity: rarity.Common.String()},
		},
	}}
}

func newTestEngine(pool *fakePool, repo *fakeDrawRepo) *Engine {
	return NewEngine(pool, repo, repo, rarity.DefaultWeightTable()).
		WithRandomSource(NewSeededRandomSource(42))
}

func TestDrawSpendsOneCreditPerCard(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 5
	engine := newTestEngine(creeperPool(), repo)

	res, err := engine.DrawCards(context.Background(), "u1", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalDrawn)
	assert.Equal(t, int64(2), res.CreditsRemaining)
	assert.Len(t, res.Outcomes, 3)
	assert.Equal(t, 3, res.ByCard[1])

	first := res.Outcomes[0]
	assert.True(t, first.IsNew)
	assert.Equal(t, "Creeper", first.Name)
	assert.False(t, res.Outcomes[1].IsNew, "second copy of the same card is a duplicate")
}

func TestDrawAllUsesWholeBalance(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 4
	engine := newTestEngine(creeperPool(), repo)

	res, err := engine.DrawCards(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalDrawn)
	assert.Equal(t, int64(0), res.CreditsRemaining)
}

func TestDrawAllWithZeroBalanceIsEmptyNotError(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 0
	engine := newTestEngine(creeperPool(), repo)

	res, err := engine.DrawCards(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalDrawn)
	assert.Empty(t, res.Outcomes)
	assert.Equal(t, int64(0), res.CreditsRemaining)
}

func TestDrawExplicitCountWithoutFundsFails(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 0
	engine := newTestEngine(creeperPool(), repo)

	_, err := engine.DrawCards(context.Background(), "u1", 3)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
}

func TestDrawBatchStopsWhenCreditsRunOut(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 2
	engine := newTestEngine(creeperPool(), repo)

	res, err := engine.DrawCards(context.Background(), "u1", 10)
	require.NoError(t, err, "partial batches settle what they can")

	assert.Equal(t, 2, res.TotalDrawn)
	assert.Equal(t, int64(0), res.CreditsRemaining)
}

func TestDrawEmptyCatalogFailsBeforeCharging(t *testing.T) {
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 5
	engine := newTestEngine(&fakePool{byRarity: map[rarity.Tier][]*models.Card{}}, repo)

	_, err := engine.DrawCards(context.Background(), "u1", 1)
	require.ErrorIs(t, err, economy.ErrEmptyPool)
	assert.Equal(t, int64(5), repo.balances["u1"], "failed draws must not charge")
}

func TestDrawFallsBackToPopulatedTier(t *testing.T) {
	// Only epic cards exist; every roll must still land on one.
	pool := &fakePool{byRarity: map[rarity.Tier][]*models.Card{
		rarity.Epic: {
			{ID: 9, Name: "Ender Dragon", Category: "mobs", Rarity: rarity.Epic.String()},
		},
	}}
	repo := newFakeDrawRepo()
	repo.balances["u1"] = 20
	engine := newTestEngine(pool, repo)

	res, err := engine.DrawCards(context.Background(), "u1", 20)
	require.NoError(t, err)

	assert.Equal(t, 20, res.TotalDrawn)
	for _, outcome := range res.Outcomes {
		assert.Equal(t, int64(9), outcome.CardID)
		assert.Equal(t, rarity.Epic, outcome.Rarity)
	}
}

func TestDrawRarityDistributionFollowsWeights(t *testing.T) {
	pool := &fakePool{byRarity: map[rarity.Tier][]*models.Card{}}
	for i, tier := range rarity.Tiers() {
		pool.byRarity[tier] = []*models.Card{
			{ID: int64(i + 1), Name: tier.String(), Rarity: tier.String()},
		}
	}

	const total = 20000
	repo := newFakeDrawRepo()
	repo.balances["u1"] = total
	engine := newTestEngine(pool, repo)

	res, err := engine.DrawCards(context.Background(), "u1", total)
	require.NoError(t, err)
	require.Equal(t, total, res.TotalDrawn)

	counts := make(map[rarity.Tier]int)
	for _, outcome := range res.Outcomes {
		counts[outcome.Rarity]++
	}

	wt := rarity.DefaultWeightTable()
	for _, tier := range rarity.Tiers() {
		got := float64(counts[tier]) / total
		want := wt.Weight(tier)
		assert.InDelta(t, want, got, 0.02, "tier %s", tier)
	}
	assert.Greater(t, counts[rarity.Common], counts[rarity.Legendary],
		"common must dominate legendary")
}
