// Package draw implements the paid draw engine: rarity roll, card
// pick, and atomic settlement of cost and ownership per draw.
package draw

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/lock"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
)

// CardPool is the catalog view the engine draws from.
type CardPool interface {
	CardsByRarity(ctx context.Context, tier rarity.Tier) ([]*models.Card, error)
	TotalCards(ctx context.Context) (int, error)
}

// BalanceSource resolves a user's current credit balance.
type BalanceSource interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
}

// Outcome is one settled draw.
type Outcome struct {
	CardID int64
	Name   string
	Rarity rarity.Tier
	Amount int64
	IsNew  bool
}

// Result aggregates a batch of draws. TotalDrawn can be smaller than
// the requested count when credits run out mid-batch; TotalDrawn == 0
// with a nil error means there was nothing to do (zero balance on a
// draw-all request).
type Result struct {
	Outcomes         []Outcome
	ByCard           map[int64]int
	TotalDrawn       int
	CreditsRemaining int64
}

type Engine struct {
	pool    CardPool
	draws   repositories.DrawRepository
	users   BalanceSource
	locks   *lock.KeyedLock
	weights rarity.WeightTable
	rng     RandomSource
}

func NewEngine(pool CardPool, draws repositories.DrawRepository, users BalanceSource, weights rarity.WeightTable) *Engine {
	return &Engine{
		pool:    pool,
		draws:   draws,
		users:   users,
		locks:   lock.NewKeyedLock(),
		weights: weights,
		rng:     NewRandomSource(),
	}
}

// WithRandomSource swaps the randomness, for tests.
func (e *Engine) WithRandomSource(rng RandomSource) *Engine {
	e.rng = rng
	return e
}

// DrawCards performs up to count draws for the user. A count of zero or
// less means "draw as many as the balance allows". Each draw debits the
// cost, rolls a rarity, picks uniformly within the tier and settles
// atomically; the batch stops early when credits run out, keeping what
// already settled.
func (e *Engine) DrawCards(ctx context.Context, userID string, count int) (*Result, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	start := time.Now()

	balance, err := e.users.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	drawAll := count <= 0
	if drawAll {
		count = int(balance / config.DrawCost)
	}

	total, err := e.pool.TotalCards(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, economy.ErrEmptyPool
	}

	result := &Result{
		ByCard:           make(map[int64]int),
		CreditsRemaining: balance,
	}

	for i := 0; i < count; i++ {
		card, tier, err := e.pickCard(ctx)
		if err != nil {
			if result.TotalDrawn == 0 {
				return nil, err
			}
			slog.Warn("Draw batch stopped early",
				slog.String("type", "eng"),
				slog.String("user_id", userID),
				slog.Int("drawn", result.TotalDrawn),
				slog.Any("error", err))
			break
		}

		outcome, err := e.draws.ExecuteDraw(ctx, userID, card.ID, card.Rarity, config.DrawCost)
		if err != nil {
			if errors.Is(err, economy.ErrInsufficientFunds) {
				if result.TotalDrawn == 0 && !drawAll {
					return nil, err
				}
				break
			}
			if result.TotalDrawn == 0 {
				return nil, err
			}
			slog.Warn("Draw batch stopped early",
				slog.String("type", "eng"),
				slog.String("user_id", userID),
				slog.Int("drawn", result.TotalDrawn),
				slog.Any("error", err))
			break
		}

		result.Outcomes = append(result.Outcomes, Outcome{
			CardID: card.ID,
			Name:   card.Name,
			Rarity: tier,
			Amount: outcome.Amount,
			IsNew:  outcome.IsNew,
		})
		result.ByCard[card.ID]++
		result.TotalDrawn++
		result.CreditsRemaining = outcome.NewBalance
	}

	slog.Info("Draw batch settled",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.Int("requested", count),
		slog.Int("drawn", result.TotalDrawn),
		slog.Int64("balance", result.CreditsRemaining),
		slog.Duration("took", time.Since(start)))

	return result, nil
}

// pickCard rolls a rarity and picks uniformly within that tier. An
// empty tier falls back to common, then walks up the ladder until a
// populated tier is found.
func (e *Engine) pickCard(ctx context.Context) (*models.Card, rarity.Tier, error) {
	rolled := e.weights.Sample(e.rng.Float64())

	cards, err := e.pool.CardsByRarity(ctx, rolled)
	if err != nil && !errors.Is(err, economy.ErrEmptyPool) {
		return nil, 0, err
	}
	if len(cards) > 0 {
		return cards[e.rng.IntN(len(cards))], rolled, nil
	}

	for _, tier := range rarity.Tiers() {
		if tier == rolled {
			continue
		}
		cards, err = e.pool.CardsByRarity(ctx, tier)
		if err != nil && !errors.Is(err, economy.ErrEmptyPool) {
			return nil, 0, err
		}
		if len(cards) > 0 {
			return cards[e.rng.IntN(len(cards))], tier, nil
		}
	}

	return nil, 0, economy.ErrEmptyPool
}
