// Package upgrade implements tier upgrades: spending duplicate copies
// of a card to advance it one rarity tier.
package upgrade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/lock"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
)

// CardSource resolves catalog entries.
type CardSource interface {
	GetByID(ctx context.Context, id int64) (*models.Card, error)
}

// CollectionStore is the ownership view the engine needs.
type CollectionStore interface {
	GetUserCard(ctx context.Context, userID string, cardID int64) (*models.UserCard, error)
	ApplyUpgrade(ctx context.Context, userID string, cardID int64, currentRarity string, cost int64, nextRarity string) (bool, error)
}

// Eligibility describes whether an upgrade can proceed and why not
// when it cannot.
type Eligibility struct {
	Eligible    bool
	Reason      string
	Cost        int64
	Have        int64
	CurrentTier rarity.Tier
	NextTier    rarity.Tier
}

// Result is a settled upgrade.
type Result struct {
	CardID    int64
	From      rarity.Tier
	To        rarity.Tier
	Spent     int64
	Remaining int64
}

type Engine struct {
	cards      CardSource
	collection CollectionStore
	locks      *lock.KeyedLock
}

func NewEngine(cards CardSource, collection CollectionStore) *Engine {
	return &Engine{
		cards:      cards,
		collection: collection,
		locks:      lock.NewKeyedLock(),
	}
}

func upgradeKey(userID string, cardID int64) string {
	return fmt.Sprintf("%s:%d", userID, cardID)
}

// CanUpgrade reports whether the user can advance the card one tier.
// It never mutates anything, so the answer can go stale; Upgrade
// revalidates before spending.
func (e *Engine) CanUpgrade(ctx context.Context, userID string, cardID int64) (*Eligibility, error) {
	if _, err := e.cards.GetByID(ctx, cardID); err != nil {
		return nil, err
	}

	userCard, err := e.collection.GetUserCard(ctx, userID, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Eligibility{Reason: economy.ReasonNotOwned}, nil
		}
		return nil, err
	}

	tier, err := rarity.Parse(userCard.Rarity)
	if err != nil {
		return nil, err
	}

	next, ok := tier.Next()
	if !ok {
		return &Eligibility{
			Reason:      economy.ReasonMaxTierReached,
			Have:        userCard.Amount,
			CurrentTier: tier,
		}, nil
	}

	cost, _ := tier.UpgradeCost()
	if userCard.Amount < cost {
		return &Eligibility{
			Reason:      economy.ReasonInsufficientDuplicates,
			Cost:        cost,
			Have:        userCard.Amount,
			CurrentTier: tier,
			NextTier:    next,
		}, nil
	}

	return &Eligibility{
		Eligible:    true,
		Cost:        cost,
		Have:        userCard.Amount,
		CurrentTier: tier,
		NextTier:    next,
	}, nil
}

// Upgrade spends the duplicate cost and advances the card one tier.
// The per-(user,card) lock plus the guarded update in the store make a
// lost race surface as a NotEligibleError instead of a double spend.
func (e *Engine) Upgrade(ctx context.Context, userID string, cardID int64) (*Result, error) {
	var result *Result
	err := e.locks.WithLock(upgradeKey(userID, cardID), func() error {
		elig, err := e.CanUpgrade(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if !elig.Eligible {
			return e.notEligible(cardID, elig)
		}

		applied, err := e.collection.ApplyUpgrade(ctx, userID, cardID,
			elig.CurrentTier.String(), elig.Cost, elig.NextTier.String())
		if err != nil {
			return err
		}
		if !applied {
			// The guarded update rejected: state moved between the
			// check and the spend. Recompute for an accurate reason.
			elig, err = e.CanUpgrade(ctx, userID, cardID)
			if err != nil {
				return err
			}
			return e.notEligible(cardID, elig)
		}

		result = &Result{
			CardID:    cardID,
			From:      elig.CurrentTier,
			To:        elig.NextTier,
			Spent:     elig.Cost,
			Remaining: elig.Have - elig.Cost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Card upgraded",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.String("from", result.From.String()),
		slog.String("to", result.To.String()),
		slog.Int64("spent", result.Spent))

	return result, nil
}

func (e *Engine) notEligible(cardID int64, elig *Eligibility) error {
	reason := elig.Reason
	if reason == "" {
		reason = economy.ReasonInsufficientDuplicates
	}
	return &economy.NotEligibleError{
		Reason: reason,
		CardID: cardID,
		Need:   elig.Cost,
		Have:   elig.Have,
	}
}
