package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/uptrace/bun"
)

type DrawRepository interface {
	ExecuteDraw(ctx context.Context, userID string, cardID int64, rarity string, cost int64) (*DrawOutcome, error)
	GetUserDraws(ctx context.Context, userID string, limit int) ([]*models.Draw, error)
	CountUserDrawsSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// DrawOutcome reports the state after one settled draw.
type DrawOutcome struct {
	CardID     int64
	Rarity     string
	Amount     int64
	IsNew      bool
	NewBalance int64
}

type drawRepository struct {
	db *bun.DB
}

func NewDrawRepository(db *bun.DB) DrawRepository {
	return &drawRepository{db: db}
}

// ExecuteDraw settles one draw atomically: debit the cost, record the
// card copy and append the audit row in a single transaction. Either
// all three happen or none do, so a failed draw never charges the user
// and a charged draw never loses its card.
func (r *drawRepository) ExecuteDraw(ctx context.Context, userID string, cardID int64, rarity string, cost int64) (*DrawOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()

	// Debit, guarded so the balance can never go negative
	var balance int64
	err = tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance - ?", cost).
		Set("updated_at = ?", now).
		Where("platform_id = ? AND balance >= ?", userID, cost).
		Returning("balance").
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit draw cost: %w", err)
	}

	// Record the copy, incrementing on repeat acquisitions
	userCard := &models.UserCard{
		UserID:    userID,
		CardID:    cardID,
		Amount:    1,
		Rarity:    rarity,
		Obtained:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.NewInsert().
		Model(userCard).
		On("CONFLICT (user_id, card_id) DO UPDATE").
		Set("amount = uc.amount + 1").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record card copy: %w", err)
	}

	draw := &models.Draw{
		UserID:  userID,
		CardID:  cardID,
		Rarity:  rarity,
		Cost:    cost,
		DrawnAt: now,
	}
	if _, err = tx.NewInsert().Model(draw).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &DrawOutcome{
		CardID:     cardID,
		Rarity:     userCard.Rarity,
		Amount:     userCard.Amount,
		IsNew:      userCard.Amount == 1,
		NewBalance: balance,
	}, nil
}

func (r *drawRepository) GetUserDraws(ctx context.Context, userID string, limit int) ([]*models.Draw, error) {
	var draws []*models.Draw
	err := r.db.NewSelect().
		Model(&draws).
		Where("user_id = ?", userID).
		Order("drawn_at DESC").
		Limit(limit).
		Scan(ctx)
	return draws, err
}

func (r *drawRepository) CountUserDrawsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Draw)(nil)).
		Where("user_id = ?", userID).
		Where("drawn_at > ?", since).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count draws: %w", err)
	}
	return count, nil
}
