package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/uptrace/bun"
)

type UserCardRepository interface {
	GetUserCard(ctx context.Context, userID string, cardID int64) (*models.UserCard, error)
	GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error)
	AddCopy(ctx context.Context, userID string, cardID int64, rarity string) (*models.UserCard, error)
	ApplyUpgrade(ctx context.Context, userID string, cardID int64, currentRarity string, cost int64, nextRarity string) (bool, error)
	SetFavorite(ctx context.Context, userID string, cardID int64, favorite bool) error
	Delete(ctx context.Context, id int64) error
}

type userCardRepository struct {
	db *bun.DB
}

func NewUserCardRepository(db *bun.DB) UserCardRepository {
	return &userCardRepository{db: db}
}

func (r *userCardRepository) GetUserCard(ctx context.Context, userID string, cardID int64) (*models.UserCard, error) {
	userCard := new(models.UserCard)
	err := r.db.NewSelect().
		Model(userCard).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user card: %w", err)
	}

	return userCard, nil
}

func (r *userCardRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var userCards []*models.UserCard
	err := r.db.NewSelect().
		Model(&userCards).
		Where("user_id = ?", userID).
		Order("obtained DESC").
		Scan(ctx)
	return userCards, err
}

// AddCopy records one more copy of a card, inserting the ownership row
// on first acquisition. The unique (user_id, card_id) index turns the
// insert race into a single-row increment, so concurrent draws of the
// same card never produce duplicate rows.
func (r *userCardRepository) AddCopy(ctx context.Context, userID string, cardID int64, rarity string) (*models.UserCard, error) {
	now := time.Now()
	userCard := &models.UserCard{
		UserID:    userID,
		CardID:    cardID,
		Amount:    1,
		Rarity:    rarity,
		Obtained:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.NewInsert().
		Model(userCard).
		On("CONFLICT (user_id, card_id) DO UPDATE").
		Set("amount = uc.amount + 1").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add card copy: %w", err)
	}

	return userCard, nil
}

// ApplyUpgrade spends cost duplicates and advances the card's tier in a
// single guarded statement. The WHERE clause revalidates ownership, the
// duplicate count and the current tier, so a stale eligibility check
// can never double-spend. Returns false when the guard rejected.
func (r *userCardRepository) ApplyUpgrade(ctx context.Context, userID string, cardID int64, currentRarity string, cost int64, nextRarity string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("amount = amount - ?", cost).
		Set("rarity = ?", nextRarity).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Where("amount >= ?", cost).
		Where("rarity = ?", currentRarity).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to apply upgrade: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *userCardRepository) SetFavorite(ctx context.Context, userID string, cardID int64, favorite bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("favorite = ?", favorite).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Exec(ctx)
	return err
}

func (r *userCardRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.UserCard)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
