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

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	BulkCreate(ctx context.Context, cards []*models.Card) error
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetAll(ctx context.Context) ([]*models.Card, error)
	GetByRarity(ctx context.Context, rarity string) ([]*models.Card, error)
	GetByCategory(ctx context.Context, category string) ([]*models.Card, error)
	GetByName(ctx context.Context, name string) (*models.Card, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type cardRepository struct {
	db *bun.DB
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(card).Exec(ctx)
	return err
}

func (r *cardRepository) BulkCreate(ctx context.Context, cards []*models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	now := time.Now()
	for _, card := range cards {
		card.CreatedAt = now
		card.UpdatedAt = now
	}
	_, err := r.db.NewInsert().
		Model(&cards).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("category = EXCLUDED.category").
		Set("rarity = EXCLUDED.rarity").
		Set("description = EXCLUDED.description").
		Set("image_ref = EXCLUDED.image_ref").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}

	return card, nil
}

func (r *cardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Order("id ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) GetByRarity(ctx context.Context, rarity string) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("rarity = ?", rarity).
		Order("id ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) GetByCategory(ctx context.Context, category string) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("category = ?", category).
		Order("id ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) GetByName(ctx context.Context, name string) (*models.Card, error) {
	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("LOWER(name) = LOWER(?)", name).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrCardNotFound
		}
		return nil, err
	}

	return card, nil
}

func (r *cardRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Card)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
