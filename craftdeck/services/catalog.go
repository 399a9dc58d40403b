package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"golang.org/x/sync/singleflight"
)

type catalogSnapshot struct {
	all       []*models.Card
	byID      map[int64]*models.Card
	byRarity  map[rarity.Tier][]*models.Card
	fetchedAt time.Time
}

// CatalogService serves the card catalog from a periodically refreshed
// in-memory snapshot. Reads hit the snapshot; concurrent refreshes are
// collapsed into one query through singleflight.
type CatalogService struct {
	cards repositories.CardRepository
	ttl   time.Duration
	group singleflight.Group

	mu       sync.RWMutex
	snapshot *catalogSnapshot
}

func NewCatalogService(cards repositories.CardRepository) *CatalogService {
	return &CatalogService{
		cards: cards,
		ttl:   config.CatalogCacheExpiration,
	}
}

func (s *CatalogService) current(ctx context.Context) (*catalogSnapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap != nil && time.Since(snap.fetchedAt) < s.ttl {
		return snap, nil
	}

	v, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		// Serve the stale snapshot over failing hard when we have one
		if snap != nil {
			slog.Warn("Catalog refresh failed, serving stale snapshot",
				slog.String("type", "sys"),
				slog.Any("error", err))
			return snap, nil
		}
		return nil, err
	}
	return v.(*catalogSnapshot), nil
}

func (s *CatalogService) load(ctx context.Context) (*catalogSnapshot, error) {
	start := time.Now()

	all, err := s.cards.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &catalogSnapshot{
		all:       all,
		byID:      make(map[int64]*models.Card, len(all)),
		byRarity:  make(map[rarity.Tier][]*models.Card),
		fetchedAt: time.Now(),
	}
	for _, card := range all {
		snap.byID[card.ID] = card
		tier, err := rarity.Parse(card.Rarity)
		if err != nil {
			slog.Warn("Skipping card with unknown rarity",
				slog.String("type", "sys"),
				slog.Int64("card_id", card.ID),
				slog.String("rarity", card.Rarity))
			continue
		}
		snap.byRarity[tier] = append(snap.byRarity[tier], card)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	slog.Info("Catalog snapshot refreshed",
		slog.String("type", "sys"),
		slog.Int("cards", len(all)),
		slog.Duration("took", time.Since(start)))

	return snap, nil
}

// Invalidate drops the snapshot so the next read reloads.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *CatalogService) AllCards(ctx context.Context) ([]*models.Card, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.all, nil
}

// CardsByRarity returns the catalog entries at the given tier, or
// ErrEmptyPool when the tier has none.
func (s *CatalogService) CardsByRarity(ctx context.Context, tier rarity.Tier) ([]*models.Card, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	cards := snap.byRarity[tier]
	if len(cards) == 0 {
		return nil, economy.ErrEmptyPool
	}
	return cards, nil
}

func (s *CatalogService) TotalCards(ctx context.Context) (int, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.all), nil
}

// GetByID resolves one catalog entry, with ErrCardNotFound for unknown
// IDs.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	card, ok := snap.byID[id]
	if !ok {
		return nil, economy.ErrCardNotFound
	}
	return card, nil
}

// StartRefreshRoutine refreshes the snapshot in the background until
// the context is cancelled.
func (s *CatalogService) StartRefreshRoutine(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.load(ctx); err != nil {
					slog.Error("Catalog refresh failed",
						slog.String("type", "sys"),
						slog.Any("error", err))
				}
			}
		}
	}()
}
