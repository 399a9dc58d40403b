package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	lru "github.com/hashicorp/golang-lru"
)

// CollectionStats summarizes a user's collection against the catalog.
type CollectionStats struct {
	TotalCards        int
	UniqueOwned       int
	TotalCopies       int64
	CompletionPercent float64
	Score             int64
	ByRarity          map[rarity.Tier]int
	IsComplete        bool
}

// CardView is the collection projection returned to callers: catalog
// data joined with the user's ownership row.
type CardView struct {
	CardID   int64
	Name     string
	Category string
	Rarity   rarity.Tier
	Amount   int64
	Favorite bool
	Obtained time.Time
	ImageURL string
}

type cachedStats struct {
	stats     *CollectionStats
	timestamp time.Time
}

type CollectionService struct {
	catalog      *CatalogService
	userCardRepo repositories.UserCardRepository
	spaces       *SpacesService
	cache        *lru.Cache
	cacheExpiry  time.Duration
}

// NewCollectionService builds the service. spaces may be nil when no
// object storage is configured; image URLs are then left empty.
func NewCollectionService(catalog *CatalogService, userCardRepo repositories.UserCardRepository, spaces *SpacesService) *CollectionService {
	cache, _ := lru.New(config.CacheSize)
	return &CollectionService{
		catalog:      catalog,
		userCardRepo: userCardRepo,
		spaces:       spaces,
		cache:        cache,
		cacheExpiry:  config.CacheExpiration,
	}
}

// GetCollectionStats computes ownership, completion and score for the
// user. An ownership row with zero copies still counts as owned: the
// card itself survives spending its duplicates.
func (s *CollectionService) GetCollectionStats(ctx context.Context, userID string) (*CollectionStats, error) {
	cacheKey := fmt.Sprintf("stats:%s", userID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if c, ok := cached.(cachedStats); ok {
			if time.Since(c.timestamp) < s.cacheExpiry {
				return c.stats, nil
			}
		}
	}

	total, err := s.catalog.TotalCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog size: %w", err)
	}

	userCards, err := s.userCardRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user cards: %w", err)
	}

	stats := &CollectionStats{
		TotalCards: total,
		ByRarity:   make(map[rarity.Tier]int),
	}

	for _, uc := range userCards {
		tier, err := rarity.Parse(uc.Rarity)
		if err != nil {
			continue
		}
		stats.UniqueOwned++
		stats.TotalCopies += uc.Amount
		stats.ByRarity[tier]++
		stats.Score += tier.Points()
	}

	if total > 0 {
		stats.CompletionPercent = (float64(stats.UniqueOwned) / float64(total)) * 100
	}
	stats.IsComplete = total > 0 && stats.UniqueOwned >= total

	s.cache.Add(cacheKey, cachedStats{stats: stats, timestamp: time.Now()})
	return stats, nil
}

// GetUserCollection returns the user's cards joined with catalog data,
// rarest first.
func (s *CollectionService) GetUserCollection(ctx context.Context, userID string) ([]CardView, error) {
	userCards, err := s.userCardRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user cards: %w", err)
	}

	views := make([]CardView, 0, len(userCards))
	for _, uc := range userCards {
		card, err := s.catalog.GetByID(ctx, uc.CardID)
		if err != nil {
			// Ownership rows can outlive catalog removals
			continue
		}

		tier, err := rarity.Parse(uc.Rarity)
		if err != nil {
			continue
		}

		view := CardView{
			CardID:   uc.CardID,
			Name:     card.Name,
			Category: card.Category,
			Rarity:   tier,
			Amount:   uc.Amount,
			Favorite: uc.Favorite,
			Obtained: uc.Obtained,
		}
		if s.spaces != nil {
			view.ImageURL = s.spaces.CardImageURL(card)
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Rarity != views[j].Rarity {
			return views[i].Rarity > views[j].Rarity
		}
		return views[i].Name < views[j].Name
	})

	return views, nil
}

// InvalidateUser drops the user's cached stats.
func (s *CollectionService) InvalidateUser(userID string) {
	s.cache.Remove(fmt.Sprintf("stats:%s", userID))
}
