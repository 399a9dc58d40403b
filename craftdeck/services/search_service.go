package services

import (
	"context"
	"strings"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/sahilm/fuzzy"
)

// CardSearchItems implements fuzzy.Source for card searching
type CardSearchItems []CardSearchItem

// CardSearchItem represents a single searchable card
type CardSearchItem struct {
	Card *models.Card
	Name string
}

// Len returns the length of the collection
func (items CardSearchItems) Len() int {
	return len(items)
}

// String returns the searchable string at index i
func (items CardSearchItems) String(i int) string {
	return items[i].Name
}

// SearchService provides fuzzy card lookup over the catalog snapshot.
type SearchService struct {
	catalog *CatalogService
}

func NewSearchService(catalog *CatalogService) *SearchService {
	return &SearchService{catalog: catalog}
}

// SearchCards returns catalog entries matching the query, best match
// first, capped at MaxSearchResults.
func (s *SearchService) SearchCards(ctx context.Context, query string) ([]*models.Card, error) {
	cards, err := s.catalog.AllCards(ctx)
	if err != nil {
		return nil, err
	}

	query = normalizeQuery(query)
	if query == "" {
		if len(cards) > config.MaxSearchResults {
			cards = cards[:config.MaxSearchResults]
		}
		return cards, nil
	}

	items := make(CardSearchItems, len(cards))
	for i, card := range cards {
		items[i] = CardSearchItem{Card: card, Name: normalizeQuery(card.Name)}
	}

	matches := fuzzy.FindFrom(query, items)
	if len(matches) > config.MaxSearchResults {
		matches = matches[:config.MaxSearchResults]
	}

	results := make([]*models.Card, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index].Card
	}
	return results, nil
}

// SearchOne returns the best match for the query, or ErrCardNotFound
// when nothing matches.
func (s *SearchService) SearchOne(ctx context.Context, query string) (*models.Card, error) {
	results, err := s.SearchCards(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, economy.ErrCardNotFound
	}
	return results[0], nil
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Join(strings.Fields(q), " ")
}
