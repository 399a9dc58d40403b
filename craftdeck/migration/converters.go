// converters.go
package migration

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
)

func (m *Migrator) convertUser(mu MongoUser) *models.User {
	now := time.Now()

	return &models.User{
		PlatformID:  mu.PlatformID,
		Username:    cleanseString(mu.Username),
		Balance:     int64(mu.Exp),
		LastDaily:   mu.LastDaily,
		DailyStreak: int(mu.Streaks.Daily),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (m *Migrator) convertMongoCard(mc MongoCard) *models.Card {
	now := time.Now()

	return &models.Card{
		ID:        int64(mc.CardID),
		Name:      cleanseString(mc.Name),
		Category:  mc.Col,
		Rarity:    levelToRarity(int(mc.Level)).String(),
		Animated:  mc.Animated,
		Tags:      convertTags(mc.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *Migrator) convertJSONCard(jc JSONCard) *models.Card {
	now := time.Now()

	return &models.Card{
		ID:        jc.ID,
		Name:      cleanseString(jc.Name),
		Category:  jc.Col,
		Rarity:    levelToRarity(jc.Level).String(),
		Animated:  jc.Animated,
		Tags:      convertTags(jc.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *Migrator) convertUserCard(mc MongoUserCard) *models.UserCard {
	if mc.CardID == nil {
		return nil
	}

	now := time.Now()
	obtained := mc.Obtained
	if obtained.IsZero() {
		obtained = now
	}

	return &models.UserCard{
		UserID:    mc.UserID,
		CardID:    int64(*mc.CardID),
		Amount:    int64(mc.Amount),
		Rarity:    levelToRarity(int(mc.Level)).String(),
		Favorite:  mc.Fav,
		Obtained:  obtained,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// levelToRarity maps the legacy numeric level (1-5) onto the tier
// ladder. Out-of-range levels clamp to the nearest tier.
func levelToRarity(level int) rarity.Tier {
	tiers := rarity.Tiers()
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(tiers) {
		idx = len(tiers) - 1
	}
	return tiers[idx]
}

// convertTags normalizes the legacy tags field, which was stored
// either as a single string or as an array of strings.
func convertTags(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		var tags []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

// cleanseString removes null bytes and control characters so legacy
// text inserts cleanly into UTF-8 columns.
func cleanseString(s string) string {
	if s == "" {
		return ""
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r == 0 || (r < 32 && r != 9 && r != 10 && r != 13) {
			continue
		}
		result.WriteRune(r)
	}
	return strings.TrimSpace(result.String())
}
