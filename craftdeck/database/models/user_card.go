package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserCard is one row per (user, card). Amount counts duplicate copies;
// Rarity is the user's current tier for the card, which starts at the
// catalog rarity and climbs through upgrades. A row with amount 0 can
// remain after an upgrade spends every copy.
type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   string    `bun:"user_id,notnull"`
	CardID   int64     `bun:"card_id,notnull"`
	Amount   int64     `bun:"amount,notnull,default:1"`
	Rarity   string    `bun:"rarity,notnull,type:text"`
	Favorite bool      `bun:"favorite,notnull,default:false"`
	Obtained time.Time `bun:"obtained,notnull,default:current_timestamp"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
