package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Draw is an audit record of a single paid draw.
type Draw struct {
	bun.BaseModel `bun:"table:draws,alias:d"`

	ID      int64     `bun:"id,pk,autoincrement"`
	UserID  string    `bun:"user_id,notnull"`
	CardID  int64     `bun:"card_id,notnull"`
	Rarity  string    `bun:"rarity,notnull,type:text"`
	Cost    int64     `bun:"cost,notnull"`
	DrawnAt time.Time `bun:"drawn_at,notnull"`
}
