package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID          int64    `bun:"id,pk"`
	Name        string   `bun:"name,notnull"`
	Category    string   `bun:"category,notnull,type:text"`
	Rarity      string   `bun:"rarity,notnull,type:text"`
	Description string   `bun:"description,type:text,default:''"`
	ImageRef    string   `bun:"image_ref,type:text,default:''"`
	Animated    bool     `bun:"animated,notnull,default:false"`
	Tags        []string `bun:"tags,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
