package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         int64  `bun:"id,pk,autoincrement"`
	PlatformID string `bun:"platform_id,notnull,unique"`
	Username   string `bun:"username,notnull"`

	// Credits
	Balance int64 `bun:"balance,notnull,default:0"`

	// Daily bonus tracking
	LastDaily   time.Time `bun:"last_daily"`
	DailyStreak int       `bun:"daily_streak,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
