// types.go
package migration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoUser is the legacy user document shape.
type MongoUser struct {
	ID         primitive.ObjectID `bson:"_id"`
	PlatformID string             `bson:"platform_id"`
	Username   string             `bson:"username"`
	Exp        float64            `bson:"exp"`
	LastDaily  time.Time          `bson:"lastdaily"`
	Streaks    Streaks            `bson:"streaks"`
	Joined     time.Time          `bson:"joined"`
}

// Streaks carries the legacy streak counters. Only the daily streak
// survives the migration.
type Streaks struct {
	Daily float64 `bson:"daily"`
}

// MongoCard is the legacy card document shape. Rarity was stored as a
// numeric level (1-5).
type MongoCard struct {
	ID       primitive.ObjectID `bson:"_id"`
	CardID   float64            `bson:"id"`
	Name     string             `bson:"name"`
	Level    float64            `bson:"level"`
	Animated bool               `bson:"animated"`
	Col      string             `bson:"col"`
	Tags     interface{}        `bson:"tags"`
}

// MongoUserCard is the legacy ownership document shape.
type MongoUserCard struct {
	ID       primitive.ObjectID `bson:"_id"`
	UserID   string             `bson:"userid"`
	CardID   *float64           `bson:"cardid"`
	Amount   float64            `bson:"amount"`
	Level    float64            `bson:"level"`
	Fav      bool               `bson:"fav"`
	Obtained time.Time          `bson:"obtained"`
}

// JSONCard is a card definition in the cards.json seed file.
type JSONCard struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	Animated bool        `json:"animated"`
	Col      string      `json:"col"`
	Tags     interface{} `json:"tags"`
}

// TableStats tracks per-table migration counters.
type TableStats struct {
	Read     int
	Imported int
	Skipped  int
}

// MigrationStats aggregates counters across the whole run.
type MigrationStats struct {
	Tables    map[string]*TableStats
	StartTime time.Time
	EndTime   time.Time
}
