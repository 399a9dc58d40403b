package config

import "time"

// Application-wide constants organized by domain

// Economy Constants
const (
	// Draws
	DrawCost        = 1
	StartingBalance = 10

	// Daily system
	DailyReward       = 5
	DailyStreakBonus  = 1
	MaxStreakBonus    = 5
	DailyPeriod       = 24 * time.Hour
	DailyStreakWindow = 48 * time.Hour
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	SearchTimeout       = 10 * time.Second
	StatsQueryTimeout   = 10 * time.Second
	BatchQueryTimeout   = 30 * time.Second
	NetworkDialTimeout  = 5 * time.Second
	NetworkKeepAlive    = 30 * time.Second

	// Cache settings
	CacheExpiration        = 5 * time.Minute
	CatalogCacheExpiration = 15 * time.Minute
	CacheSize              = 10000

	// Batch processing
	DefaultBatchSize = 50
	MaxRetries       = 3
)

// Display Constants
const (
	// Rarity Colors
	RarityCommonColor    = 0x808080 // Gray
	RarityRareColor      = 0x0000FF // Blue
	RarityVeryRareColor  = 0x00FFFF // Cyan
	RarityEpicColor      = 0x800080 // Purple
	RarityLegendaryColor = 0xFFD700 // Gold

	DefaultPageSize = 10
	MaxPageSize     = 25
)

// File and Storage Constants
const (
	CardImageRoot = "cards/"
	MaxImageSize  = 10 * 1024 * 1024 // 10MB
)

// Search Constants
const (
	MaxSearchResults = 100
)

// Logging Constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
