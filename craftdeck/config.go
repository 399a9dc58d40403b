package craftdeck

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	DB     DBConfig     `toml:"db"`
	Game   GameConfig   `toml:"game"`
	Legacy LegacyConfig `toml:"legacy"`
	Spaces struct {
		Key      string `toml:"key"`
		Secret   string `toml:"secret"`
		Region   string `toml:"region"`
		Bucket   string `toml:"bucket"`
		CardRoot string `toml:"cardroot"`
	} `toml:"spaces"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// GameConfig carries the balance knobs. DrawWeights overrides the
// shipped rarity distribution when present; it must list five values,
// strictly decreasing and summing to 1.
type GameConfig struct {
	DrawWeights     []float64 `toml:"draw_weights"`
	StartingBalance int64     `toml:"starting_balance"`
}

// LegacyConfig points at the MongoDB deployment holding pre-migration
// collection data, used only by the -import-legacy flag.
type LegacyConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}
