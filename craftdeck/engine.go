package craftdeck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database"
	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/economy/credits"
	"github.com/craftdeck/craftdeck/craftdeck/economy/draw"
	"github.com/craftdeck/craftdeck/craftdeck/economy/upgrade"
	"github.com/craftdeck/craftdeck/craftdeck/logger"
	"github.com/craftdeck/craftdeck/craftdeck/rarity"
	"github.com/craftdeck/craftdeck/craftdeck/services"
)

func New(cfg Config, version string, commit string) *Engine {
	return &Engine{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// Engine wires the persistence layer, services and game engines
// together. Fields are populated by Setup once the database is up.
type Engine struct {
	Cfg     Config
	Version string
	Commit  string
	DB      *database.DB

	UserRepository     repositories.UserRepository
	CardRepository     repositories.CardRepository
	UserCardRepository repositories.UserCardRepository
	DrawRepository     repositories.DrawRepository

	Ledger            *credits.Ledger
	DrawEngine        *draw.Engine
	UpgradeEngine     *upgrade.Engine
	CatalogService    *services.CatalogService
	CollectionService *services.CollectionService
	SearchService     *services.SearchService
	SpacesService     *services.SpacesService
}

// Setup builds the repositories, services and engines on top of the
// connected database. The catalog refresh routine runs until ctx is
// cancelled.
func (e *Engine) Setup(ctx context.Context) error {
	if e.DB == nil {
		return fmt.Errorf("database not connected")
	}

	e.UserRepository = repositories.NewUserRepository(e.DB.BunDB())
	e.CardRepository = repositories.NewCardRepository(e.DB.BunDB())
	e.UserCardRepository = repositories.NewUserCardRepository(e.DB.BunDB())
	e.DrawRepository = repositories.NewDrawRepository(e.DB.BunDB())

	weights := rarity.DefaultWeightTable()
	if len(e.Cfg.Game.DrawWeights) > 0 {
		wt, err := rarity.NewWeightTable(e.Cfg.Game.DrawWeights)
		if err != nil {
			return fmt.Errorf("invalid draw_weights config: %w", err)
		}
		weights = wt
	}

	if e.Cfg.Spaces.Key != "" {
		e.SpacesService = services.NewSpacesService(
			e.Cfg.Spaces.Key,
			e.Cfg.Spaces.Secret,
			e.Cfg.Spaces.Region,
			e.Cfg.Spaces.Bucket,
			e.Cfg.Spaces.CardRoot,
		)
	}

	e.CatalogService = services.NewCatalogService(e.CardRepository)
	e.CollectionService = services.NewCollectionService(e.CatalogService, e.UserCardRepository, e.SpacesService)
	e.SearchService = services.NewSearchService(e.CatalogService)

	e.Ledger = credits.NewLedger(e.UserRepository)
	e.DrawEngine = draw.NewEngine(e.CatalogService, e.DrawRepository, e.UserRepository, weights)
	e.UpgradeEngine = upgrade.NewEngine(e.CatalogService, e.UserCardRepository)

	e.CatalogService.StartRefreshRoutine(ctx)

	slog.Info("CraftDeck engine is ready",
		slog.String("version", e.Version),
		slog.String("commit", e.Commit))
	return nil
}

// Draw runs a draw batch for the user and drops their cached
// collection stats on success.
func (e *Engine) Draw(ctx context.Context, userID string, count int) (*draw.Result, error) {
	start := time.Now()
	result, err := e.DrawEngine.DrawCards(ctx, userID, count)
	logger.LogOperation("draw", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if result.TotalDrawn > 0 {
		e.CollectionService.InvalidateUser(userID)
	}
	return result, nil
}

// UpgradeCard upgrades one of the user's cards and drops their cached
// collection stats on success.
func (e *Engine) UpgradeCard(ctx context.Context, userID string, cardID int64) (*upgrade.Result, error) {
	start := time.Now()
	result, err := e.UpgradeEngine.Upgrade(ctx, userID, cardID)
	logger.LogOperation("upgrade", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.CollectionService.InvalidateUser(userID)
	return result, nil
}

// DrawsToday counts the user's draws over the last 24 hours.
func (e *Engine) DrawsToday(ctx context.Context, userID string) (int, error) {
	return e.DrawRepository.CountUserDrawsSince(ctx, userID, time.Now().Add(-24*time.Hour))
}

// Leaderboard returns the richest users first.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	return e.UserRepository.GetTopUsers(ctx, limit)
}
