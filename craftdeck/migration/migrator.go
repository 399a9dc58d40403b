package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/logger"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migrator imports the legacy MongoDB dataset into Postgres. Cards can
// also be seeded from a cards.json file when no Mongo source is
// available.
type Migrator struct {
	pgDB      *bun.DB
	dataDir   string
	batchSize int
	stats     MigrationStats
	mongoDB   *mongo.Database
}

func NewMigrator(pgDB *bun.DB, dataDir string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		dataDir:   dataDir,
		batchSize: 1000,
		stats: MigrationStats{
			Tables:    make(map[string]*TableStats),
			StartTime: time.Now(),
		},
	}
}

// SetBatchSize overrides the default batch size for inserts.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// UseMongo enables direct-from-Mongo migration mode.
func (m *Migrator) UseMongo(client *mongo.Client, dbName string) {
	if client != nil && dbName != "" {
		m.mongoDB = client.Database(dbName)
	}
}

// ConnectMongo opens a client for the legacy database.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping legacy mongo: %w", err)
	}
	return client, nil
}

// MigrateAll runs the full import. Order preserves referential
// integrity: cards first, then users, then ownership rows.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	logProgress("Starting legacy migration")
	m.stats.StartTime = time.Now()

	steps := []struct {
		name    string
		migrate func(context.Context) error
	}{
		{"cards_json", m.ImportCardsFromJSON},
		{"cards", m.ImportCardsFromMongo},
		{"users", m.MigrateUsers},
		{"user_cards", m.MigrateUserCards},
	}

	for _, step := range steps {
		logProgress(fmt.Sprintf("Starting migration step: %s", step.name))
		if err := step.migrate(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		logProgress(fmt.Sprintf("Completed migration step: %s", step.name))
	}

	m.stats.EndTime = time.Now()
	m.logFinalStats()
	return nil
}

// ImportCardsFromJSON seeds the catalog from cards.json when present.
func (m *Migrator) ImportCardsFromJSON(ctx context.Context) error {
	filePath := filepath.Join(m.dataDir, "cards.json")
	if _, err := os.Stat(filePath); err != nil {
		logProgress("cards.json not found, skipping JSON import")
		return nil
	}

	logProgress(fmt.Sprintf("Importing cards from JSON: %s", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read cards.json: %w", err)
	}

	var jsonCards []JSONCard
	if err := json.Unmarshal(data, &jsonCards); err != nil {
		return fmt.Errorf("failed to parse cards.json: %w", err)
	}

	stats := m.tableStats("cards_json")
	seenIDs := make(map[int64]bool, len(jsonCards))
	var cards []*models.Card

	for i, jc := range jsonCards {
		stats.Read++
		if jc.ID < 0 || jc.Name == "" {
			stats.Skipped++
			logProgress(fmt.Sprintf("Invalid card record %d (name: %s), skipping", i, jc.Name))
			continue
		}
		if seenIDs[jc.ID] {
			stats.Skipped++
			logProgress(fmt.Sprintf("Duplicate card ID %d (record %d), skipping", jc.ID, i))
			continue
		}
		seenIDs[jc.ID] = true

		cards = append(cards, m.convertJSONCard(jc))
		if len(cards) >= m.batchSize {
			if err := m.batchInsertCards(ctx, cards); err != nil {
				return err
			}
			stats.Imported += len(cards)
			cards = cards[:0]
		}
	}

	if len(cards) > 0 {
		if err := m.batchInsertCards(ctx, cards); err != nil {
			return err
		}
		stats.Imported += len(cards)
	}

	logProgress(fmt.Sprintf("Cards JSON import completed: %d read, %d imported, %d skipped",
		stats.Read, stats.Imported, stats.Skipped))
	return nil
}

// ImportCardsFromMongo imports the card catalog from live Mongo.
func (m *Migrator) ImportCardsFromMongo(ctx context.Context) error {
	if m.mongoDB == nil {
		return nil
	}
	cur, err := m.mongoDB.Collection("cards").Find(ctx, bson.D{})
	if err != nil {
		logProgress("cards collection not found or query failed; skipping")
		return nil
	}
	defer cur.Close(ctx)

	stats := m.tableStats("cards")
	var batch []*models.Card
	for cur.Next(ctx) {
		var mc MongoCard
		if err := cur.Decode(&mc); err != nil {
			stats.Skipped++
			continue
		}
		stats.Read++
		batch = append(batch, m.convertMongoCard(mc))
		if len(batch) >= m.batchSize {
			if err := m.batchInsertCards(ctx, batch); err != nil {
				return err
			}
			stats.Imported += len(batch)
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := m.batchInsertCards(ctx, batch); err != nil {
			return err
		}
		stats.Imported += len(batch)
	}
	return nil
}

// MigrateUsers imports user accounts from live Mongo.
func (m *Migrator) MigrateUsers(ctx context.Context) error {
	if m.mongoDB == nil {
		return nil
	}
	cur, err := m.mongoDB.Collection("users").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	defer cur.Close(ctx)

	var users []MongoUser
	for cur.Next(ctx) {
		var mu MongoUser
		if err := cur.Decode(&mu); err == nil {
			users = append(users, mu)
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	return m.processUsers(ctx, users)
}

func (m *Migrator) processUsers(ctx context.Context, mongoUsers []MongoUser) error {
	stats := m.tableStats("users")
	stats.Read = len(mongoUsers)

	// Deduplicate by platform ID, keeping the latest record.
	byPlatformID := make(map[string]*models.User, len(mongoUsers))
	duplicateCount := 0
	for _, mu := range mongoUsers {
		user := m.convertUser(mu)
		if user.PlatformID == "" {
			stats.Skipped++
			continue
		}
		if _, exists := byPlatformID[user.PlatformID]; exists {
			duplicateCount++
			logProgress(fmt.Sprintf("Duplicate platform ID found: %s (keeping latest record)", user.PlatformID))
		}
		byPlatformID[user.PlatformID] = user
	}

	var users []*models.User
	for _, user := range byPlatformID {
		users = append(users, user)
	}

	for i := 0; i < len(users); i += m.batchSize {
		end := i + m.batchSize
		if end > len(users) {
			end = len(users)
		}
		batch := users[i:end]

		slog.Info("Inserting batch of users",
			"batchSize", len(batch),
			"progress", fmt.Sprintf("%d/%d", end, len(users)))

		if err := m.batchInsertUsers(ctx, batch); err != nil {
			return err
		}
		stats.Imported += len(batch)
	}

	logProgress(fmt.Sprintf("User migration completed: %d read, %d unique users imported, %d duplicates handled",
		len(mongoUsers), len(users), duplicateCount))
	return nil
}

// MigrateUserCards imports ownership rows from live Mongo. Rows that
// reference cards missing from the catalog are skipped and logged.
func (m *Migrator) MigrateUserCards(ctx context.Context) error {
	if m.mongoDB == nil {
		return nil
	}
	cur, err := m.mongoDB.Collection("usercards").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query usercards: %w", err)
	}
	defer cur.Close(ctx)

	var cards []MongoUserCard
	for cur.Next(ctx) {
		var mc MongoUserCard
		if err := cur.Decode(&mc); err == nil {
			cards = append(cards, mc)
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	return m.processUserCards(ctx, cards)
}

func (m *Migrator) processUserCards(ctx context.Context, mongoCards []MongoUserCard) error {
	var validCardIDs []int64
	err := m.pgDB.NewSelect().
		Model((*models.Card)(nil)).
		Column("id").
		Scan(ctx, &validCardIDs)
	if err != nil {
		return fmt.Errorf("failed to get valid card IDs: %w", err)
	}

	validCardIDsMap := make(map[int64]bool, len(validCardIDs))
	for _, id := range validCardIDs {
		validCardIDsMap[id] = true
	}

	stats := m.tableStats("user_cards")
	stats.Read = len(mongoCards)

	var userCards []*models.UserCard
	for _, mc := range mongoCards {
		uc := m.convertUserCard(mc)
		if uc == nil || uc.UserID == "" {
			stats.Skipped++
			continue
		}
		if !validCardIDsMap[uc.CardID] {
			stats.Skipped++
			logProgress(fmt.Sprintf("Skipping ownership row for missing card %d (user %s)", uc.CardID, uc.UserID))
			continue
		}

		userCards = append(userCards, uc)
		if len(userCards) >= m.batchSize {
			if err := m.batchInsertUserCards(ctx, userCards); err != nil {
				return err
			}
			stats.Imported += len(userCards)
			logProgress(fmt.Sprintf("Processed %d user cards, skipped %d so far", stats.Imported, stats.Skipped))
			userCards = userCards[:0]
		}
	}

	if len(userCards) > 0 {
		if err := m.batchInsertUserCards(ctx, userCards); err != nil {
			return err
		}
		stats.Imported += len(userCards)
	}

	logProgress(fmt.Sprintf("User card migration completed: %d read, %d imported, %d skipped",
		stats.Read, stats.Imported, stats.Skipped))
	return nil
}

func (m *Migrator) batchInsertCards(ctx context.Context, cards []*models.Card) error {
	_, err := m.pgDB.NewInsert().
		Model(&cards).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("category = EXCLUDED.category").
		Set("rarity = EXCLUDED.rarity").
		Set("animated = EXCLUDED.animated").
		Set("tags = EXCLUDED.tags").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert cards batch: %w", err)
	}
	return nil
}

func (m *Migrator) batchInsertUsers(ctx context.Context, users []*models.User) error {
	startTime := time.Now()

	_, err := m.pgDB.NewInsert().
		Model(&users).
		On("CONFLICT (platform_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("balance = EXCLUDED.balance").
		Set("last_daily = EXCLUDED.last_daily").
		Set("daily_streak = EXCLUDED.daily_streak").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		slog.Error("Batch insert of users failed",
			"error", err,
			"duration", time.Since(startTime))
		return fmt.Errorf("batch insert failed: %w", err)
	}

	slog.Info("Batch insert of users completed",
		"count", len(users),
		"duration", time.Since(startTime))
	return nil
}

func (m *Migrator) batchInsertUserCards(ctx context.Context, userCards []*models.UserCard) error {
	_, err := m.pgDB.NewInsert().
		Model(&userCards).
		On("CONFLICT (user_id, card_id) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Set("rarity = EXCLUDED.rarity").
		Set("favorite = EXCLUDED.favorite").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert user cards batch: %w", err)
	}
	return nil
}

func (m *Migrator) tableStats(name string) *TableStats {
	if m.stats.Tables == nil {
		m.stats.Tables = make(map[string]*TableStats)
	}
	ts, ok := m.stats.Tables[name]
	if !ok {
		ts = &TableStats{}
		m.stats.Tables[name] = ts
	}
	return ts
}

func (m *Migrator) logFinalStats() {
	duration := m.stats.EndTime.Sub(m.stats.StartTime)
	for name, ts := range m.stats.Tables {
		slog.Info("Migration table summary",
			"table", name,
			"read", ts.Read,
			"imported", ts.Imported,
			"skipped", ts.Skipped)
	}
	logProgress(fmt.Sprintf("Migration completed in %s", duration.Round(time.Millisecond)))
}

func logProgress(msg string) {
	logger.LogSystem(msg)
}
