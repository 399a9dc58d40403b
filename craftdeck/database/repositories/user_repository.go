package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByPlatformID(ctx context.Context, platformID string) (*models.User, error)
	GetOrCreate(ctx context.Context, platformID, username string, startingBalance int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, platformID string) error
	GetBalance(ctx context.Context, platformID string) (int64, error)
	Credit(ctx context.Context, platformID string, amount int64) (int64, error)
	Debit(ctx context.Context, platformID string, amount int64) (int64, error)
	ApplyDaily(ctx context.Context, platformID string, reward int64, streak int, now time.Time) (int64, error)
	GetTopUsers(ctx context.Context, limit int) ([]*models.User, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	return err
}

func (r *userRepository) GetByPlatformID(ctx context.Context, platformID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("platform_id = ?", platformID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("User not found in database",
				slog.String("type", "db"),
				slog.String("operation", "GetByPlatformID"),
				slog.String("platform_id", platformID),
				slog.String("error", "sql.ErrNoRows"))
		} else {
			slog.Error("Database error when getting user",
				slog.String("type", "db"),
				slog.String("operation", "GetByPlatformID"),
				slog.String("platform_id", platformID),
				slog.String("error", err.Error()))
		}
		return user, err
	}

	return user, nil
}

// GetOrCreate resolves the user row, registering a new account with the
// configured starting balance when none exists. Concurrent first calls
// for the same platform ID race on the unique index; the loser re-reads.
func (r *userRepository) GetOrCreate(ctx context.Context, platformID, username string, startingBalance int64) (*models.User, error) {
	user, err := r.GetByPlatformID(ctx, platformID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	user = &models.User{
		PlatformID: platformID,
		Username:   username,
		Balance:    startingBalance,
	}
	if err := r.Create(ctx, user); err != nil {
		if existing, getErr := r.GetByPlatformID(ctx, platformID); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user %s: %w", platformID, err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	return err
}

func (r *userRepository) Delete(ctx context.Context, platformID string) error {
	_, err := r.db.NewDelete().
		Model((*models.User)(nil)).
		Where("platform_id = ?", platformID).
		Exec(ctx)
	return err
}

func (r *userRepository) GetBalance(ctx context.Context, platformID string) (int64, error) {
	var user models.User
	err := r.db.NewSelect().
		Model(&user).
		Column("balance").
		Where("platform_id = ?", platformID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return user.Balance, nil
}

// Credit adds amount to the balance and returns the new value.
func (r *userRepository) Credit(ctx context.Context, platformID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}

	var balance int64
	err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("platform_id = ?", platformID).
		Returning("balance").
		Scan(ctx, &balance)
	if err != nil {
		return 0, fmt.Errorf("failed to credit user %s: %w", platformID, err)
	}
	return balance, nil
}

// Debit subtracts amount from the balance, guarded so the balance can
// never go below zero even under concurrent debits. Returns the new
// balance, or ErrInsufficientFunds without modifying anything.
func (r *userRepository) Debit(ctx context.Context, platformID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}

	var balance int64
	err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("platform_id = ? AND balance >= ?", platformID, amount).
		Returning("balance").
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, economy.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("failed to debit user %s: %w", platformID, err)
	}
	return balance, nil
}

// ApplyDaily credits the daily reward and stamps the cooldown and
// streak in one statement.
func (r *userRepository) ApplyDaily(ctx context.Context, platformID string, reward int64, streak int, now time.Time) (int64, error) {
	var balance int64
	err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance + ?", reward).
		Set("last_daily = ?", now).
		Set("daily_streak = ?", streak).
		Set("updated_at = ?", now).
		Where("platform_id = ?", platformID).
		Returning("balance").
		Scan(ctx, &balance)
	if err != nil {
		return 0, fmt.Errorf("failed to apply daily bonus for %s: %w", platformID, err)
	}
	return balance, nil
}

func (r *userRepository) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("balance DESC").
		Limit(limit).
		Scan(ctx)
	return users, err
}
