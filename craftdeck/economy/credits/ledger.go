// Package credits implements the credit ledger: balance queries,
// credits, guarded debits and the daily bonus with its streak.
package credits

import (
	"context"
	"log/slog"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/repositories"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
)

type Ledger struct {
	users repositories.UserRepository
}

func NewLedger(users repositories.UserRepository) *Ledger {
	return &Ledger{users: users}
}

func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	return l.users.GetBalance(ctx, userID)
}

// Credit adds amount to the user's balance. Amounts must be positive;
// zero and negative amounts are rejected with ErrInvalidAmount.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}

	balance, err := l.users.Credit(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	slog.Info("Credits granted",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance))
	return balance, nil
}

// Debit removes amount from the user's balance, failing with
// ErrInsufficientFunds when the balance cannot cover it. The balance is
// never driven negative.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}
	return l.users.Debit(ctx, userID, amount)
}

// DailyResult reports a settled daily bonus claim.
type DailyResult struct {
	Reward     int64
	Streak     int
	NewBalance int64
	NextClaim  time.Time
}

// ClaimDaily grants the daily reward once per period. Claiming within
// the streak window of the previous claim extends the streak, which
// adds a capped bonus on top of the base reward. Claiming later resets
// the streak to one.
func (l *Ledger) ClaimDaily(ctx context.Context, userID string) (*DailyResult, error) {
	user, err := l.users.GetByPlatformID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(user.LastDaily)
	if elapsed < config.DailyPeriod {
		return nil, economy.ErrDailyAlreadyClaimed
	}

	streak := 1
	if elapsed < config.DailyStreakWindow {
		streak = user.DailyStreak + 1
	}

	bonus := int64(streak-1) * config.DailyStreakBonus
	if bonus > config.MaxStreakBonus {
		bonus = config.MaxStreakBonus
	}
	reward := int64(config.DailyReward) + bonus

	balance, err := l.users.ApplyDaily(ctx, userID, reward, streak, now)
	if err != nil {
		return nil, err
	}

	slog.Info("Daily bonus claimed",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.Int64("reward", reward),
		slog.Int("streak", streak),
		slog.Int64("balance", balance))

	return &DailyResult{
		Reward:     reward,
		Streak:     streak,
		NewBalance: balance,
		NextClaim:  now.Add(config.DailyPeriod),
	}, nil
}
