package credits

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck/config"
	"github.com/craftdeck/craftdeck/craftdeck/database/models"
	"github.com/craftdeck/craftdeck/craftdeck/economy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.users[user.PlatformID] = user
	return nil
}

func (f *fakeUserRepo) GetByPlatformID(_ context.Context, platformID string) (*models.User, error) {
	user, ok := f.users[platformID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, platformID, username string, startingBalance int64) (*models.User, error) {
	if user, ok := f.users[platformID]; ok {
		return user, nil
	}
	user := &models.User{PlatformID: platformID, Username: username, Balance: startingBalance}
	f.users[platformID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.PlatformID] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, platformID string) error {
	delete(f.users, platformID)
	return nil
}

func (f *fakeUserRepo) GetBalance(_ context.Context, platformID string) (int64, error) {
	user, ok := f.users[platformID]
	if !ok {
		return 0, nil
	}
	return user.Balance, nil
}

func (f *fakeUserRepo) Credit(_ context.Context, platformID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}
	user := f.users[platformID]
	user.Balance += amount
	return user.Balance, nil
}

func (f *fakeUserRepo) Debit(_ context.Context, platformID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, economy.ErrInvalidAmount
	}
	user := f.users[platformID]
	if user.Balance < amount {
		return 0, economy.ErrInsufficientFunds
	}
	user.Balance -= amount
	return user.Balance, nil
}

func (f *fakeUserRepo) ApplyDaily(_ context.Context, platformID string, reward int64, streak int, now time.Time) (int64, error) {
	user := f.users[platformID]
	user.Balance += reward
	user.LastDaily = now
	user.DailyStreak = streak
	return user.Balance, nil
}

func (f *fakeUserRepo) GetTopUsers(_ context.Context, limit int) ([]*models.User, error) {
	return nil, nil
}

func TestDebitInsufficientFundsLeavesBalance(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &models.User{PlatformID: "u1", Balance: 3}
	ledger := NewLedger(repo)

	_, err := ledger.Debit(context.Background(), "u1", 5)
	require.ErrorIs(t, err, economy.ErrInsufficientFunds)

	balance, err := ledger.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &models.User{PlatformID: "u1", Balance: 3}
	ledger := NewLedger(repo)

	_, err := ledger.Credit(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, economy.ErrInvalidAmount)

	_, err = ledger.Credit(context.Background(), "u1", -4)
	assert.ErrorIs(t, err, economy.ErrInvalidAmount)

	_, err = ledger.Debit(context.Background(), "u1", -1)
	assert.ErrorIs(t, err, economy.ErrInvalidAmount)
}

func TestCreditAndDebitRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &models.User{PlatformID: "u1", Balance: 0}
	ledger := NewLedger(repo)

	balance, err := ledger.Credit(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	balance, err = ledger.Debit(context.Background(), "u1", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), balance)
}

func TestClaimDaily(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &models.User{
		PlatformID:  "u1",
		Balance:     0,
		LastDaily:   time.Now().Add(-25 * time.Hour),
		DailyStreak: 2,
	}
	ledger := NewLedger(repo)

	res, err := ledger.ClaimDaily(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak, "claim within the streak window extends the streak")
	assert.Equal(t, int64(config.DailyReward+2*config.DailyStreakBonus), res.Reward)

	_, err = ledger.ClaimDaily(context.Background(), "u1")
	assert.ErrorIs(t, err, economy.ErrDailyAlreadyClaimed)
}

func TestClaimDailyStreakResets(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &models.User{
		PlatformID:  "u1",
		Balance:     0,
		LastDaily:   time.Now().Add(-72 * time.Hour),
		DailyStreak: 7,
	}
	ledger := NewLedger(repo)

	res, err := ledger.ClaimDaily(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak, "late claim resets the streak")
	assert.Equal(t, int64(config.DailyReward), res.Reward)
}
