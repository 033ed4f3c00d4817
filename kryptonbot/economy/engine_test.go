package economy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *repotest.UserStore, *repotest.SettingsStore, *repotest.AuditStore) {
	users := repotest.NewUserStore()
	settings := repotest.NewSettingsStore()
	audit := repotest.NewAuditStore()
	return NewEngine(users, settings, audit), users, settings, audit
}

func TestEngine_GetBalance_CreatesAccount(t *testing.T) {
	e, _, _, _ := newTestEngine()

	balance, err := e.GetBalance(context.Background(), "100", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestEngine_AddBalance(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		delta   int64
		want    int64
	}{
		{name: "credit", initial: 0, delta: 25, want: 25},
		{name: "debit", initial: 25, delta: -10, want: 15},
		{name: "overdraw clamps at zero", initial: 5, delta: -100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, users, _, _ := newTestEngine()
			users.Seed(&models.User{DiscordID: "100", Username: "alice", Coins: tt.initial})

			got, err := e.AddBalance(context.Background(), "100", tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_AddBalance_Concurrent(t *testing.T) {
	e, users, _, _ := newTestEngine()
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := e.AddBalance(context.Background(), "100", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := e.GetBalance(context.Background(), "100", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(n), balance)
}

func TestEngine_SetBalance(t *testing.T) {
	e, _, _, _ := newTestEngine()

	err := e.SetBalance(context.Background(), "100", -1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	require.NoError(t, e.SetBalance(context.Background(), "100", 500))
	balance, err := e.GetBalance(context.Background(), "100", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestEngine_ClaimDaily(t *testing.T) {
	e, users, _, audit := newTestEngine()

	result, err := e.ClaimDaily(context.Background(), "100", "alice", "")
	require.NoError(t, err)
	assert.True(t, result.Claimed)
	assert.Equal(t, int64(50), result.Amount)
	assert.Equal(t, int64(50), result.NewBalance)
	assert.Len(t, audit.ByAction("daily_claim"), 1)

	// Second claim inside the window reports the cooldown.
	result, err = e.ClaimDaily(context.Background(), "100", "alice", "")
	require.NoError(t, err)
	assert.False(t, result.Claimed)
	assert.Greater(t, result.Remaining, time.Duration(0))
	assert.LessOrEqual(t, result.Remaining, config.DailyClaimWindow)

	// Age the last claim past the window and try again.
	stale := time.Now().Add(-config.DailyClaimWindow - time.Minute)
	user, err := users.GetByDiscordID(context.Background(), "100")
	require.NoError(t, err)
	user.LastDaily = &stale
	users.Seed(user)

	result, err = e.ClaimDaily(context.Background(), "100", "alice", "")
	require.NoError(t, err)
	assert.True(t, result.Claimed)
	assert.Equal(t, int64(100), result.NewBalance)
}

func TestEngine_ClaimDaily_UsesStoredReward(t *testing.T) {
	e, _, settings, _ := newTestEngine()
	require.NoError(t, settings.Set(context.Background(), config.SettingReward, models.RewardSettings{
		MessageReward:   1,
		CooldownSeconds: 60,
		MessagesPerCoin: 1,
		DailyReward:     75,
	}))

	result, err := e.ClaimDaily(context.Background(), "100", "alice", "")
	require.NoError(t, err)
	assert.True(t, result.Claimed)
	assert.Equal(t, int64(75), result.Amount)
}

func TestEngine_GenerateKey(t *testing.T) {
	e, users, _, audit := newTestEngine()
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})

	first, err := e.GenerateKey(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, first.Fresh)
	assert.Regexp(t, `^KRYPTON-[A-Z2-9]{7}-[A-Z2-9]{7}-[A-Z2-9]{7}$`, first.Key)

	// Repeat issuance returns the stored key unchanged.
	second, err := e.GenerateKey(context.Background(), "100")
	require.NoError(t, err)
	assert.False(t, second.Fresh)
	assert.Equal(t, first.Key, second.Key)

	assert.Len(t, audit.ByAction("key_generated"), 1)
}

func TestEngine_GenerateKey_Banned(t *testing.T) {
	e, users, _, _ := newTestEngine()
	users.Seed(&models.User{DiscordID: "100", Username: "alice", IsBanned: true})

	_, err := e.GenerateKey(context.Background(), "100")
	assert.ErrorIs(t, err, ErrBanned)
}

func TestEngine_ValidateKey(t *testing.T) {
	e, users, _, _ := newTestEngine()
	key := "KRYPTON-AAAAAAA-BBBBBBB-CCCCCCC"
	users.Seed(&models.User{DiscordID: "100", Username: "alice", Key: &key})

	user, err := e.ValidateKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "100", user.DiscordID)

	_, err = e.ValidateKey(context.Background(), "KRYPTON-XXXXXXX-XXXXXXX-XXXXXXX")
	assert.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, users.SetBanned(context.Background(), "100", true, "abuse"))
	_, err = e.ValidateKey(context.Background(), key)
	assert.ErrorIs(t, err, ErrBanned)
}

func TestEngine_Purchase(t *testing.T) {
	t.Run("success debits after delivery", func(t *testing.T) {
		e, users, _, _ := newTestEngine()
		users.Seed(&models.User{DiscordID: "100", Username: "alice", Coins: 20})

		delivered := false
		err := e.Purchase(context.Background(), "100", 10, func(context.Context) error {
			delivered = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, delivered)

		balance, _ := e.GetBalance(context.Background(), "100", "", "")
		assert.Equal(t, int64(10), balance)
	})

	t.Run("insufficient funds never delivers", func(t *testing.T) {
		e, users, _, _ := newTestEngine()
		users.Seed(&models.User{DiscordID: "100", Username: "alice", Coins: 5})

		err := e.Purchase(context.Background(), "100", 10, func(context.Context) error {
			t.Fatal("deliver must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("failed delivery leaves balance untouched", func(t *testing.T) {
		e, users, _, _ := newTestEngine()
		users.Seed(&models.User{DiscordID: "100", Username: "alice", Coins: 20})

		err := e.Purchase(context.Background(), "100", 10, func(context.Context) error {
			return errors.New("dm closed")
		})
		var delivery *DeliveryFailure
		require.ErrorAs(t, err, &delivery)

		balance, _ := e.GetBalance(context.Background(), "100", "", "")
		assert.Equal(t, int64(20), balance)
	})

	t.Run("banned buyer rejected", func(t *testing.T) {
		e, users, _, _ := newTestEngine()
		users.Seed(&models.User{DiscordID: "100", Username: "alice", Coins: 20, IsBanned: true})

		err := e.Purchase(context.Background(), "100", 10, func(context.Context) error {
			t.Fatal("deliver must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrBanned)
	})
}

func TestEngine_TransferBulk_PartialFailure(t *testing.T) {
	e, users, _, _ := newTestEngine()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("10%d", i)
		users.Seed(&models.User{DiscordID: id, Username: "u" + id})
		ids = append(ids, id)
	}
	users.FailIDs = map[string]error{"102": errors.New("connection reset")}

	affected := e.TransferBulk(context.Background(), ids, 10)
	assert.Equal(t, 4, affected)

	balance, err := e.GetBalance(context.Background(), "103", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestEngine_Stats(t *testing.T) {
	e, users, _, _ := newTestEngine()
	users.Seed(&models.User{DiscordID: "100", Coins: 30})
	users.Seed(&models.User{DiscordID: "101", Coins: 12})

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, int64(42), stats.TotalCoins)
}

func TestEngine_ShopPrices_Defaults(t *testing.T) {
	e, _, settings, _ := newTestEngine()

	prices := e.ShopPrices(context.Background())
	assert.Equal(t, int64(10), prices.KeyPrice)
	assert.Equal(t, int64(5), prices.RolePrice)

	require.NoError(t, settings.Set(context.Background(), config.SettingShop, models.ShopPrices{KeyPrice: 99, RolePrice: 7}))
	prices = e.ShopPrices(context.Background())
	assert.Equal(t, int64(99), prices.KeyPrice)
	assert.Equal(t, int64(7), prices.RolePrice)
}

func TestEngine_RewardSettings(t *testing.T) {
	e, _, settings, _ := newTestEngine()

	got := e.RewardSettings(context.Background())
	assert.Equal(t, models.RewardSettings{
		MessageReward:   1,
		CooldownSeconds: 60,
		MessagesPerCoin: 1,
		DailyReward:     50,
	}, got)

	stored := models.RewardSettings{
		MessageReward:   3,
		CooldownSeconds: 30,
		MessagesPerCoin: 2,
		DailyReward:     100,
	}
	require.NoError(t, settings.Set(context.Background(), config.SettingReward, stored))
	assert.Equal(t, stored, e.RewardSettings(context.Background()))
}
