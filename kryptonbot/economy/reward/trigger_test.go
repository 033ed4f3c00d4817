package reward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedMultiplier float64

func (m fixedMultiplier) MultiplierNow(context.Context) float64 {
	return float64(m)
}

func newTestTrigger(t *testing.T, boost Multiplier) (*Trigger, *repotest.UserStore, *repotest.SettingsStore, *repotest.AuditStore, *time.Time) {
	t.Helper()
	users := repotest.NewUserStore()
	settings := repotest.NewSettingsStore()
	audit := repotest.NewAuditStore()

	trigger, err := NewTrigger(users, settings, audit, boost)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }
	return trigger, users, settings, audit, &now
}

func TestTrigger_CooldownSuppression(t *testing.T) {
	trigger, users, _, _, now := newTestTrigger(t, fixedMultiplier(1))
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})

	result, err := trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, int64(1), result.Amount)

	// Immediately again: inside the 60s default window.
	result, err = trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.False(t, result.Awarded)
	assert.Equal(t, int64(0), result.MessageCount)

	// Past the window the next message counts again.
	*now = now.Add(61 * time.Second)
	result, err = trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, int64(2), result.MessageCount)
}

func TestTrigger_MessagesPerCoin(t *testing.T) {
	trigger, users, settings, _, now := newTestTrigger(t, fixedMultiplier(1))
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})
	require.NoError(t, settings.Set(context.Background(), config.SettingReward, models.RewardSettings{
		MessageReward:   1,
		CooldownSeconds: 1,
		MessagesPerCoin: 3,
		DailyReward:     50,
	}))

	var awards int
	for i := 0; i < 6; i++ {
		result, err := trigger.TryAward(context.Background(), "100")
		require.NoError(t, err)
		if result.Awarded {
			awards++
		}
		*now = now.Add(2 * time.Second)
	}
	assert.Equal(t, 2, awards)

	user, err := users.GetByDiscordID(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, int64(6), user.MessagesCount)
	assert.Equal(t, int64(2), user.Coins)
}

func TestTrigger_BoostMultiplierApplied(t *testing.T) {
	trigger, users, settings, audit, _ := newTestTrigger(t, fixedMultiplier(2.5))
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})
	require.NoError(t, settings.Set(context.Background(), config.SettingReward, models.RewardSettings{
		MessageReward:   2,
		CooldownSeconds: 60,
		MessagesPerCoin: 1,
		DailyReward:     50,
	}))

	result, err := trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, int64(5), result.Amount)
	assert.Len(t, audit.ByAction("message_reward"), 1)
}

func TestTrigger_BannedUserNeverAccrues(t *testing.T) {
	trigger, users, _, _, _ := newTestTrigger(t, fixedMultiplier(1))
	users.Seed(&models.User{DiscordID: "100", Username: "alice", IsBanned: true})

	result, err := trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.False(t, result.Awarded)

	user, err := users.GetByDiscordID(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.MessagesCount)
	assert.Equal(t, int64(0), user.Coins)
}

func TestTrigger_StoreErrorDoesNotConsumeCooldown(t *testing.T) {
	trigger, users, _, _, _ := newTestTrigger(t, fixedMultiplier(1))
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})

	users.Err = errors.New("connection refused")
	_, err := trigger.TryAward(context.Background(), "100")
	require.Error(t, err)

	// The failed attempt counted nothing, so the next message inside the
	// window must still earn its reward.
	users.Err = nil
	result, err := trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, int64(1), result.MessageCount)
}

func TestTrigger_ResetCooldown(t *testing.T) {
	trigger, users, _, _, _ := newTestTrigger(t, fixedMultiplier(1))
	users.Seed(&models.User{DiscordID: "100", Username: "alice"})

	result, err := trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	require.True(t, result.Awarded)

	trigger.ResetCooldown("100")

	result, err = trigger.TryAward(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, result.Awarded)
}
