package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
)

// cooldownCacheSize bounds the per-user cooldown map. Eviction of a cold
// entry just makes that user reward-eligible again, which is harmless.
const cooldownCacheSize = 16384

// Multiplier is the boost lookup applied at award time.
type Multiplier interface {
	MultiplierNow(ctx context.Context) float64
}

// Result reports a passive accrual attempt. Awarded is false when the
// per-user cooldown suppressed the message or no coin was due yet.
type Result struct {
	Awarded      bool
	Amount       int64
	MessageCount int64
}

// Trigger gates passive coin accrual from ordinary chat activity. The
// cooldown map is process-local by design: a restart makes everyone
// immediately eligible again, which needs no durability.
type Trigger struct {
	users     repositories.UserRepository
	settings  repositories.SettingsRepository
	audit     repositories.AuditLogRepository
	boost     Multiplier
	cooldowns *lru.Cache

	now func() time.Time
}

func NewTrigger(users repositories.UserRepository, settings repositories.SettingsRepository, audit repositories.AuditLogRepository, boost Multiplier) (*Trigger, error) {
	cache, err := lru.New(cooldownCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cooldown cache: %w", err)
	}
	return &Trigger{
		users:     users,
		settings:  settings,
		audit:     audit,
		boost:     boost,
		cooldowns: cache,
		now:       time.Now,
	}, nil
}

// TryAward processes one reward-eligible message. Inside the cooldown
// window the message is suppressed. Outside it the activity counter
// advances by one, and every Nth eligible message (the messages-per-coin
// ratio) grants the configured reward times the active boost multiplier.
func (t *Trigger) TryAward(ctx context.Context, discordID string) (Result, error) {
	cfg := t.rewardSettings(ctx)
	cooldown := time.Duration(cfg.CooldownSeconds) * time.Second

	now := t.now()
	if last, ok := t.cooldowns.Get(discordID); ok {
		if now.Sub(last.(time.Time)) < cooldown {
			return Result{}, nil
		}
	}
	user, err := t.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return Result{}, err
	}
	if user.IsBanned {
		return Result{}, nil
	}

	count, err := t.users.IncrementMessageCount(ctx, discordID)
	if err != nil {
		return Result{}, err
	}

	// Only a counted message consumes the window. A store failure above
	// must leave the user eligible for their next message.
	t.cooldowns.Add(discordID, now)

	needed := cfg.MessagesPerCoin
	if needed < 1 {
		needed = 1
	}
	if count%int64(needed) != 0 {
		return Result{MessageCount: count}, nil
	}

	multiplier := t.boost.MultiplierNow(ctx)
	amount := int64(math.Round(float64(cfg.MessageReward) * multiplier))
	if amount < 1 {
		amount = cfg.MessageReward
	}

	if _, err := t.users.AddCoins(ctx, discordID, amount); err != nil {
		return Result{}, err
	}

	if err := t.audit.Append(ctx, "message_reward", discordID, map[string]any{
		"coins":      amount,
		"multiplier": multiplier,
	}); err != nil {
		slog.Error("Failed to log message reward",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	return Result{Awarded: true, Amount: amount, MessageCount: count}, nil
}

// ResetCooldown clears the gate for one user.
func (t *Trigger) ResetCooldown(discordID string) {
	t.cooldowns.Remove(discordID)
}

func (t *Trigger) rewardSettings(ctx context.Context) models.RewardSettings {
	settings := models.RewardSettings{
		MessageReward:   1,
		CooldownSeconds: 60,
		MessagesPerCoin: 1,
		DailyReward:     50,
	}
	if err := t.settings.Get(ctx, config.SettingReward, &settings); err != nil &&
		!errors.Is(err, repositories.ErrSettingNotFound) {
		slog.Error("Failed to read reward settings, using defaults",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	return settings
}
