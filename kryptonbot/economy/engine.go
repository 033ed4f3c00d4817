package economy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
	"golang.org/x/sync/errgroup"
)

// bulkWorkers bounds the fan-out of TransferBulk so a mass operation over
// a large ledger does not exhaust the connection pool.
const bulkWorkers = 8

// Engine implements the balance mutation rules. All read-modify-write
// sequences are pushed into single conditional updates at the repository
// layer, so concurrent operations against the same account never lose
// updates. Balance policy is clamp-at-zero everywhere: a debit larger
// than the balance leaves the account at zero, and SetBalance rejects
// negative values outright.
type Engine struct {
	users    repositories.UserRepository
	settings repositories.SettingsRepository
	audit    repositories.AuditLogRepository
}

func NewEngine(users repositories.UserRepository, settings repositories.SettingsRepository, audit repositories.AuditLogRepository) *Engine {
	return &Engine{
		users:    users,
		settings: settings,
		audit:    audit,
	}
}

// Ensure lazily creates the account and refreshes its cached display data.
func (e *Engine) Ensure(ctx context.Context, discordID, username, avatarURL string) (*models.User, error) {
	return e.users.Ensure(ctx, discordID, username, avatarURL)
}

// GetBalance returns the current balance, creating the account if it has
// never been seen. The result is never negative.
func (e *Engine) GetBalance(ctx context.Context, discordID, username, avatarURL string) (int64, error) {
	user, err := e.users.Ensure(ctx, discordID, username, avatarURL)
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

// AddBalance applies a signed delta and returns the new balance.
func (e *Engine) AddBalance(ctx context.Context, discordID string, delta int64) (int64, error) {
	if _, err := e.users.Ensure(ctx, discordID, "", ""); err != nil {
		return 0, err
	}
	return e.users.AddCoins(ctx, discordID, delta)
}

// SetBalance overwrites the balance. Negative values are rejected.
func (e *Engine) SetBalance(ctx context.Context, discordID string, amount int64) error {
	if amount < 0 {
		return &ValidationError{Field: "amount", Msg: "must not be negative"}
	}
	if _, err := e.users.Ensure(ctx, discordID, "", ""); err != nil {
		return err
	}
	return e.users.SetCoins(ctx, discordID, amount)
}

// TransferBulk applies delta to every id. Per-id failures are logged and
// skipped; the batch never aborts for one bad account. Returns the number
// of accounts updated.
func (e *Engine) TransferBulk(ctx context.Context, ids []string, delta int64) int {
	var affected atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := e.AddBalance(gctx, id, delta); err != nil {
				slog.Error("Bulk balance update failed for user",
					slog.String("type", "db"),
					slog.String("discord_id", id),
					slog.Int64("delta", delta),
					slog.Any("error", err))
				return nil
			}
			affected.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(affected.Load())
}

// Purchase debits cost only after deliver succeeds. The ordering is
// load-bearing: the good must be confirmed delivered before any charge,
// and a failed delivery leaves the balance untouched.
func (e *Engine) Purchase(ctx context.Context, discordID string, cost int64, deliver func(ctx context.Context) error) error {
	if cost < 0 {
		return &ValidationError{Field: "cost", Msg: "must not be negative"}
	}

	user, err := e.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return err
	}
	if user.IsBanned {
		return ErrBanned
	}
	if user.Coins < cost {
		return ErrInsufficientFunds
	}

	if err := deliver(ctx); err != nil {
		return &DeliveryFailure{Err: err}
	}

	if _, err := e.users.AddCoins(ctx, discordID, -cost); err != nil {
		// Delivered but not charged. Surface the store error; the next
		// read reconciles the balance, and the good stays with the user.
		return fmt.Errorf("purchase delivered but debit failed: %w", err)
	}
	return nil
}

// DailyResult reports a claim outcome. When Claimed is false, Remaining
// holds the time left in the rolling window.
type DailyResult struct {
	Claimed    bool
	Amount     int64
	NewBalance int64
	Remaining  time.Duration
}

// ClaimDaily grants the configured daily reward at most once per rolling
// 24-hour window. The check and the grant are a single conditional write,
// so re-entrant calls inside the window all observe the cooldown.
func (e *Engine) ClaimDaily(ctx context.Context, discordID, username, avatarURL string) (DailyResult, error) {
	if _, err := e.users.Ensure(ctx, discordID, username, avatarURL); err != nil {
		return DailyResult{}, err
	}

	amount := e.rewardSettings(ctx).DailyReward
	now := time.Now()

	claimed, err := e.users.ClaimDaily(ctx, discordID, amount, config.DailyClaimWindow, now)
	if err != nil {
		return DailyResult{}, err
	}

	user, err := e.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return DailyResult{}, err
	}

	if !claimed {
		var remaining time.Duration
		if user.LastDaily != nil {
			remaining = time.Until(user.LastDaily.Add(config.DailyClaimWindow))
		}
		return DailyResult{Claimed: false, Remaining: remaining}, nil
	}

	if err := e.audit.Append(ctx, "daily_claim", discordID, map[string]any{
		"coins": amount,
	}); err != nil {
		slog.Error("Failed to log daily claim",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	return DailyResult{Claimed: true, Amount: amount, NewBalance: user.Coins}, nil
}

// KeyResult reports a key issuance. Fresh is false when the account
// already held a key; the stored key is returned unchanged.
type KeyResult struct {
	Key   string
	Fresh bool
}

// GenerateKey issues the account's one-shot key. Calling it again returns
// the same key until an admin clears it. Banned accounts are rejected.
func (e *Engine) GenerateKey(ctx context.Context, discordID string) (KeyResult, error) {
	user, err := e.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return KeyResult{}, err
	}
	if user.IsBanned {
		return KeyResult{}, ErrBanned
	}
	if user.HasKey() {
		return KeyResult{Key: *user.Key, Fresh: false}, nil
	}

	key, err := newKey()
	if err != nil {
		return KeyResult{}, err
	}

	assigned, err := e.users.AssignKey(ctx, discordID, key)
	if err != nil {
		return KeyResult{}, err
	}
	if !assigned {
		// Lost a race with a concurrent issuance; adopt the stored key.
		user, err = e.users.GetByDiscordID(ctx, discordID)
		if err != nil {
			return KeyResult{}, err
		}
		if !user.HasKey() {
			return KeyResult{}, fmt.Errorf("key assignment conflict for %s left no key", discordID)
		}
		return KeyResult{Key: *user.Key, Fresh: false}, nil
	}

	if err := e.audit.Append(ctx, "key_generated", discordID, nil); err != nil {
		slog.Error("Failed to log key generation",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	return KeyResult{Key: key, Fresh: true}, nil
}

// ClearKey removes the issued key so the next GenerateKey mints a new one.
func (e *Engine) ClearKey(ctx context.Context, discordID string) error {
	return e.users.ClearKey(ctx, discordID)
}

// ValidateKey looks up the account owning a key. Banned owners make the
// key invalid.
func (e *Engine) ValidateKey(ctx context.Context, key string) (*models.User, error) {
	user, err := e.users.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrBanned
	}
	return user, nil
}

// Stats is the aggregate snapshot used by /info.
type Stats struct {
	TotalUsers int
	TotalCoins int64
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	count, err := e.users.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := e.users.TotalCoins(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalUsers: count, TotalCoins: total}, nil
}

// ShopPrices returns the stored prices, falling back to defaults when the
// setting row is missing.
func (e *Engine) ShopPrices(ctx context.Context) models.ShopPrices {
	prices := models.ShopPrices{KeyPrice: 10, RolePrice: 5}
	if err := e.settings.Get(ctx, config.SettingShop, &prices); err != nil &&
		!errors.Is(err, repositories.ErrSettingNotFound) {
		slog.Error("Failed to read shop prices, using defaults",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	return prices
}

func (e *Engine) rewardSettings(ctx context.Context) models.RewardSettings {
	settings := models.RewardSettings{
		MessageReward:   1,
		CooldownSeconds: 60,
		MessagesPerCoin: 1,
		DailyReward:     50,
	}
	if err := e.settings.Get(ctx, config.SettingReward, &settings); err != nil &&
		!errors.Is(err, repositories.ErrSettingNotFound) {
		slog.Error("Failed to read reward settings, using defaults",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	return settings
}

// RewardSettings exposes the stored reward tunables.
func (e *Engine) RewardSettings(ctx context.Context) models.RewardSettings {
	return e.rewardSettings(ctx)
}
