package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	GetByKey(ctx context.Context, key string) (*models.User, error)
	Ensure(ctx context.Context, discordID, username, avatarURL string) (*models.User, error)
	AddCoins(ctx context.Context, discordID string, delta int64) (int64, error)
	SetCoins(ctx context.Context, discordID string, amount int64) error
	ClaimDaily(ctx context.Context, discordID string, amount int64, window time.Duration, now time.Time) (bool, error)
	AssignKey(ctx context.Context, discordID, key string) (bool, error)
	ClearKey(ctx context.Context, discordID string) error
	SetBanned(ctx context.Context, discordID string, banned bool, reason string) error
	IncrementMessageCount(ctx context.Context, discordID string) (int64, error)
	GetTopUsers(ctx context.Context, limit int) ([]*models.User, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	CountUsers(ctx context.Context) (int, error)
	TotalCoins(ctx context.Context) (int64, error)
	ResetAllCoins(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("discord_id = ?", discordID).
		Scan(ctx)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("Database error when getting user",
				slog.String("type", "db"),
				slog.String("operation", "GetByDiscordID"),
				slog.String("discord_id", discordID),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByKey(ctx context.Context, key string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Ensure implements get-or-create semantics. A concurrent create of the
// same user hits the unique index and falls through to the update branch,
// so the conflict is treated as success. Username and avatar are
// refreshed on every touch.
func (r *userRepository) Ensure(ctx context.Context, discordID, username, avatarURL string) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		DiscordID: discordID,
		Username:  username,
		AvatarURL: avatarURL,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (discord_id) DO UPDATE").
		Set("username = COALESCE(NULLIF(EXCLUDED.username, ''), u.username)").
		Set("avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), u.avatar_url)").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user %s: %w", discordID, err)
	}
	return user, nil
}

// AddCoins applies a signed delta as a single atomic update so concurrent
// calls never lose writes. Balances clamp at zero rather than going
// negative. Returns the new balance.
func (r *userRepository) AddCoins(ctx context.Context, discordID string, delta int64) (int64, error) {
	var coins int64
	err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = GREATEST(coins + ?, 0)", delta).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Returning("coins").
		Scan(ctx, &coins)
	if err != nil {
		return 0, fmt.Errorf("failed to update coins for %s: %w", discordID, err)
	}
	return coins, nil
}

func (r *userRepository) SetCoins(ctx context.Context, discordID string, amount int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

// ClaimDaily performs the cooldown check and the reward grant as one
// conditional update. Rows affected zero means the rolling window has not
// elapsed; two concurrent claims can never both succeed.
func (r *userRepository) ClaimDaily(ctx context.Context, discordID string, amount int64, window time.Duration, now time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = coins + ?", amount).
		Set("last_daily = ?", now).
		Set("updated_at = ?", now).
		Where("discord_id = ?", discordID).
		Where("last_daily IS NULL OR last_daily <= ?", now.Add(-window)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily for %s: %w", discordID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AssignKey stores a key only if the account has none yet. Returns false
// when a key was already issued, leaving the stored one untouched.
func (r *userRepository) AssignKey(ctx context.Context, discordID, key string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("key = ?", key).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Where("key IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to assign key for %s: %w", discordID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepository) ClearKey(ctx context.Context, discordID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("key = NULL").
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

func (r *userRepository) SetBanned(ctx context.Context, discordID string, banned bool, reason string) error {
	q := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_banned = ?", banned).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID)
	if banned && reason != "" {
		q = q.Set("ban_reason = ?", reason)
	} else if !banned {
		q = q.Set("ban_reason = NULL")
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *userRepository) IncrementMessageCount(ctx context.Context, discordID string) (int64, error) {
	var count int64
	err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("messages_count = messages_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Returning("messages_count").
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("coins DESC").
		Limit(limit).
		Scan(ctx)
	return users, err
}

func (r *userRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.User)(nil)).
		Column("discord_id").
		Scan(ctx, &ids)
	if err != nil {
		slog.Error("Database error when listing users",
			slog.String("type", "db"),
			slog.String("operation", "GetAllIDs"),
			slog.String("error", err.Error()))
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.User)(nil)).
		Count(ctx)
}

func (r *userRepository) TotalCoins(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.NewSelect().
		Model((*models.User)(nil)).
		ColumnExpr("COALESCE(SUM(coins), 0)").
		Scan(ctx, &total)
	return total, err
}

func (r *userRepository) ResetAllCoins(ctx context.Context) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = 0").
		Set("updated_at = ?", time.Now()).
		Where("coins != 0").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
