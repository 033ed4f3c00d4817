package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/uptrace/bun"
)

type TrustedUserRepository interface {
	Add(ctx context.Context, discordID, username, addedBy string) error
	Remove(ctx context.Context, discordID string) (bool, error)
	IsTrusted(ctx context.Context, discordID string) (bool, error)
	List(ctx context.Context) ([]*models.TrustedUser, error)
}

type trustedUserRepository struct {
	db *bun.DB
}

func NewTrustedUserRepository(db *bun.DB) TrustedUserRepository {
	return &trustedUserRepository{db: db}
}

// Add upserts so granting trust twice stays a single membership row.
func (r *trustedUserRepository) Add(ctx context.Context, discordID, username, addedBy string) error {
	tu := &models.TrustedUser{
		DiscordID: discordID,
		Username:  username,
		AddedBy:   addedBy,
		AddedAt:   time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(tu).
		On("CONFLICT (discord_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Exec(ctx)
	return err
}

func (r *trustedUserRepository) Remove(ctx context.Context, discordID string) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*models.TrustedUser)(nil)).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *trustedUserRepository) IsTrusted(ctx context.Context, discordID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.TrustedUser)(nil)).
		Where("discord_id = ?", discordID).
		Exists(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return exists, nil
}

func (r *trustedUserRepository) List(ctx context.Context) ([]*models.TrustedUser, error) {
	var users []*models.TrustedUser
	err := r.db.NewSelect().
		Model(&users).
		Order("added_at ASC").
		Scan(ctx)
	return users, err
}
