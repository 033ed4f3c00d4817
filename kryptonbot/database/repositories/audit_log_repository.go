package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/uptrace/bun"
)

type AuditLogRepository interface {
	Append(ctx context.Context, action, discordID string, details map[string]any) error
	Recent(ctx context.Context, limit int) ([]*models.SystemLog, error)
}

type auditLogRepository struct {
	db *bun.DB
}

func NewAuditLogRepository(db *bun.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, action, discordID string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := &models.SystemLog{
		Action:    action,
		DiscordID: discordID,
		Details:   payload,
		CreatedAt: time.Now(),
	}
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (r *auditLogRepository) Recent(ctx context.Context, limit int) ([]*models.SystemLog, error) {
	var entries []*models.SystemLog
	err := r.db.NewSelect().
		Model(&entries).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}
