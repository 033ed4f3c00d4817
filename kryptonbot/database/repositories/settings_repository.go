package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/uptrace/bun"
)

// ErrSettingNotFound means no row exists for the key; callers fall back
// to their hardcoded default.
var ErrSettingNotFound = errors.New("setting not found")

type SettingsRepository interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetIfAbsent(ctx context.Context, key string, value any) error
}

type settingsRepository struct {
	db *bun.DB
}

func NewSettingsRepository(db *bun.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string, dest any) error {
	setting := new(models.SystemSetting)
	err := r.db.NewSelect().
		Model(setting).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	if err := json.Unmarshal(setting.Value, dest); err != nil {
		return fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	setting := &models.SystemSetting{
		Key:       key,
		Value:     payload,
		UpdatedAt: time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent seeds a default without clobbering an admin-tuned value.
func (r *settingsRepository) SetIfAbsent(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	setting := &models.SystemSetting{
		Key:       key,
		Value:     payload,
		UpdatedAt: time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed setting %q: %w", key, err)
	}
	return nil
}
