package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// SystemSetting is a keyed process-wide tunable with a JSON payload. One
// row per key; a missing row means the hardcoded default applies.
type SystemSetting struct {
	bun.BaseModel `bun:"table:system_settings,alias:ss"`

	Key       string          `bun:"key,pk"`
	Value     json.RawMessage `bun:"value,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// BoostState is the payload stored under the boost_system key.
type BoostState struct {
	Active     bool       `json:"active"`
	Multiplier float64    `json:"multiplier"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// MultiplierAt returns the effective reward multiplier at t.
func (b BoostState) MultiplierAt(t time.Time) float64 {
	if b.Active && b.EndsAt != nil && b.EndsAt.After(t) {
		return b.Multiplier
	}
	return 1
}

// ShopPrices is the payload stored under the shop_prices key.
type ShopPrices struct {
	KeyPrice  int64 `json:"key_price"`
	RolePrice int64 `json:"role_price"`
}

// RewardSettings is the payload stored under the reward_settings key.
type RewardSettings struct {
	MessageReward   int64 `json:"message_reward"`
	CooldownSeconds int   `json:"cooldown_seconds"`
	MessagesPerCoin int   `json:"messages_per_coin"`
	DailyReward     int64 `json:"daily_reward"`
}
