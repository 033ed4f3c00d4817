package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// SystemLog is an append-only audit record. The bot only writes these;
// they are read back for the admin /logs view and external reporting.
type SystemLog struct {
	bun.BaseModel `bun:"table:system_logs,alias:sl"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Action    string          `bun:"action,notnull"`
	DiscordID string          `bun:"discord_id,notnull"`
	Details   json.RawMessage `bun:"details,type:jsonb"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`
}
