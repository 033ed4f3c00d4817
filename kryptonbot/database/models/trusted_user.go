package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TrustedUser is a membership row for the trusted admin tier. At most one
// row per Discord user; only the bot owner creates or removes them.
type TrustedUser struct {
	bun.BaseModel `bun:"table:trusted_users,alias:tu"`

	ID        int64     `bun:"id,pk,autoincrement"`
	DiscordID string    `bun:"discord_id,notnull,unique"`
	Username  string    `bun:"username,notnull"`
	AddedBy   string    `bun:"added_by,notnull"`
	AddedAt   time.Time `bun:"added_at,notnull,default:current_timestamp"`
}
