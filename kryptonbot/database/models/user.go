package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is one ledger account per Discord user. Created lazily the first
// time the user is seen; never hard-deleted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64  `bun:"id,pk,autoincrement"`
	DiscordID string `bun:"discord_id,notnull,unique"`
	Username  string `bun:"username,notnull"`
	AvatarURL string `bun:"avatar_url"`

	// Coins never persists negative; writes clamp at zero.
	Coins         int64 `bun:"coins,notnull,default:0"`
	MessagesCount int64 `bun:"messages_count,notnull,default:0"`

	LastDaily *time.Time `bun:"last_daily,nullzero"`
	Key       *string    `bun:"key,nullzero"`

	IsBanned  bool    `bun:"is_banned,notnull,default:false"`
	BanReason *string `bun:"ban_reason,nullzero"`

	JoinedAt  time.Time `bun:"joined_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// HasKey reports whether a key has been issued to this account.
func (u *User) HasKey() bool {
	return u.Key != nil && *u.Key != ""
}
