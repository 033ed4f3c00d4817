package kryptonbot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Bot.OwnerID == 0 {
		return nil, fmt.Errorf("bot.owner_id must be set")
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Bot     BotConfig     `toml:"bot"`
	DB      DBConfig      `toml:"db"`
	Economy EconomyConfig `toml:"economy"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
	OwnerID   snowflake.ID   `toml:"owner_id"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// EconomyConfig holds the startup defaults for the runtime tunables. They
// seed the system_settings table on first boot; admin commands mutate the
// stored copies afterwards.
type EconomyConfig struct {
	MessageReward          int64        `toml:"message_reward"`
	MessageCooldownSeconds int          `toml:"message_cooldown_seconds"`
	MessagesPerCoin        int          `toml:"messages_per_coin"`
	DailyReward            int64        `toml:"daily_reward"`
	KeyPrice               int64        `toml:"key_price"`
	RolePrice              int64        `toml:"role_price"`
	PremiumRoleID          snowflake.ID `toml:"premium_role_id"`
}

func (c EconomyConfig) withDefaults() EconomyConfig {
	if c.MessageReward <= 0 {
		c.MessageReward = 1
	}
	if c.MessageCooldownSeconds <= 0 {
		c.MessageCooldownSeconds = 60
	}
	if c.MessagesPerCoin <= 0 {
		c.MessagesPerCoin = 1
	}
	if c.DailyReward <= 0 {
		c.DailyReward = 50
	}
	if c.KeyPrice <= 0 {
		c.KeyPrice = 10
	}
	if c.RolePrice <= 0 {
		c.RolePrice = 5
	}
	return c
}
