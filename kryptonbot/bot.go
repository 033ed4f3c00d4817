package kryptonbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy/boost"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy/reward"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string

	DB                    *database.DB
	UserRepository        repositories.UserRepository
	TrustedUserRepository repositories.TrustedUserRepository
	SettingsRepository    repositories.SettingsRepository
	AuditLogRepository    repositories.AuditLogRepository

	Engine  *economy.Engine
	Boost   *boost.Scheduler
	Rewards *reward.Trigger
	Auth    *auth.Resolver
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
			gateway.IntentGuildMembers,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagMembers)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

var statusMessages = []string{
	"users earn coins 💰",
	"/shop | Krypton Executor",
	"the economy 💸",
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Krypton bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity(statusMessages[0]),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}

	go b.rotateStatus()
}

// rotateStatus cycles the presence every 30 minutes.
func (b *Bot) rotateStatus() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	index := 0
	for range ticker.C {
		index = (index + 1) % len(statusMessages)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.Client.SetPresence(ctx,
			gateway.WithWatchingActivity(statusMessages[index]),
			gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
			slog.Error("Failed to rotate presence", slog.Any("error", err))
		}
		cancel()
	}
}

// SeedSettings writes the config defaults into system_settings for any
// key that has never been set, so admin-tuned values survive restarts.
func (b *Bot) SeedSettings(ctx context.Context) error {
	eco := b.Cfg.Economy.withDefaults()

	if err := b.SettingsRepository.SetIfAbsent(ctx, config.SettingReward, models.RewardSettings{
		MessageReward:   eco.MessageReward,
		CooldownSeconds: eco.MessageCooldownSeconds,
		MessagesPerCoin: eco.MessagesPerCoin,
		DailyReward:     eco.DailyReward,
	}); err != nil {
		return err
	}
	if err := b.SettingsRepository.SetIfAbsent(ctx, config.SettingShop, models.ShopPrices{
		KeyPrice:  eco.KeyPrice,
		RolePrice: eco.RolePrice,
	}); err != nil {
		return err
	}
	return b.SettingsRepository.SetIfAbsent(ctx, config.SettingBoost, models.BoostState{Multiplier: 1})
}
