package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
)

// MessageHandler feeds ordinary chat activity into the reward trigger.
// Bots never earn; accounts are ensured on every message so a user exists
// by the time anything touches them.
func MessageHandler(b *kryptonbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.Message.Author.System {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.Message.Author.ID.String()
		avatarURL := e.Message.Author.EffectiveAvatarURL()

		if _, err := b.Engine.Ensure(ctx, userID, e.Message.Author.Username, avatarURL); err != nil {
			slog.Error("Failed to ensure user on message",
				slog.String("type", "db"),
				slog.String("discord_id", userID),
				slog.Any("error", err))
			return
		}

		result, err := b.Rewards.TryAward(ctx, userID)
		if err != nil {
			slog.Error("Failed to process message reward",
				slog.String("type", "db"),
				slog.String("discord_id", userID),
				slog.Any("error", err))
			return
		}

		if result.Awarded {
			slog.Debug("Message reward granted",
				slog.String("discord_id", userID),
				slog.Int64("coins", result.Amount),
				slog.Int64("messages", result.MessageCount))
		}
	})
}
