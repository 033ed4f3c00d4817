package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var SetSpamTime = discord.SlashCommandCreate{
	Name:        "setspamtime",
	Description: "⏱️ Set the cooldown between message rewards",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "seconds",
			Description: "Minimum seconds between rewarded messages",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

var SetMessagesNeeded = discord.SlashCommandCreate{
	Name:        "setmessagesneeded",
	Description: "✉️ Set how many eligible messages earn one reward",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "count",
			Description: "Messages required per reward",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

func SetSpamTimeHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		seconds := e.SlashCommandInteractionData().Int("seconds")

		if err := b.Auth.Require(ctx, e.User().ID, "setspamtime", auth.AdminShared, map[string]any{
			"seconds": seconds,
		}); err != nil {
			return respondDenied(e, err)
		}

		if err := updateRewardSettings(ctx, b, func(s *models.RewardSettings) {
			s.CooldownSeconds = seconds
		}); err != nil {
			slog.Error("Failed to update reward cooldown",
				slog.String("type", "db"),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to update the setting. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "setting_changed", e.User().ID.String(), map[string]any{
			"setting": "cooldown_seconds",
			"value":   seconds,
		}); err != nil {
			slog.Error("Failed to log setting change",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"Message reward cooldown set to **%d seconds**.", seconds))
	}
}

func SetMessagesNeededHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		count := e.SlashCommandInteractionData().Int("count")

		if err := b.Auth.Require(ctx, e.User().ID, "setmessagesneeded", auth.AdminShared, map[string]any{
			"count": count,
		}); err != nil {
			return respondDenied(e, err)
		}

		if err := updateRewardSettings(ctx, b, func(s *models.RewardSettings) {
			s.MessagesPerCoin = count
		}); err != nil {
			slog.Error("Failed to update messages per coin",
				slog.String("type", "db"),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to update the setting. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "setting_changed", e.User().ID.String(), map[string]any{
			"setting": "messages_per_coin",
			"value":   count,
		}); err != nil {
			slog.Error("Failed to log setting change",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"Users now earn a reward every **%d** messages.", count))
	}
}

// updateRewardSettings rewrites the stored reward tunables with one field
// changed, keeping the rest at their current (or default) values.
func updateRewardSettings(ctx context.Context, b *kryptonbot.Bot, mutate func(*models.RewardSettings)) error {
	settings := b.Engine.RewardSettings(ctx)
	mutate(&settings)
	return b.SettingsRepository.Set(ctx, config.SettingReward, settings)
}
