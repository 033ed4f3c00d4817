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
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Ban = discord.SlashCommandCreate{
	Name:        "ban",
	Description: "🔨 Ban a user from the economy",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to ban",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why the user is being banned",
			Required:    false,
		},
	},
}

var Unban = discord.SlashCommandCreate{
	Name:        "unban",
	Description: "🔓 Lift a user's economy ban",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to unban",
			Required:    true,
		},
	},
}

// BanHandler freezes an account: no message rewards, no purchases, and
// any issued key stops validating until the ban is lifted.
func BanHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		reason := data.String("reason")

		if err := b.Auth.Require(ctx, e.User().ID, "ban", auth.AdminShared, map[string]any{
			"target": target.ID.String(),
			"reason": reason,
		}); err != nil {
			return respondDenied(e, err)
		}

		if target.ID == b.Cfg.Bot.OwnerID {
			return utils.EH.CreateErrorEmbed(e, "The owner cannot be banned.")
		}

		if _, err := b.Engine.Ensure(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL()); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the target user.")
		}
		if err := b.UserRepository.SetBanned(ctx, target.ID.String(), true, reason); err != nil {
			slog.Error("Failed to ban user",
				slog.String("type", "db"),
				slog.String("target", target.ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to ban the user. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "user_banned", e.User().ID.String(), map[string]any{
			"target": target.ID.String(),
			"reason": reason,
		}); err != nil {
			slog.Error("Failed to log ban",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		msg := fmt.Sprintf("**%s** is banned from the economy.", target.Username)
		if reason != "" {
			msg += fmt.Sprintf("\nReason: %s", reason)
		}
		return utils.EH.CreateSuccessEmbed(e, msg)
	}
}

func UnbanHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.SlashCommandInteractionData().User("user")

		if err := b.Auth.Require(ctx, e.User().ID, "unban", auth.AdminShared, map[string]any{
			"target": target.ID.String(),
		}); err != nil {
			return respondDenied(e, err)
		}

		if _, err := b.Engine.Ensure(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL()); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the target user.")
		}
		if err := b.UserRepository.SetBanned(ctx, target.ID.String(), false, ""); err != nil {
			slog.Error("Failed to unban user",
				slog.String("type", "db"),
				slog.String("target", target.ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to unban the user. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "user_unbanned", e.User().ID.String(), map[string]any{
			"target": target.ID.String(),
		}); err != nil {
			slog.Error("Failed to log unban",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"**%s** can use the economy again.", target.Username))
	}
}
