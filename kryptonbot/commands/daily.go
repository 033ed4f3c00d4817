package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "🎁 Claim your daily coin reward",
}

func DailyHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		result, err := b.Engine.ClaimDaily(ctx, e.User().ID.String(), e.User().Username, e.User().EffectiveAvatarURL())
		if err != nil {
			slog.Error("Failed to claim daily reward",
				slog.String("type", "db"),
				slog.String("discord_id", e.User().ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to claim your daily reward. Please try again later.")
		}

		if !result.Claimed {
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf(
				"You already claimed your daily reward. Come back in **%s**.",
				utils.FormatDuration(result.Remaining)))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🎁 Daily Reward Claimed!",
				Description: fmt.Sprintf("You received **%s coins**!\nNew balance: **%s coins**.",
					utils.FormatNumber(result.Amount),
					utils.FormatNumber(result.NewBalance)),
				Color:  config.SuccessColor,
				Footer: &discord.EmbedFooter{Text: config.FooterText},
			}},
		})
	}
}
