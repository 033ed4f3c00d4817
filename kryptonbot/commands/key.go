package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Key = discord.SlashCommandCreate{
	Name:        "key",
	Description: "🔑 View your executor key (only you can see it)",
}

func KeyHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		user, err := b.Engine.Ensure(ctx, e.User().ID.String(), e.User().Username, e.User().EffectiveAvatarURL())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up your account. Please try again later.")
		}

		if user.IsBanned {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: "❌ You are banned from the economy. Your key has been revoked.",
					Color:       config.ErrorColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}

		if !user.HasKey() {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: "You don't own a key yet. Buy one with `/buykey`.",
					Color:       config.InfoColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🔑 Your Executor Key",
				Description: fmt.Sprintf("```%s```\nKeep this key secret. It is tied to your account.", *user.Key),
				Color:       config.SuccessColor,
				Footer:      &discord.EmbedFooter{Text: config.FooterText},
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
